package classify

import (
	"github.com/wsk776429-afk/tutor-bot-now/internal/config"
	"github.com/wsk776429-afk/tutor-bot-now/internal/types"
)

// Classifier selects an agent profile from the most recent user-visible
// message. It is stateless: identical input always yields the same
// profile.
type Classifier struct {
	rules    []Rule
	profiles map[string]Profile
	agents   func() *config.AgentsConfig
}

// New creates a classifier with the built-in rules and profiles. The
// agents func supplies live prompt overrides; a nil func keeps the
// built-in prompts.
func New(agents func() *config.AgentsConfig) *Classifier {
	return &Classifier{
		rules:    DefaultRules(),
		profiles: DefaultProfiles(),
		agents:   agents,
	}
}

// Classify inspects the content of the last message and returns the
// selected profile and the name of the rule that matched ("default"
// when no rule matched). An empty message list selects the default
// profile; the validator guarantees that never happens in the live
// pipeline.
func (c *Classifier) Classify(messages []types.Message) (Profile, string) {
	text := ""
	if len(messages) > 0 {
		text = messages[len(messages)-1].Content
	}

	for _, r := range c.rules {
		if r.Regex.MatchString(text) {
			return c.profile(r.Profile), r.Name
		}
	}
	return c.profile(GeneralResearchAgent), "default"
}

func (c *Classifier) profile(name string) Profile {
	p := c.profiles[name]
	if c.agents != nil {
		if cfg := c.agents(); cfg != nil {
			if override, ok := cfg.Prompts[name]; ok && override != "" {
				p.SystemPrompt = override
			}
		}
	}
	return p
}
