package classify

import "regexp"

// Rule pairs a keyword predicate with the agent it selects. Rules are
// evaluated in order; the first match wins and later rules are never
// consulted.
type Rule struct {
	Name    string
	Regex   *regexp.Regexp
	Profile string
}

// DefaultRules returns the built-in classification rules in precedence
// order: math before writing before coding. Anything unmatched falls
// through to the General Research Agent.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "math",
			Regex:   regexp.MustCompile(`(?i)\b(solve|equation|calculate|algebra|geometry|calculus|math)\b`),
			Profile: MathAgent,
		},
		{
			Name:    "writing",
			Regex:   regexp.MustCompile(`(?i)\b(essay|grammar|write|writing|paragraph|sentence)\b`),
			Profile: WritingAgent,
		},
		{
			Name:    "coding",
			Regex:   regexp.MustCompile(`(?i)\b(code|coding|bug|python|javascript|typescript|golang|java|rust|program|function|algorithm)\b`),
			Profile: CodingAgent,
		},
	}
}
