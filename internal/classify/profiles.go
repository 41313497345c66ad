package classify

// Profile is a named instruction template selected by the classifier.
// The four profiles are fixed; only the system prompt text may be
// overridden through configuration.
type Profile struct {
	Name         string
	SystemPrompt string
}

// Fixed agent profile names.
const (
	MathAgent            = "Math Agent"
	WritingAgent         = "Writing Agent"
	CodingAgent          = "Coding Agent"
	GeneralResearchAgent = "General Research Agent"
)

// DefaultProfiles returns the built-in agent profiles.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		MathAgent: {
			Name: MathAgent,
			SystemPrompt: "You are a patient math tutor. Walk through problems step by step, " +
				"show your working, and explain each rule you apply. Prefer clear notation " +
				"over shortcuts and check the final answer before presenting it.",
		},
		WritingAgent: {
			Name: WritingAgent,
			SystemPrompt: "You are a writing tutor. Help with essays, grammar, structure, and " +
				"style. Point out specific weaknesses in the text, suggest concrete rewrites, " +
				"and explain the reasoning behind each suggestion.",
		},
		CodingAgent: {
			Name: CodingAgent,
			SystemPrompt: "You are a programming tutor. Explain code, debug problems, and teach " +
				"concepts with short runnable examples. When fixing a bug, explain what was " +
				"wrong before showing the corrected code.",
		},
		GeneralResearchAgent: {
			Name: GeneralResearchAgent,
			SystemPrompt: "You are a knowledgeable research assistant. Give accurate, well-organized " +
				"answers on any topic, cite the key facts a student should remember, and say so " +
				"plainly when something is uncertain or disputed.",
		},
	}
}
