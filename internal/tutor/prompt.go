package tutor

import "github.com/ashureev/adaptutor/internal/domain"

// PromptWindowTurns is how much history accompanies each model call.
const PromptWindowTurns = 10

const (
	beginnerPrompt = "You are a patient tutor working with a beginner. " +
		"Explain concepts from first principles using everyday analogies, " +
		"one idea at a time. Avoid jargon; when a technical term is " +
		"unavoidable, define it immediately. Keep answers short and check " +
		"understanding before moving on."

	intermediatePrompt = "You are a tutor working with a student who has the " +
		"fundamentals down. Build on what they already know, introduce " +
		"standard terminology, and include a concrete worked example with " +
		"each explanation. Point out common mistakes when relevant."

	advancedPrompt = "You are a tutor working with an advanced student. Be " +
		"precise and information-dense: discuss trade-offs, edge cases and " +
		"underlying theory. Skip basic definitions and challenge the " +
		"student with follow-up questions that probe deeper understanding."
)

// SystemPrompt returns the tutoring system prompt for a difficulty tier.
func SystemPrompt(level domain.Level) string {
	switch level {
	case domain.LevelAdvanced:
		return advancedPrompt
	case domain.LevelIntermediate:
		return intermediatePrompt
	default:
		return beginnerPrompt
	}
}

// PromptWindow trims history to the turns sent with a model call.
func PromptWindow(history []domain.Turn) []domain.Turn {
	if len(history) <= PromptWindowTurns {
		return history
	}
	return history[len(history)-PromptWindowTurns:]
}
