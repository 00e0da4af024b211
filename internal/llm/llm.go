// Package llm wraps the external language-model collaborator behind a small
// interface so the core never imports a vendor SDK directly.
package llm

import (
	"context"

	"github.com/ashureev/adaptutor/internal/domain"
)

// Invoker formats a prompt from history plus the tier's system prompt and
// performs one external model call.
type Invoker interface {
	Invoke(ctx context.Context, system string, history []domain.Turn, message string) (string, error)
}

// Fallback is the apology shown when the model call fails. It is returned to
// the client in place of a response; the exchange is not recorded.
const Fallback = "Sorry, I'm having trouble thinking right now. Could you ask that again in a moment?"
