package llm

import (
	"context"

	"resumeflow/internal/shared/apperr"
)

// ErrNotConfigured is returned by paid operations when no provider is wired.
// Services check for it before spending a credit.
var ErrNotConfigured = apperr.New(apperr.KindCompletionFailed, "AI provider is not configured", nil)

// Request is a single two-message exchange: one system prompt, one user prompt.
type Request struct {
	System   string
	User     string
	JSONMode bool
	// Operation labels logs and metrics, e.g. "analyze" or "rewrite".
	Operation string
}

// Completer sends a prompt to a text-generation endpoint and returns the raw
// text of the first choice. Failures are apperr.ErrCompletionFailed.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
