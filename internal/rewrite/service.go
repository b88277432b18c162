package rewrite

import (
	"context"
	"strings"

	"resumeflow/internal/credits"
	"resumeflow/internal/llm"
	"resumeflow/internal/shared/apperr"
)

// Input is a rewrite request: content to rewrite for a role in a tone.
type Input struct {
	Role    string
	Tone    string
	Content string
}

// Service rewrites résumé bullets for one credit.
type Service struct {
	Gate *credits.Gate
	LLM  llm.Completer
}

// NewService constructs a Service.
func NewService(gate *credits.Gate, completer llm.Completer) *Service {
	return &Service{Gate: gate, LLM: completer}
}

// Rewrite returns the provider's text unmodified.
func (s *Service) Rewrite(ctx context.Context, userID string, in Input) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperr.ErrUnauthenticated
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", apperr.Newf(apperr.KindInvalidInput, "Content is required")
	}
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}

	req := llm.Request{
		System:    llm.RewriteSystemPrompt(strings.TrimSpace(in.Role), strings.TrimSpace(in.Tone)),
		User:      in.Content,
		Operation: "rewrite",
	}
	return credits.RunGated(ctx, s.Gate, userID, func(ctx context.Context) (string, error) {
		return s.LLM.Complete(ctx, req)
	})
}
