package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resumeflow/internal/credits"
	"resumeflow/internal/llm"
	"resumeflow/internal/shared/apperr"
	"resumeflow/resume/model"
)

// Input is what the caller submits for analysis.
type Input struct {
	ResumeText string
	Keywords   []string
}

// Result pairs the structured parse with its ATS assessment.
type Result struct {
	ParsedResume model.ParsedResume   `json:"parsed_resume"`
	Analysis     model.ResumeAnalysis `json:"analysis"`
}

// Service turns résumé text into a parse and an ATS analysis for one credit.
type Service struct {
	Gate *credits.Gate
	LLM  llm.Completer
}

// NewService constructs a Service.
func NewService(gate *credits.Gate, completer llm.Completer) *Service {
	return &Service{Gate: gate, LLM: completer}
}

// Analyze validates the input, spends one credit and asks the provider for
// the parse and analysis in JSON mode.
func (s *Service) Analyze(ctx context.Context, userID string, in Input) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, apperr.ErrUnauthenticated
	}
	if strings.TrimSpace(in.ResumeText) == "" {
		return Result{}, apperr.Newf(apperr.KindInvalidInput, "Resume text is required")
	}
	keywords := NormalizeKeywords(in.Keywords)
	if s.LLM == nil {
		return Result{}, llm.ErrNotConfigured
	}

	return credits.RunGated(ctx, s.Gate, userID, func(ctx context.Context) (Result, error) {
		raw, err := s.LLM.Complete(ctx, llm.Request{
			System:    llm.AnalysisSystemPrompt(keywords),
			User:      llm.AnalysisUserPrompt(in.ResumeText, keywords),
			JSONMode:  true,
			Operation: "analyze",
		})
		if err != nil {
			return Result{}, err
		}
		return decodeResult(raw)
	})
}

// decodeResult requires both top-level objects to be present.
func decodeResult(raw string) (Result, error) {
	var envelope struct {
		ParsedResume json.RawMessage `json:"parsed_resume"`
		Analysis     json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &envelope); err != nil {
		return Result{}, malformed(fmt.Errorf("decode analysis: %w", err))
	}
	if isMissing(envelope.ParsedResume) || isMissing(envelope.Analysis) {
		return Result{}, malformed(fmt.Errorf("analysis response missing parsed_resume or analysis"))
	}

	var out Result
	if err := json.Unmarshal(envelope.ParsedResume, &out.ParsedResume); err != nil {
		return Result{}, malformed(fmt.Errorf("decode parsed_resume: %w", err))
	}
	if err := json.Unmarshal(envelope.Analysis, &out.Analysis); err != nil {
		return Result{}, malformed(fmt.Errorf("decode analysis object: %w", err))
	}
	out.Analysis.Clamp()
	return out, nil
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func malformed(cause error) error {
	return apperr.New(apperr.KindCompletionFailed, "AI returned an unexpected response", cause)
}

// NormalizeKeywords trims keywords, drops blanks and removes case-insensitive
// duplicates while keeping first-seen order.
func NormalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	return out
}
