package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resumeflow/internal/llm"
	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/metrics"
	"resumeflow/internal/shared/telemetry"
)

const (
	DefaultBaseURL = "https://api.longcat.ai/v1/chat/completions"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 4 << 20
)

// Client implements llm.Completer against an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Options configures a Client. Empty fields take the package defaults.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient constructs a new chat completions client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("LONGCAT_API_KEY is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSpace(opts.BaseURL),
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   strings.TrimSpace(opts.Model),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: telemetry.Logger("completion"),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one request. There are no retries.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	start := time.Now()
	out, usage, err := c.do(ctx, in)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ObserveCompletion("error", elapsed)
		c.logger.Warn().Err(err).Str("operation", in.Operation).Dur("elapsed", elapsed).Msg("completion failed")
		return "", err
	}
	metrics.ObserveCompletion("ok", elapsed)
	c.logUsage(in.Operation, elapsed, usage)
	return out, nil
}

func (c *Client) do(ctx context.Context, in llm.Request) (string, *chatUsage, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: in.System},
			{Role: "user", Content: in.User},
		},
	}
	if in.JSONMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, failed("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, failed("build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", nil, apperr.New(apperr.KindCompletionFailed, "AI provider request timed out", err)
		}
		return "", nil, failed("send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", nil, failed("read response", err)
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("AI provider returned %d", resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", nil, apperr.New(apperr.KindCompletionFailed, msg, fmt.Errorf("status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return "", nil, failed("decode response", decodeErr)
	}
	if parsed.Error != nil {
		return "", nil, apperr.New(apperr.KindCompletionFailed, parsed.Error.Message, fmt.Errorf("provider error type=%s", parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", nil, failed("decode response", errors.New("response has no choices"))
	}
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

func failed(step string, cause error) error {
	return apperr.New(apperr.KindCompletionFailed, "AI provider request failed", fmt.Errorf("%s: %w", step, cause))
}

func (c *Client) logUsage(operation string, elapsed time.Duration, usage *chatUsage) {
	ev := c.logger.Info().Str("model", c.model).Str("operation", operation).Dur("elapsed", elapsed)
	if usage != nil {
		ev = ev.Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens)
	}
	ev.Msg("completion response")
}

var _ llm.Completer = (*Client)(nil)
