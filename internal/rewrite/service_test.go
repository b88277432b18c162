package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/credits"
	"resumeflow/internal/llm"
	"resumeflow/internal/shared/apperr"
)

type fakeLLM struct {
	calls []llm.Request
	out   string
	err   error
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.out, f.err
}

func setup(balance int, policy credits.RefundPolicy, fake *fakeLLM) (*Service, *credits.MemoryStore) {
	store := credits.NewMemoryStore(credits.DefaultStartingCredits)
	store.SetBalance("user-1", balance)
	return NewService(credits.NewGate(store, policy), fake), store
}

func TestRewriteSpendsExactlyOneCredit(t *testing.T) {
	fake := &fakeLLM{out: "- Engineered a scalable service\n- Cut latency by 40%\n"}
	svc, store := setup(5, nil, fake)

	out, err := svc.Rewrite(context.Background(), "user-1", Input{
		Role:    "Software Engineer",
		Tone:    "Professional",
		Content: "Built stuff",
	})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out != fake.out {
		t.Fatalf("expected provider text unmodified, got %q", out)
	}
	if b, _ := store.GetBalance(context.Background(), "user-1"); b != 4 {
		t.Fatalf("expected balance 4, got %d", b)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected one provider call, got %d", len(fake.calls))
	}
	call := fake.calls[0]
	if call.JSONMode {
		t.Fatalf("rewrite must use plain-text mode")
	}
	if call.User != "Built stuff" {
		t.Fatalf("expected content as user message, got %q", call.User)
	}
	if want := llm.RewriteSystemPrompt("Software Engineer", "Professional"); call.System != want {
		t.Fatalf("unexpected system prompt %q", call.System)
	}
}

func TestRewriteBlankContent(t *testing.T) {
	fake := &fakeLLM{out: "x"}
	svc, store := setup(5, nil, fake)

	if _, err := svc.Rewrite(context.Background(), "user-1", Input{Content: " \t"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if b, _ := store.GetBalance(context.Background(), "user-1"); b != 5 || len(fake.calls) != 0 {
		t.Fatalf("blank content must not spend or call the provider")
	}
}

func TestRewriteWithoutProviderKeepsCredit(t *testing.T) {
	store := credits.NewMemoryStore(credits.DefaultStartingCredits)
	store.SetBalance("user-1", 2)
	svc := NewService(credits.NewGate(store, nil), nil)

	_, err := svc.Rewrite(context.Background(), "user-1", Input{Content: "Built stuff"})
	if !errors.Is(err, apperr.ErrCompletionFailed) {
		t.Fatalf("expected CompletionFailed, got %v", err)
	}
	if b, _ := store.GetBalance(context.Background(), "user-1"); b != 2 {
		t.Fatalf("expected balance 2 without a provider, got %d", b)
	}
}

func TestRewriteProviderFailureRefundPolicy(t *testing.T) {
	providerErr := apperr.New(apperr.KindCompletionFailed, "AI provider returned 500", nil)

	svc, store := setup(1, credits.NoRefund{}, &fakeLLM{err: providerErr})
	if _, err := svc.Rewrite(context.Background(), "user-1", Input{Content: "Built stuff"}); !errors.Is(err, apperr.ErrCompletionFailed) {
		t.Fatalf("expected CompletionFailed, got %v", err)
	}
	if b, _ := store.GetBalance(context.Background(), "user-1"); b != 0 {
		t.Fatalf("expected credit kept under NoRefund, got %d", b)
	}

	svc, store = setup(1, credits.RefundOnFailure{}, &fakeLLM{err: providerErr})
	if _, err := svc.Rewrite(context.Background(), "user-1", Input{Content: "Built stuff"}); !errors.Is(err, apperr.ErrCompletionFailed) {
		t.Fatalf("expected CompletionFailed, got %v", err)
	}
	if b, _ := store.GetBalance(context.Background(), "user-1"); b != 1 {
		t.Fatalf("expected credit refunded under RefundOnFailure, got %d", b)
	}
}

func TestRewriteEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setup(1, nil, &fakeLLM{out: "Led migration"})
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/rewrite",
			bytes.NewBufferString(`{"role":"Software Engineer","tone":"Professional","content":"Built stuff"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := send()
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Content != "Led migration" {
		t.Fatalf("unexpected content %q", body.Content)
	}

	if resp := send(); resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 once credits run out, got %d", resp.Code)
	}
}
