package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/auth"
)

func limitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(identityKey, auth.Identity{UserID: user})
		}
		c.Next()
	})
	r.Use(RateLimit(limiter, func(c *gin.Context) string {
		if strings.HasPrefix(c.Request.URL.Path, "/api/v1/ai/") {
			return "ai"
		}
		return ""
	}))
	r.GET("/api/v1/credits", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/ai/rewrite", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitOnlyAppliesToScopedRoutes(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	r := limitedRouter(NewRateLimiter(map[string]Rule{"ai": PerMinute(20, 2)}, func() time.Time { return now }))

	for i := 0; i < 5; i++ {
		if resp := hit(r, http.MethodGet, "/api/v1/credits", "user-1"); resp.Code != http.StatusOK {
			t.Fatalf("credits request %d: expected 200, got %d", i+1, resp.Code)
		}
	}
	for i := 0; i < 2; i++ {
		if resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", "user-1"); resp.Code != http.StatusOK {
			t.Fatalf("ai request %d: expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", "user-1"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("ai request 3: expected 429, got %d", resp.Code)
	}
	if resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", "user-2"); resp.Code != http.StatusOK {
		t.Fatalf("separate user: expected 200, got %d", resp.Code)
	}
}

func TestRateLimitRejectionCarriesRetryHint(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	r := limitedRouter(NewRateLimiter(map[string]Rule{"ai": {PerSecond: 1, Burst: 1}}, func() time.Time { return now }))

	if resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", ""); resp.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", resp.Code)
	}
	resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", "")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				RetryAfterMs int64 `json:"retryAfterMs"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "rate_limited" || body.Error.Details.RetryAfterMs != 1000 {
		t.Fatalf("unexpected body %+v", body)
	}

	now = now.Add(time.Second)
	if resp := hit(r, http.MethodPost, "/api/v1/ai/rewrite", ""); resp.Code != http.StatusOK {
		t.Fatalf("after refill: expected 200, got %d", resp.Code)
	}
}

func TestAllowIgnoresDisabledRules(t *testing.T) {
	l := NewRateLimiter(map[string]Rule{"ai": PerMinute(0, 5)}, nil)
	for i := 0; i < 10; i++ {
		if ok, _ := l.Allow("ai", "user"); !ok {
			t.Fatalf("disabled rule should never limit")
		}
	}
	if ok, _ := l.Allow("unknown", "user"); !ok {
		t.Fatalf("unknown scope should never limit")
	}
}
