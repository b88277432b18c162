package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesRecordedSeries(t *testing.T) {
	ObserveHTTP(http.MethodPost, "/api/v1/ai/rewrite", http.StatusOK, 25*time.Millisecond)
	IncCreditSpend("spent")
	IncGrant("webhook", "duplicate")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`resumeflow_http_requests_total{method="POST",route="/api/v1/ai/rewrite",status="200"}`,
		`resumeflow_credit_spend_total{outcome="spent"}`,
		`resumeflow_credit_grants_total{result="duplicate",source="webhook"}`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected metrics output to contain %s", want)
		}
	}
}
