package credits

import (
	"context"
	"errors"
	"testing"

	"resumeflow/internal/shared/apperr"
)

type spyStore struct {
	*MemoryStore
	spends  int
	refunds int
	failErr error
}

func (s *spyStore) TrySpend(ctx context.Context, userID string, amount int) (bool, error) {
	s.spends++
	if s.failErr != nil {
		return false, s.failErr
	}
	return s.MemoryStore.TrySpend(ctx, userID, amount)
}

func (s *spyStore) Refund(ctx context.Context, userID string, amount int) (int, error) {
	s.refunds++
	return s.MemoryStore.Refund(ctx, userID, amount)
}

func newSpyStore(balance int) *spyStore {
	mem := NewMemoryStore(DefaultStartingCredits)
	mem.SetBalance("user-1", balance)
	return &spyStore{MemoryStore: mem}
}

func TestGateSpendsOnceThenRuns(t *testing.T) {
	store := newSpyStore(2)
	gate := NewGate(store, nil)

	calls := 0
	err := gate.Run(context.Background(), "user-1", func(ctx context.Context) error {
		if store.spends != 1 {
			t.Fatalf("expected spend before fn, got %d spends", store.spends)
		}
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 || store.spends != 1 {
		t.Fatalf("expected one call and one spend, got calls=%d spends=%d", calls, store.spends)
	}
	if got, _ := store.GetBalance(context.Background(), "user-1"); got != 1 {
		t.Fatalf("expected balance 1, got %d", got)
	}
}

func TestGateRejectsWithoutCalling(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		balance int
		failErr error
		want    error
		spends  int
	}{
		{name: "unauthenticated", userID: "", balance: 5, want: ErrUnauthenticated, spends: 0},
		{name: "insufficient", userID: "user-1", balance: 0, want: ErrInsufficientCredits, spends: 1},
		{name: "store down", userID: "user-1", balance: 5, failErr: apperr.New(apperr.KindStoreUnavailable, "down", nil), want: ErrStoreUnavailable, spends: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSpyStore(tt.balance)
			store.failErr = tt.failErr
			gate := NewGate(store, nil)

			called := false
			err := gate.Run(context.Background(), tt.userID, func(ctx context.Context) error {
				called = true
				return nil
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if called {
				t.Fatalf("fn must not run when the spend fails")
			}
			if store.spends != tt.spends {
				t.Fatalf("expected %d spends, got %d", tt.spends, store.spends)
			}
		})
	}
}

func TestGateRefundPolicy(t *testing.T) {
	downstream := apperr.New(apperr.KindCompletionFailed, "provider returned 502", nil)

	tests := []struct {
		name        string
		policy      RefundPolicy
		fnErr       error
		wantRefunds int
		wantBalance int
	}{
		{name: "no refund keeps the credit", policy: NoRefund{}, fnErr: downstream, wantRefunds: 0, wantBalance: 0},
		{name: "refund on downstream failure", policy: RefundOnFailure{}, fnErr: downstream, wantRefunds: 1, wantBalance: 1},
		{name: "no refund for caller errors", policy: RefundOnFailure{}, fnErr: apperr.ErrInvalidInput, wantRefunds: 0, wantBalance: 0},
		{name: "refund when the document is unparsable", policy: RefundOnFailure{}, fnErr: apperr.New(apperr.KindUnparsableDocument, "corrupt pdf", nil), wantRefunds: 1, wantBalance: 1},
		{name: "refund when the artifact cannot be stored", policy: RefundOnFailure{}, fnErr: apperr.New(apperr.KindStoreUnavailable, "bucket down", nil), wantRefunds: 1, wantBalance: 1},
		{name: "no refund for internal errors", policy: RefundOnFailure{}, fnErr: apperr.New(apperr.KindInternal, "template", nil), wantRefunds: 0, wantBalance: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSpyStore(1)
			gate := NewGate(store, tt.policy)

			err := gate.Run(context.Background(), "user-1", func(ctx context.Context) error {
				return tt.fnErr
			})
			if err != tt.fnErr {
				t.Fatalf("expected fn error to be returned as-is, got %v", err)
			}
			if store.refunds != tt.wantRefunds {
				t.Fatalf("expected %d refunds, got %d", tt.wantRefunds, store.refunds)
			}
			if got, _ := store.GetBalance(context.Background(), "user-1"); got != tt.wantBalance {
				t.Fatalf("expected balance %d, got %d", tt.wantBalance, got)
			}
		})
	}
}

func TestRunGatedReturnsValue(t *testing.T) {
	gate := NewGate(newSpyStore(1), nil)
	got, err := RunGated(context.Background(), gate, "user-1", func(ctx context.Context) (string, error) {
		return "rewritten", nil
	})
	if err != nil {
		t.Fatalf("RunGated: %v", err)
	}
	if got != "rewritten" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestParseRefundPolicy(t *testing.T) {
	if p, err := ParseRefundPolicy(""); err != nil || p.Name() != "none" {
		t.Fatalf("expected default none, got %v %v", p, err)
	}
	if p, err := ParseRefundPolicy("on_failure"); err != nil || p.Name() != "on_failure" {
		t.Fatalf("expected on_failure, got %v %v", p, err)
	}
	if _, err := ParseRefundPolicy("sometimes"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
