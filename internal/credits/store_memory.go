package credits

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps balances in process. Used in dev and tests.
type MemoryStore struct {
	mu             sync.Mutex
	defaultCredits int
	balances       map[string]int
	grants         map[string]Grant
}

// NewMemoryStore constructs an empty store that lazily creates accounts with defaultCredits.
func NewMemoryStore(defaultCredits int) *MemoryStore {
	return &MemoryStore{
		defaultCredits: defaultCredits,
		balances:       make(map[string]int),
		grants:         make(map[string]Grant),
	}
}

// SetBalance overwrites a balance. Test helper.
func (s *MemoryStore) SetBalance(userID string, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = credits
}

func (s *MemoryStore) GetBalance(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(userID), nil
}

func (s *MemoryStore) TrySpend(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, invalidAmount()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.ensure(userID)
	if current < amount {
		return false, nil
	}
	s.balances[userID] = current - amount
	return true, nil
}

func (s *MemoryStore) Refund(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, invalidAmount()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = s.ensure(userID) + amount
	return s.balances[userID], nil
}

func (s *MemoryStore) ApplyGrant(ctx context.Context, grant Grant) (GrantResult, error) {
	if grant.Credits <= 0 {
		return GrantResult{}, invalidAmount()
	}
	if err := ctx.Err(); err != nil {
		return GrantResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.ensure(grant.UserID)
	if _, seen := s.grants[grant.PaymentID]; seen {
		return GrantResult{Applied: false, Balance: current}, nil
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	s.grants[grant.PaymentID] = grant
	s.balances[grant.UserID] = current + grant.Credits
	return GrantResult{Applied: true, Balance: s.balances[grant.UserID]}, nil
}

// ensure must be called with mu held.
func (s *MemoryStore) ensure(userID string) int {
	credits, ok := s.balances[userID]
	if !ok {
		credits = s.defaultCredits
		s.balances[userID] = credits
	}
	return credits
}

var _ Store = (*MemoryStore)(nil)
