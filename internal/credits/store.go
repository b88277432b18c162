package credits

import "context"

// Store persists per-user credit balances.
//
// TrySpend must check and decrement in one atomic step: two concurrent spends
// against a balance of one must not both succeed.
type Store interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	TrySpend(ctx context.Context, userID string, amount int) (bool, error)
	Refund(ctx context.Context, userID string, amount int) (int, error)
	ApplyGrant(ctx context.Context, grant Grant) (GrantResult, error)
}
