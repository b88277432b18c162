package credits

import (
	"context"
	"database/sql"
)

// PGStore persists balances in the profiles table.
type PGStore struct {
	DB             *sql.DB
	DefaultCredits int
}

// NewPGStore constructs a Postgres-backed store.
func NewPGStore(db *sql.DB, defaultCredits int) *PGStore {
	return &PGStore{DB: db, DefaultCredits: defaultCredits}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PGStore) ensure(ctx context.Context, db execer, userID string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO profiles (user_id, credits) VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING`, userID, s.DefaultCredits)
	return err
}

func (s *PGStore) GetBalance(ctx context.Context, userID string) (int, error) {
	if err := s.ensure(ctx, s.DB, userID); err != nil {
		return 0, storeErr("ensure profile", err)
	}
	var credits int
	if err := s.DB.QueryRowContext(ctx, `SELECT credits FROM profiles WHERE user_id = $1`, userID).Scan(&credits); err != nil {
		return 0, storeErr("select credits", err)
	}
	return credits, nil
}

// TrySpend decrements in a single conditional UPDATE; the row lock taken by
// the update serializes concurrent spends for the same user.
func (s *PGStore) TrySpend(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, invalidAmount()
	}
	if err := s.ensure(ctx, s.DB, userID); err != nil {
		return false, storeErr("ensure profile", err)
	}
	res, err := s.DB.ExecContext(ctx, `
UPDATE profiles SET credits = credits - $2, updated_at = now()
WHERE user_id = $1 AND credits >= $2`, userID, amount)
	if err != nil {
		return false, storeErr("spend credits", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("spend credits", err)
	}
	return n == 1, nil
}

func (s *PGStore) Refund(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, invalidAmount()
	}
	if err := s.ensure(ctx, s.DB, userID); err != nil {
		return 0, storeErr("ensure profile", err)
	}
	var credits int
	err := s.DB.QueryRowContext(ctx, `
UPDATE profiles SET credits = credits + $2, updated_at = now()
WHERE user_id = $1 RETURNING credits`, userID, amount).Scan(&credits)
	if err != nil {
		return 0, storeErr("refund credits", err)
	}
	return credits, nil
}

// ApplyGrant records the grant and increments the balance in one transaction.
// A payment id that was already recorded leaves the balance untouched.
func (s *PGStore) ApplyGrant(ctx context.Context, grant Grant) (result GrantResult, err error) {
	if grant.Credits <= 0 {
		return GrantResult{}, invalidAmount()
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return GrantResult{}, storeErr("begin grant", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.ensure(ctx, tx, grant.UserID); err != nil {
		return GrantResult{}, storeErr("ensure profile", err)
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO credit_grants (payment_id, user_id, plan_id, credits, provider)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (payment_id) DO NOTHING`,
		grant.PaymentID, grant.UserID, grant.PlanID, grant.Credits, grant.Provider)
	if err != nil {
		return GrantResult{}, storeErr("insert grant", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return GrantResult{}, storeErr("insert grant", err)
	}

	var credits int
	if inserted == 1 {
		err = tx.QueryRowContext(ctx, `
UPDATE profiles SET credits = credits + $2, updated_at = now()
WHERE user_id = $1 RETURNING credits`, grant.UserID, grant.Credits).Scan(&credits)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT credits FROM profiles WHERE user_id = $1`, grant.UserID).Scan(&credits)
	}
	if err != nil {
		return GrantResult{}, storeErr("apply grant", err)
	}

	if err = tx.Commit(); err != nil {
		return GrantResult{}, storeErr("commit grant", err)
	}
	return GrantResult{Applied: inserted == 1, Balance: credits}, nil
}

var _ Store = (*PGStore)(nil)
