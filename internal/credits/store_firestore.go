package credits

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection = "profiles"
	grantsCollection   = "credit_grants"
)

// FirestoreStore keeps balances in profiles/{userId}.credits. Every mutation
// runs in a Firestore transaction, which retries on contention and so provides
// the atomic check-and-decrement.
type FirestoreStore struct {
	client         *firestore.Client
	defaultCredits int
}

// NewFirestoreStore constructs a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client, defaultCredits int) *FirestoreStore {
	return &FirestoreStore{client: client, defaultCredits: defaultCredits}
}

func (s *FirestoreStore) profile(userID string) *firestore.DocumentRef {
	return s.client.Collection(profilesCollection).Doc(userID)
}

func (s *FirestoreStore) GetBalance(ctx context.Context, userID string) (int, error) {
	var credits int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, exists, err := s.readCredits(tx, s.profile(userID))
		if err != nil {
			return err
		}
		credits = current
		if exists {
			return nil
		}
		return tx.Set(s.profile(userID), s.profileData(current))
	})
	if err != nil {
		return 0, storeErr("get balance", err)
	}
	return credits, nil
}

func (s *FirestoreStore) TrySpend(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, invalidAmount()
	}
	var spent bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		spent = false
		ref := s.profile(userID)
		current, exists, err := s.readCredits(tx, ref)
		if err != nil {
			return err
		}
		if current < amount {
			if exists {
				return nil
			}
			return tx.Set(ref, s.profileData(current))
		}
		spent = true
		return tx.Set(ref, s.profileData(current-amount), firestore.MergeAll)
	})
	if err != nil {
		return false, storeErr("spend credits", err)
	}
	return spent, nil
}

func (s *FirestoreStore) Refund(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, invalidAmount()
	}
	var credits int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.profile(userID)
		current, _, err := s.readCredits(tx, ref)
		if err != nil {
			return err
		}
		credits = current + amount
		return tx.Set(ref, s.profileData(credits), firestore.MergeAll)
	})
	if err != nil {
		return 0, storeErr("refund credits", err)
	}
	return credits, nil
}

func (s *FirestoreStore) ApplyGrant(ctx context.Context, grant Grant) (GrantResult, error) {
	if grant.Credits <= 0 {
		return GrantResult{}, invalidAmount()
	}
	var result GrantResult
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = GrantResult{}
		grantRef := s.client.Collection(grantsCollection).Doc(grant.PaymentID)
		profileRef := s.profile(grant.UserID)

		_, err := tx.Get(grantRef)
		switch {
		case err == nil:
			current, _, err := s.readCredits(tx, profileRef)
			if err != nil {
				return err
			}
			result.Balance = current
			return nil
		case status.Code(err) != codes.NotFound:
			return fmt.Errorf("read grant %s: %w", grant.PaymentID, err)
		}

		current, _, err := s.readCredits(tx, profileRef)
		if err != nil {
			return err
		}
		createdAt := grant.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if err := tx.Create(grantRef, map[string]any{
			"user_id":    grant.UserID,
			"plan_id":    grant.PlanID,
			"credits":    grant.Credits,
			"provider":   grant.Provider,
			"created_at": createdAt,
		}); err != nil {
			return err
		}
		result = GrantResult{Applied: true, Balance: current + grant.Credits}
		return tx.Set(profileRef, s.profileData(result.Balance), firestore.MergeAll)
	})
	if err != nil {
		return GrantResult{}, storeErr("apply grant", err)
	}
	return result, nil
}

func (s *FirestoreStore) readCredits(tx *firestore.Transaction, ref *firestore.DocumentRef) (int, bool, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return s.defaultCredits, false, nil
		}
		return 0, false, fmt.Errorf("read profile %s: %w", ref.ID, err)
	}
	raw, err := snap.DataAt("credits")
	if err != nil {
		return s.defaultCredits, true, nil
	}
	switch v := raw.(type) {
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	default:
		return 0, true, fmt.Errorf("profile %s has non-numeric credits %T", ref.ID, raw)
	}
}

func (s *FirestoreStore) profileData(credits int) map[string]any {
	if credits < 0 {
		credits = 0
	}
	return map[string]any{
		"credits":    credits,
		"updated_at": firestore.ServerTimestamp,
	}
}

var _ Store = (*FirestoreStore)(nil)
