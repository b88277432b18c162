package credits

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resumeflow/internal/shared/metrics"
	"resumeflow/internal/shared/telemetry"
)

const refundTimeout = 5 * time.Second

// Gate charges one credit per paid operation.
type Gate struct {
	store  Store
	policy RefundPolicy
	logger zerolog.Logger
}

// NewGate constructs a Gate. A nil policy means NoRefund.
func NewGate(store Store, policy RefundPolicy) *Gate {
	if policy == nil {
		policy = NoRefund{}
	}
	return &Gate{
		store:  store,
		policy: policy,
		logger: telemetry.Logger("credit_gate"),
	}
}

// Policy reports the active refund policy.
func (g *Gate) Policy() RefundPolicy {
	return g.policy
}

// Run spends one credit for userID and then invokes fn. fn is never invoked
// when the spend is refused or fails. Errors from fn are returned unchanged.
func (g *Gate) Run(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}

	ok, err := g.store.TrySpend(ctx, userID, 1)
	if err != nil {
		metrics.IncCreditSpend("error")
		return err
	}
	if !ok {
		metrics.IncCreditSpend("insufficient")
		return ErrInsufficientCredits
	}
	metrics.IncCreditSpend("spent")

	fnErr := fn(ctx)
	if fnErr == nil {
		return nil
	}
	if g.policy.ShouldRefund(fnErr) {
		g.refund(ctx, userID, fnErr)
	}
	return fnErr
}

// refund runs detached from the request context so a cancelled request still
// gets its credit back.
func (g *Gate) refund(parent context.Context, userID string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), refundTimeout)
	defer cancel()
	balance, err := g.store.Refund(ctx, userID, 1)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("credit refund failed")
		return
	}
	metrics.IncCreditSpend("refunded")
	g.logger.Info().
		Str("user_id", userID).
		Str("policy", g.policy.Name()).
		Int("credits", balance).
		AnErr("cause", cause).
		Msg("credit refunded")
}

// RunGated is Run for operations that produce a value.
func RunGated[T any](ctx context.Context, g *Gate, userID string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Run(ctx, userID, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
