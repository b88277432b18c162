package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/telemetry"
)

// BreakerSettings tunes the circuit around the completion provider.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenFor is how long the breaker rejects calls before probing again.
	OpenFor time.Duration
}

// DefaultBreakerSettings trips after five straight provider failures.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenFor: 30 * time.Second}
}

// Breaker fails fast while the provider is unhealthy. It never retries.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker wraps next with a circuit breaker.
func NewBreaker(next Completer, settings BreakerSettings) *Breaker {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	if settings.OpenFor <= 0 {
		settings.OpenFor = DefaultBreakerSettings().OpenFor
	}
	logger := telemetry.Logger("completion_breaker")
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "completion",
		Timeout: settings.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state changed")
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Complete(ctx context.Context, req Request) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", apperr.New(apperr.KindCompletionFailed, "AI provider temporarily unavailable", err)
	}
	return out, err
}

// State reports the breaker state for health output.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

var _ Completer = (*Breaker)(nil)
