package credits

import (
	"errors"
	"fmt"
	"strings"

	"resumeflow/internal/shared/apperr"
)

// RefundPolicy decides whether a failed paid operation gets its credit back.
// It is the only place that decision is made.
type RefundPolicy interface {
	ShouldRefund(err error) bool
	Name() string
}

// NoRefund keeps the credit whatever happened downstream.
type NoRefund struct{}

func (NoRefund) ShouldRefund(error) bool { return false }
func (NoRefund) Name() string            { return "none" }

// RefundOnFailure returns the credit when the paid step failed for a downstream
// reason the caller could not have prevented.
type RefundOnFailure struct{}

func (RefundOnFailure) ShouldRefund(err error) bool {
	return errors.Is(err, apperr.ErrCompletionFailed) ||
		errors.Is(err, apperr.ErrUnparsableDocument) ||
		errors.Is(err, apperr.ErrStoreUnavailable)
}

func (RefundOnFailure) Name() string { return "on_failure" }

// ParseRefundPolicy maps CREDIT_REFUND_POLICY to a policy.
func ParseRefundPolicy(raw string) (RefundPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "no_refund":
		return NoRefund{}, nil
	case "on_failure", "refund_on_failure":
		return RefundOnFailure{}, nil
	default:
		return nil, fmt.Errorf("unknown refund policy %q", raw)
	}
}
