package credits

import (
	"context"
	"errors"
	"fmt"

	"resumeflow/internal/shared/apperr"
)

var (
	// ErrInsufficientCredits is returned by the gate when the spend is refused.
	ErrInsufficientCredits = apperr.ErrInsufficientCredits
	// ErrStoreUnavailable wraps infrastructural store failures.
	ErrStoreUnavailable = apperr.ErrStoreUnavailable
	// ErrUnauthenticated is returned when the gate has no caller identity.
	ErrUnauthenticated = apperr.ErrUnauthenticated
)

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperr.New(apperr.KindStoreUnavailable, "credit store unavailable", fmt.Errorf("%s: %w", op, err))
}

func invalidAmount() error {
	return apperr.Newf(apperr.KindInvalidInput, "amount must be positive")
}
