package payments

import (
	"context"
	"errors"
)

// ErrWebhookSignature is returned when a webhook payload fails verification.
var ErrWebhookSignature = errors.New("webhook signature verification failed")

// CheckoutRequest describes a one-time purchase of a plan.
type CheckoutRequest struct {
	UserID     string
	Plan       Plan
	SuccessURL string
	CancelURL  string
}

// Checkout is a provider-hosted payment page.
type Checkout struct {
	SessionID string
	URL       string
}

// Payment is the provider's view of a checkout.
type Payment struct {
	ID          string
	UserID      string
	PlanID      string
	Paid        bool
	AmountMinor int64
	Currency    string
}

// Provider is a payment processor.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	FetchPayment(ctx context.Context, sessionID string) (Payment, error)
	// ParseWebhook verifies payload and reports whether it describes a
	// completed checkout.
	ParseWebhook(payload []byte, signature string) (Payment, bool, error)
}
