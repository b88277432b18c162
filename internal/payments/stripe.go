package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"resumeflow/internal/shared/telemetry"
)

const (
	metaUserID = "user_id"
	metaPlanID = "plan_id"
)

// StripeProvider sells plans through Stripe Checkout.
type StripeProvider struct {
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripeProvider sets the Stripe API key and returns a provider.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		webhookSecret: webhookSecret,
		logger:        telemetry.Logger("stripe"),
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

// CreateCheckout opens a one-time payment session for the plan.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Plan.Currency),
				UnitAmount: stripe.Int64(req.Plan.MinorAmount()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Plan.Name),
				},
			},
		}},
		Metadata: map[string]string{
			metaUserID: req.UserID,
			metaPlanID: req.Plan.ID,
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		p.logger.Error().Err(err).Str("plan_id", req.Plan.ID).Msg("create checkout session failed")
		return Checkout{}, fmt.Errorf("create checkout session: %w", err)
	}
	return Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

// FetchPayment retrieves a checkout session by id.
func (p *StripeProvider) FetchPayment(ctx context.Context, sessionID string) (Payment, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return Payment{}, fmt.Errorf("get checkout session: %w", err)
	}
	return paymentFromSession(sess), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes
// checkout.session.completed events. Other event types are ignored.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (Payment, bool, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		p.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return Payment{}, false, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}
	p.logger.Info().Str("event_type", string(event.Type)).Str("event_id", event.ID).Msg("webhook received")

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return Payment{}, false, nil
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return Payment{}, false, fmt.Errorf("decode checkout session: %w", err)
	}
	return paymentFromSession(&sess), true, nil
}

func paymentFromSession(sess *stripe.CheckoutSession) Payment {
	userID := sess.Metadata[metaUserID]
	if userID == "" {
		userID = sess.ClientReferenceID
	}
	return Payment{
		ID:          sess.ID,
		UserID:      userID,
		PlanID:      sess.Metadata[metaPlanID],
		Paid:        sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountMinor: sess.AmountTotal,
		Currency:    string(sess.Currency),
	}
}

var _ Provider = (*StripeProvider)(nil)
