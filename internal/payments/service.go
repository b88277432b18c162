package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resumeflow/internal/credits"
	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/metrics"
	"resumeflow/internal/shared/telemetry"
)

// CheckoutResult is returned to the client to redirect into the provider.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	PlanID    string `json:"planId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// VerifyResult reports the balance after a confirmed payment.
type VerifyResult struct {
	Success        bool `json:"success"`
	Credits        int  `json:"credits"`
	AlreadyApplied bool `json:"alreadyApplied"`
}

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	Received bool `json:"received"`
	Applied  bool `json:"applied"`
}

// Service sells credit packs and applies top-ups exactly once per payment.
type Service struct {
	Provider   Provider
	Store      credits.Store
	SuccessURL string
	CancelURL  string

	logger zerolog.Logger
}

// NewService constructs a Service. A nil provider disables checkout.
func NewService(provider Provider, store credits.Store, successURL, cancelURL string) *Service {
	return &Service{
		Provider:   provider,
		Store:      store,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		logger:     telemetry.Logger("payments"),
	}
}

var errNotConfigured = apperr.Newf(apperr.KindInternal, "Payments are not configured")

// CreateCheckout starts a purchase of planID for userID.
func (s *Service) CreateCheckout(ctx context.Context, userID, planID string) (CheckoutResult, error) {
	if strings.TrimSpace(userID) == "" {
		return CheckoutResult{}, apperr.ErrUnauthenticated
	}
	plan, ok := PlanByID(planID)
	if !ok {
		return CheckoutResult{}, apperr.Newf(apperr.KindInvalidInput, "Unknown plan")
	}
	if s.Provider == nil {
		return CheckoutResult{}, errNotConfigured
	}

	co, err := s.Provider.CreateCheckout(ctx, CheckoutRequest{
		UserID:     userID,
		Plan:       plan,
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
	})
	if err != nil {
		return CheckoutResult{}, apperr.New(apperr.KindInternal, "Failed to create checkout", err)
	}
	s.logger.Info().Str("user_id", userID).Str("plan_id", plan.ID).Str("session_id", co.SessionID).Msg("checkout created")
	return CheckoutResult{
		SessionID: co.SessionID,
		URL:       co.URL,
		PlanID:    plan.ID,
		Amount:    plan.Amount,
		Currency:  plan.Currency,
	}, nil
}

// Verify confirms a checkout on behalf of the paying user and applies its grant.
func (s *Service) Verify(ctx context.Context, userID, sessionID string) (VerifyResult, error) {
	if strings.TrimSpace(userID) == "" {
		return VerifyResult{}, apperr.ErrUnauthenticated
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return VerifyResult{}, apperr.Newf(apperr.KindInvalidInput, "sessionId is required")
	}
	if s.Provider == nil {
		return VerifyResult{}, errNotConfigured
	}

	payment, err := s.Provider.FetchPayment(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, apperr.New(apperr.KindInvalidInput, "Payment verification failed", err)
	}
	if payment.UserID != userID {
		s.logger.Warn().Str("user_id", userID).Str("session_id", sessionID).Msg("payment belongs to another account")
		return VerifyResult{}, apperr.Newf(apperr.KindInvalidInput, "Payment verification failed")
	}
	if !payment.Paid {
		return VerifyResult{}, apperr.Newf(apperr.KindInsufficientCredits, "Payment has not completed")
	}

	res, err := s.apply(ctx, payment, "verify")
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Success: true, Credits: res.Balance, AlreadyApplied: !res.Applied}, nil
}

// HandleWebhook applies the grant for a completed checkout. Replays are no-ops.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if s.Provider == nil {
		return WebhookResult{}, errNotConfigured
	}
	payment, relevant, err := s.Provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, ErrWebhookSignature) {
			return WebhookResult{}, apperr.New(apperr.KindInvalidInput, "Invalid webhook signature", err)
		}
		return WebhookResult{}, apperr.New(apperr.KindInvalidInput, "Invalid webhook payload", err)
	}
	if !relevant || !payment.Paid {
		return WebhookResult{Received: true}, nil
	}
	res, err := s.apply(ctx, payment, "webhook")
	if err != nil {
		return WebhookResult{}, err
	}
	return WebhookResult{Received: true, Applied: res.Applied}, nil
}

func (s *Service) apply(ctx context.Context, payment Payment, source string) (credits.GrantResult, error) {
	plan, ok := PlanByID(payment.PlanID)
	if !ok {
		return credits.GrantResult{}, apperr.Newf(apperr.KindInvalidInput, "Payment references an unknown plan")
	}
	if payment.UserID == "" {
		return credits.GrantResult{}, apperr.Newf(apperr.KindInvalidInput, "Payment has no account")
	}
	if payment.AmountMinor != 0 && payment.AmountMinor != plan.MinorAmount() {
		s.logger.Warn().
			Str("payment_id", payment.ID).
			Int64("amount", payment.AmountMinor).
			Int64("expected", plan.MinorAmount()).
			Msg("payment amount does not match plan")
		return credits.GrantResult{}, apperr.Newf(apperr.KindInvalidInput, "Payment amount does not match plan")
	}

	res, err := s.Store.ApplyGrant(ctx, credits.Grant{
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		PlanID:    plan.ID,
		Credits:   plan.Credits,
		Provider:  s.Provider.Name(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return credits.GrantResult{}, err
	}

	result := "duplicate"
	if res.Applied {
		result = "applied"
	}
	metrics.IncGrant(source, result)
	s.logger.Info().
		Str("user_id", payment.UserID).
		Str("payment_id", payment.ID).
		Str("plan_id", plan.ID).
		Str("source", source).
		Bool("applied", res.Applied).
		Int("credits", res.Balance).
		Msg("grant processed")
	return res, nil
}
