package payments

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

const (
	// WebhookPath is mounted outside the auth middleware.
	WebhookPath = "/payments/webhook"

	maxWebhookBody = 64 << 10
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type checkoutRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type verifyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// RegisterRoutes attaches payment routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/plans", h.plans)
	rg.POST("/payments/checkout", h.checkout)
	rg.POST("/payments/verify", h.verify)
	rg.POST(WebhookPath, h.webhook)
}

func (h *Handler) plans(c *gin.Context) {
	respond.OK(c, gin.H{"plans": Plans()})
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	out, err := h.Svc.CreateCheckout(c.Request.Context(), middleware.UserIDFromContext(c), req.PlanID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	out, err := h.Svc.Verify(c.Request.Context(), middleware.UserIDFromContext(c), req.SessionID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, string(apperr.KindInvalidInput), "Failed to read payload", nil)
		return
	}
	out, err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, out)
}
