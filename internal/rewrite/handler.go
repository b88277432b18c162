package rewrite

import (
	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type rewriteRequest struct {
	Role    string `json:"role" binding:"max=200"`
	Tone    string `json:"tone" binding:"max=100"`
	Content string `json:"content"`
}

type rewriteResponse struct {
	Content string `json:"content"`
}

// RegisterRoutes attaches the rewrite route. /ai/phrase is kept for older UI builds.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/rewrite", h.rewrite)
	rg.POST("/ai/phrase", h.rewrite)
}

func (h *Handler) rewrite(c *gin.Context) {
	c.Set("operation", "rewrite")
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	out, err := h.Svc.Rewrite(c.Request.Context(), middleware.UserIDFromContext(c), Input{
		Role:    req.Role,
		Tone:    req.Tone,
		Content: req.Content,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, rewriteResponse{Content: out})
}
