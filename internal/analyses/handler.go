package analyses

import (
	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type analyzeRequest struct {
	ResumeText string   `json:"resumeText"`
	Keywords   []string `json:"keywords" binding:"omitempty,max=50,dive,max=100"`
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/analyze-resume", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set("operation", "analyze")
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	result, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), Input{
		ResumeText: req.ResumeText,
		Keywords:   req.Keywords,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, result)
}
