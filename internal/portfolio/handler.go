package portfolio

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
	"resumeflow/internal/shared/storage/object"
	"resumeflow/internal/shared/telemetry"
	"resumeflow/resume/model"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type generateRequest struct {
	ResumeData *model.ParsedResume `json:"resumeData"`
	Theme      string              `json:"theme" binding:"omitempty,oneof=light dark neutral"`
}

// RegisterRoutes attaches portfolio routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/portfolio", h.generate)
	rg.GET("/portfolio/artifacts/*key", h.download)
}

func (h *Handler) generate(c *gin.Context) {
	c.Set("operation", "portfolio")
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	art, err := h.Svc.Generate(c.Request.Context(), middleware.UserIDFromContext(c), Input{
		Resume: req.ResumeData,
		Theme:  req.Theme,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, art)
}

func (h *Handler) download(c *gin.Context) {
	dl, err := h.Svc.Open(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("key"))
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Artifact not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "store_unavailable", "Failed to open artifact", nil)
		return
	}
	defer dl.Body.Close()

	contentType := dl.Object.ContentType
	if contentType == "" {
		contentType = ContentType
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=\""+downloadName(dl.Object.Key)+"\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		telemetry.Warn("portfolio.download_interrupted", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
	}
}

// downloadName strips the storage prefix so the browser saves portfolio.html.
func downloadName(key string) string {
	base := path.Base(key)
	if _, name, ok := strings.Cut(base, "_"); ok && name != "" {
		return name
	}
	return base
}
