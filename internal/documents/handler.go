package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/parse", h.parse)
}

func (h *Handler) parse(c *gin.Context) {
	c.Set("operation", "parse")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, string(apperr.KindInvalidInput), "File exceeds 10 MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, string(apperr.KindInvalidInput), "No file uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, string(apperr.KindInvalidInput), "Unable to read file", nil)
		return
	}
	defer file.Close()

	parsed, err := h.Svc.Parse(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, apperr.ErrUnparsableDocument) {
			respond.Unparsable(c, err)
			return
		}
		respond.FromError(c, err)
		return
	}
	respond.OK(c, parsed)
}
