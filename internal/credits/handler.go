package credits

import (
	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

// Handler exposes the caller's balance.
type Handler struct {
	Store Store
}

// NewHandler constructs a Handler.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches credit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getBalance)
}

func (h *Handler) getBalance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.FromError(c, ErrUnauthenticated)
		return
	}
	credits, err := h.Store.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, Balance{UserID: userID, Credits: credits})
}
