package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

// me echoes the verified identity so clients can confirm which account a
// token belongs to.
func me(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token", nil)
		return
	}
	respond.OK(c, identity)
}
