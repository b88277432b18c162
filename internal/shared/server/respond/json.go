package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with status. Every body is scoped to the caller, so
// intermediaries are told not to cache it.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) { JSON(c, http.StatusOK, payload) }
