package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/shared/auth"
	"resumeflow/internal/shared/server/respond"
)

const (
	// userIDKey is also read by respond.Error for log correlation.
	userIDKey   = "userId"
	identityKey = "identity"
)

// Auth verifies the bearer token and stores the caller identity in context.
// Requests whose path is listed in public pass through without identity.
func Auth(verifier auth.Verifier, public ...string) gin.HandlerFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(c *gin.Context) {
		switch {
		case c.Request.Method == http.MethodOptions:
			c.AbortWithStatus(http.StatusNoContent)
			return
		case open[c.Request.URL.Path]:
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || verifier == nil {
			unauthenticated(c)
			return
		}
		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil || identity.UserID == "" {
			unauthenticated(c)
			return
		}

		c.Set(identityKey, identity)
		c.Set(userIDKey, identity.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthenticated(c *gin.Context) {
	respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token", nil)
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil {
		return auth.Identity{}, false
	}
	val, _ := c.Get(identityKey)
	id, ok := val.(auth.Identity)
	return id, ok
}

// UserIDFromContext returns the verified caller's id or "".
func UserIDFromContext(c *gin.Context) string {
	id, _ := IdentityFromContext(c)
	return id.UserID
}
