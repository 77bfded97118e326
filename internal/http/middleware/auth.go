// README: Bearer-token auth; anonymous when no verifier is configured.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripmate/internal/infra"
)

const callerKey = "caller"

// Auth verifies "Authorization: Bearer <token>" with verifier and stores the
// caller in the gin context. A nil verifier lets every request through anonymously.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		caller, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil || caller == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerUID returns the authenticated UID, or "" for anonymous requests.
func CallerUID(c *gin.Context) string {
	v, ok := c.Get(callerKey)
	if !ok {
		return ""
	}
	caller, _ := v.(*infra.Caller)
	if caller == nil {
		return ""
	}
	return caller.UID
}
