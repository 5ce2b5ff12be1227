package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"uniride/internal/auth"
)

const (
	contextUIDKey    = "uid"
	contextEmailKey  = "email"
	contextUserIDKey = "user_id"
)

// AuthMiddleware returns middleware that requires a valid bearer token and
// exposes the caller's identity through the gin context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header", "code": "unauthorized"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header", "code": "unauthorized"})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "code": "unauthorized"})
			return
		}

		c.Set(contextUIDKey, claims.UID)
		c.Set(contextEmailKey, claims.Email)
		c.Set(contextUserIDKey, claims.UserID)

		c.Next()
	}
}

// UID returns the authenticated caller's UID, or "" on unauthenticated routes.
func UID(c *gin.Context) string {
	return c.GetString(contextUIDKey)
}

// Email returns the authenticated caller's email.
func Email(c *gin.Context) string {
	return c.GetString(contextEmailKey)
}
