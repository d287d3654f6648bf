// Package session provides middleware that validates session tokens and
// gates admin-only routes.
package session

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openmun/delegation-api/internal/auth"
	"github.com/openmun/delegation-api/internal/response"
)

// Context keys set by RequireAuth for downstream handlers
const (
	PersonIDKey = "person_id"
	RoleKey     = "role"
)

// RequireAuth validates the Bearer token and stores the caller's identity
// in the request context. Requests without a valid token are rejected.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.UnauthorizedError(c, "Missing or malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			response.UnauthorizedError(c, "Invalid or expired session")
			c.Abort()
			return
		}

		c.Set(PersonIDKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects callers whose session does not carry the admin role.
// It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != "admin" {
			response.ForbiddenError(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
