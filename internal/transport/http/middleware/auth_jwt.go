package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/domain"
	resp "go-notes-api/internal/transport/http/response"
)

const identityKey = "identity"

// Identity returns the claims attached by RequireAuth or OptionalAuth.
// Absent on public routes hit without (or with an invalid) token.
func Identity(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// RequireAuth rejects requests without a verifiable token.
func RequireAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "token required"))
			return
		}
		claims, err := j.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set(identityKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// stays silent otherwise, so public reads can still derive
// ownership-dependent fields for logged-in callers.
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("Authorization"); raw != "" {
			if claims, err := j.Parse(raw); err == nil {
				c.Set(identityKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles gates an already-authenticated group to a role set.
// Must run after RequireAuth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "token required"))
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "insufficient role"))
	}
}
