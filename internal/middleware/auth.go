package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/models"
	"jobdesk/api/internal/security"
)

const identityKey = "identity"

// extractToken pulls a bearer token from the Authorization header,
// falling back to the access-token cookie for browser clients. The
// refresh cookie is never consulted: it carries no role claim and can
// only be exchanged at the refresh endpoint.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token, err := c.Cookie("accessToken"); err == nil && token != "" {
		return token
	}
	return ""
}

// Auth resolves an Identity from the request token or rejects with 401.
// The Identity comes only from the token service; nothing else may
// fabricate one.
func Auth(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized - no token provided",
			})
			return
		}

		identity, err := tokens.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized - invalid or expired token",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches an Identity when a valid token is present but
// never blocks the request. Endpoints whose response shape varies by
// caller use this.
func OptionalAuth(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if identity, err := tokens.VerifyAccess(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// RequireRoles enforces a role allow-list after Auth has run. The 403
// message names both the required and the actual role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
		names = append(names, string(role))
	}
	required := strings.Join(names, " or ")

	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		if _, ok := roleSet[identity.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": fmt.Sprintf("Forbidden - required role: %s, but user has role: %s", required, identity.Role),
			})
			return
		}

		c.Next()
	}
}

// IdentityFrom returns the Identity attached by Auth or OptionalAuth.
func IdentityFrom(c *gin.Context) (security.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return security.Identity{}, false
	}
	identity, ok := val.(security.Identity)
	return identity, ok
}
