package middleware

import (
	"net/http" // HTTP status codes

	"invest_platform/internal/domain" // Role constant

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware gates a route group on the role claim placed in the
// context by JWTAuthMiddleware. The role is fixed at token issue time; a
// demoted admin keeps access until the token expires.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole") // Get role from context
		// Check if the role claim made it into the context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check if user role is admin
		if role != domain.RoleAdmin {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
