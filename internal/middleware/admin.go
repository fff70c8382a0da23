package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware only lets administrators through. It must run after
// AuthMiddleware, which sets the role on the context.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists || role.(string) != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
