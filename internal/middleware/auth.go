package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/auth"
	"github.com/vidai-app/vidai-golang/internal/store"
)

// AuthMiddleware creates a gin.HandlerFunc that guards protected
// routes. It validates the Bearer token, loads the user and puts the
// identity on the request context for the handlers downstream.
func AuthMiddleware(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 2. --- Validate Token ---
		userID, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 3. --- Load the User ---
		// A valid token for a deleted account is still a dead token.
		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 4. --- Reject Banned Accounts ---
		if user.Role == "banned" {
			c.JSON(http.StatusForbidden, gin.H{"error": "This account has been suspended"})
			c.Abort()
			return
		}

		// 5. --- Success ---
		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)
		c.Next()
	}
}
