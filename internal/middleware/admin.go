package middleware

import (
	"net/http"

	"wallet_service/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := store.Users().FindByID(c.Request.Context(), userID.(uint))
		if err != nil || user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
