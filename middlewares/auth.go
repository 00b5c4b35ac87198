package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"FACEATTEND/helper"
)

// RequireAdmin rejects requests without a valid admin bearer token and
// stores the token's username as "currentUser".
func RequireAdmin(key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := helper.ParseToken(key, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("currentUser", claims.Username)
		c.Next()
	}
}
