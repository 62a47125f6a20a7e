package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notelinkapp/notelink/internal/server/auth"
)

const accountIDKey = "notelink_account_id"

// AuthMiddleware validates the bearer token from the Authorization header
// and stores the account id in the gin context for downstream handlers.
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		accountID, err := auth.GetAccountIDFromToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// AccountID returns the account id set by AuthMiddleware.
func AccountID(c *gin.Context) string {
	return c.GetString(accountIDKey)
}
