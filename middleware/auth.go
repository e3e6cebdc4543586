// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"guruconnect/utils"

	"github.com/gin-gonic/gin"
)

// ParticipantIDKey is the gin context key holding the authenticated participant id.
const ParticipantIDKey = "participantID"

// JWTAuthMiddleware validates the bearer token and stores its subject as the caller's participant id.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		participantID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ParticipantIDKey, participantID)
		c.Next()
	}
}

// ParticipantID returns the id stored by JWTAuthMiddleware.
func ParticipantID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ParticipantIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
