package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"credit_ledger/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the middleware chain
const (
	PhoneNumberKey = "phoneNumber"
	UserKey        = "user"
)

// JWTAuthMiddleware validates JWT tokens and stores the caller's phone number
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(PhoneNumberKey, claims.PhoneNumber)
		c.Next()
	}
}
