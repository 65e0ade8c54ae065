package middleware

import (
	"net/http" // HTTP status codes

	"credit_ledger/internal/domain" // Importing domain models
	"credit_ledger/internal/ledger" // Balance ledger

	"github.com/gin-gonic/gin" // Gin web framework
)

// LoadUserMiddleware resolves the authenticated phone number to a stored user.
// Tokens of deleted users are refused.
func LoadUserMiddleware(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.GetString(PhoneNumberKey) // Set by JWTAuthMiddleware
		if phone == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := store.UserByPhone(c.Request.Context(), phone)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserKey, user) // Fresh row, roles included
		c.Next()             // Proceed to the next handler
	}
}

// CurrentUser returns the user stored by LoadUserMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
