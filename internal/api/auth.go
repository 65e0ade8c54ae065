package api

import (
	"net/http" // HTTP status codes

	"credit_ledger/internal/domain" // Importing domain models
	"credit_ledger/internal/ledger" // Balance ledger
	"credit_ledger/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest creates a regular user
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// AuthResponse carries the issued JWT
type AuthResponse struct {
	Token string `json:"token"`
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}

// createUser hashes the password and stores the user, writing any error response
func createUser(c *gin.Context, store *ledger.Store, user *domain.User, password string) bool {
	if !isValidPassword(password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
		return false
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return false
	}
	user.Password = hash
	if err := store.CreateUser(c.Request.Context(), user); err != nil {
		writeLedgerError(c, err)
		return false
	}
	return true
}

// RegisterHandler registers a regular (non-seller) user
func RegisterHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user := domain.User{PhoneNumber: req.PhoneNumber}
		if !createUser(c, store, &user, req.Password) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(store *ledger.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := store.UserByPhone(c.Request.Context(), req.PhoneNumber)
		if err != nil || !utils.CheckPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.PhoneNumber, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
