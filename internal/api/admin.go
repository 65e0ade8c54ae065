package api

import (
	"errors"   // Error kinds and wrapping
	"net/http" // HTTP status codes

	"credit_ledger/internal/domain"     // Importing domain models
	"credit_ledger/internal/ledger"     // Balance ledger
	"credit_ledger/internal/middleware" // Authenticated user lookup
	"credit_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Public transaction ids
	"github.com/sirupsen/logrus" // Structured logging
)

// CreateUserRequest lets staff create users with roles
type CreateUserRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	IsSeller    bool   `json:"is_seller"`
	IsStaff     bool   `json:"is_staff"`
}

// SettleChargesRequest names the charges to confirm or reject as one batch
type SettleChargesRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids" binding:"required,min=1"`
}

// MismatchResponse describes one balance that disagrees with its history
type MismatchResponse struct {
	PhoneNumber string `json:"phone_number"`
	Balance     string `json:"balance"`
	Expected    string `json:"expected"`
	Diff        string `json:"diff"`
}

func mismatchResponse(m *ledger.BalanceMismatchError) MismatchResponse {
	return MismatchResponse{
		PhoneNumber: m.PhoneNumber,
		Balance:     m.Balance.String(),
		Expected:    m.Expected.String(),
		Diff:        m.Diff().String(),
	}
}

// CreateUserHandler creates a user with explicit seller and staff flags
func CreateUserHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user := domain.User{PhoneNumber: req.PhoneNumber, IsSeller: req.IsSeller, IsStaff: req.IsStaff}
		if !createUser(c, store, &user, req.Password) {
			return
		}
		staff, _ := middleware.CurrentUser(c)
		logrus.WithFields(logrus.Fields{
			"staff":     staff.PhoneNumber,
			"user":      user.PhoneNumber,
			"is_seller": user.IsSeller,
			"is_staff":  user.IsStaff,
		}).Info("User created by staff")
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// DeleteUserHandler removes a user that has no ledger history
func DeleteUserHandler(store *ledger.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")
		if err := store.DeleteUser(c.Request.Context(), phone); err != nil {
			writeLedgerError(c, err)
			return
		}
		invalidateUsers(c, cache, phone)
		c.Status(http.StatusNoContent)
	}
}

// settleChargesHandler is shared by the confirm and reject endpoints
func settleChargesHandler(settle func(*gin.Context, []uuid.UUID) ([]domain.Charge, error), cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettleChargesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		charges, err := settle(c, req.TransactionIDs)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		phones := make([]string, 0, len(charges))
		for _, ch := range charges {
			if ch.User.PhoneNumber != "" {
				phones = append(phones, ch.User.PhoneNumber)
			}
		}
		invalidateUsers(c, cache, phones...)
		c.JSON(http.StatusOK, gin.H{"charges": charges})
	}
}

// ConfirmChargesHandler confirms WAITING charges and credits their owners
func ConfirmChargesHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return settleChargesHandler(func(c *gin.Context, ids []uuid.UUID) ([]domain.Charge, error) {
		return l.ConfirmCharges(c.Request.Context(), ids)
	}, cache)
}

// RejectChargesHandler fails WAITING charges without touching balances
func RejectChargesHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return settleChargesHandler(func(c *gin.Context, ids []uuid.UUID) ([]domain.Charge, error) {
		return l.RejectCharges(c.Request.Context(), ids)
	}, cache)
}

// AuditUserHandler reconciles one user's balance against its confirmed history
func AuditUserHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")
		err := l.CheckUserBalance(c.Request.Context(), phone)
		var mismatch *ledger.BalanceMismatchError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"phone_number": phone, "consistent": true})
		case errors.As(err, &mismatch):
			c.JSON(http.StatusOK, gin.H{"phone_number": phone, "consistent": false, "mismatch": mismatchResponse(mismatch)})
		default:
			writeLedgerError(c, err)
		}
	}
}

// AuditAllHandler reconciles every user and lists the mismatches
func AuditAllHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		mismatches, err := l.AuditAll(c.Request.Context())
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		resp := make([]MismatchResponse, 0, len(mismatches))
		for _, m := range mismatches {
			resp = append(resp, mismatchResponse(m))
		}
		c.JSON(http.StatusOK, gin.H{"mismatches": resp})
	}
}
