package api

import (
	"net/http" // HTTP status codes

	"credit_ledger/internal/ledger"     // Balance ledger
	"credit_ledger/internal/middleware" // Authenticated user lookup

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Public transaction ids
	"github.com/shopspring/decimal" // Fixed-point amounts
)

// CreateChargeRequest asks for a credit top-up awaiting staff review
type CreateChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateChargeHandler records a WAITING charge for the calling seller
func CreateChargeHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		var req CreateChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		charge, err := l.CreateCharge(c.Request.Context(), caller, req.Amount)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"charge": charge})
	}
}

// ListChargesHandler lists charges; staff may filter by owner, others see their own
func ListChargesHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		status, ok := parseStatus(c)
		if !ok {
			return
		}
		filter := ledger.ChargeFilter{
			Page:        parsePage(c),
			PhoneNumber: c.Query("phone_number"),
			Status:      status,
		}
		if !caller.IsStaff {
			filter.PhoneNumber = caller.PhoneNumber
		}
		charges, total, err := store.ListCharges(c.Request.Context(), filter)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageResponse("charges", charges, filter.Page, total))
	}
}

// GetChargeHandler returns a charge by its public transaction id
func GetChargeHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Param("transaction_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		charge, err := store.ChargeByTransactionID(c.Request.Context(), id)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		// Hide other users' charges behind 404
		if !caller.IsStaff && charge.UserID != caller.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"charge": charge})
	}
}
