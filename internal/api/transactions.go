package api

import (
	"net/http" // HTTP status codes

	"credit_ledger/internal/domain"     // Importing domain models
	"credit_ledger/internal/ledger"     // Balance ledger
	"credit_ledger/internal/middleware" // Authenticated user lookup
	"credit_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Public transaction ids
	"github.com/shopspring/decimal" // Fixed-point amounts
)

// CreateTransactionRequest moves credit from the caller to a receiver
type CreateTransactionRequest struct {
	ReceiverPhoneNumber string          `json:"receiver_phone_number" binding:"required"`
	Amount              decimal.Decimal `json:"amount"`
}

// CreateTransactionHandler sells credit from the calling seller to a receiver.
// A FAILED transaction is still a recorded outcome and is returned with 201.
func CreateTransactionHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		var req CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		tx, err := l.CreateTransaction(c.Request.Context(), caller.PhoneNumber, req.ReceiverPhoneNumber, req.Amount)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		if tx.Status == domain.StatusConfirmed {
			invalidateUsers(c, cache, caller.PhoneNumber, req.ReceiverPhoneNumber)
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": tx})
	}
}

// ListTransactionsHandler lists transactions; non-staff only see ones they take part in
func ListTransactionsHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		status, ok := parseStatus(c)
		if !ok {
			return
		}
		filter := ledger.TransactionFilter{
			Page:                parsePage(c),
			SellerPhoneNumber:   c.Query("seller_phone_number"),
			ReceiverPhoneNumber: c.Query("receiver_phone_number"),
			Status:              status,
		}
		if !caller.IsStaff {
			switch caller.PhoneNumber {
			case filter.SellerPhoneNumber, filter.ReceiverPhoneNumber:
			default:
				if caller.IsSeller {
					filter.SellerPhoneNumber = caller.PhoneNumber
				} else {
					filter.ReceiverPhoneNumber = caller.PhoneNumber
				}
			}
		}
		txs, total, err := store.ListTransactions(c.Request.Context(), filter)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageResponse("transactions", txs, filter.Page, total))
	}
}

// GetTransactionHandler returns a transaction by its public transaction id
func GetTransactionHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Param("transaction_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		tx, err := store.TransactionByTransactionID(c.Request.Context(), id)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		if !caller.IsStaff && tx.SellerID != caller.ID && tx.ReceiverUserID != caller.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}
