package api

import (
	"errors"   // Error kinds and wrapping
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"credit_ledger/internal/domain" // Importing domain models
	"credit_ledger/internal/ledger" // Balance ledger

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// writeLedgerError maps ledger error kinds onto HTTP responses
func writeLedgerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrDuplicate), errors.Is(err, ledger.ErrUserReferenced):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err.Error(),
		}).Error("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parsePage reads page and page_size, falling back to the defaults
func parsePage(c *gin.Context) ledger.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(ledger.DefaultPageSize)))
	return ledger.Page{Page: page, PageSize: pageSize}.Normalize()
}

// parseStatus reads the optional status filter
func parseStatus(c *gin.Context) (domain.Status, bool) {
	status := domain.Status(c.Query("status"))
	if status == "" || status.Valid() {
		return status, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	return "", false
}

// pageResponse is the paginated envelope shared by every list endpoint
func pageResponse(key string, items any, page ledger.Page, total int64) gin.H {
	return gin.H{
		key:           items,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total":       total,
		"total_pages": (int(total) + page.PageSize - 1) / page.PageSize,
	}
}
