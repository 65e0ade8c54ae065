package api

import (
	"net/http" // HTTP status codes

	"credit_ledger/internal/domain"     // Importing domain models
	"credit_ledger/internal/ledger"     // Balance ledger
	"credit_ledger/internal/middleware" // Authenticated user lookup
	"credit_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// ListUsersHandler returns users in pages; regular users only see themselves
func ListUsersHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		page := parsePage(c)
		if !caller.IsStaff {
			c.JSON(http.StatusOK, pageResponse("users", []domain.User{*caller}, page, 1))
			return
		}
		users, total, err := store.ListUsers(c.Request.Context(), page)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageResponse("users", users, page, total))
	}
}

// GetUserHandler returns one user by phone number, served from cache when possible
func GetUserHandler(store *ledger.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := middleware.CurrentUser(c)
		phone := c.Param("phone")
		if !caller.IsStaff && caller.PhoneNumber != phone {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		ctx := c.Request.Context()
		var cached domain.User
		found, err := cache.Get(ctx, utils.UserKey(phone), &cached)
		if err != nil {
			logrus.WithError(err).Warn("Cache read failed")
		}
		if found {
			c.JSON(http.StatusOK, gin.H{"user": cached, "cached": true})
			return
		}

		user, err := store.UserByPhone(ctx, phone)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		if err := cache.Set(ctx, utils.UserKey(phone), user); err != nil {
			logrus.WithError(err).Warn("Cache write failed")
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// invalidateUsers drops stale cached users after a balance change
func invalidateUsers(c *gin.Context, cache *utils.Cache, phones ...string) {
	if err := cache.InvalidateUsers(c.Request.Context(), phones...); err != nil {
		logrus.WithError(err).WithField("phones", phones).Warn("Cache invalidation failed")
	}
}
