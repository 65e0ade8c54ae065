package api

import (
	"credit_ledger/internal/ledger"     // Balance ledger
	"credit_ledger/internal/middleware" // Authenticated user lookup
	"credit_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewRouter wires every endpoint onto a gin engine.
// cache may be nil, which disables caching.
func NewRouter(l *ledger.Ledger, cache *utils.Cache, jwtSecret string) *gin.Engine {
	r := gin.Default()
	store := l.Store()

	// Auth routes
	r.POST("/users", RegisterHandler(store))
	r.POST("/token", LoginHandler(store, jwtSecret))

	// Authenticated routes
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.LoadUserMiddleware(store))
	authed.GET("/users", ListUsersHandler(store))
	authed.GET("/users/:phone", GetUserHandler(store, cache))
	authed.POST("/charges", CreateChargeHandler(l))
	authed.GET("/charges", ListChargesHandler(store))
	authed.GET("/charges/:transaction_id", GetChargeHandler(store))
	authed.POST("/transactions", CreateTransactionHandler(l, cache))
	authed.GET("/transactions", ListTransactionsHandler(store))
	authed.GET("/transactions/:transaction_id", GetTransactionHandler(store))

	// Staff routes
	admin := authed.Group("/admin")
	admin.Use(middleware.StaffOnlyMiddleware())
	admin.POST("/users", CreateUserHandler(store))
	admin.DELETE("/users/:phone", DeleteUserHandler(store, cache))
	admin.POST("/charges/confirm", ConfirmChargesHandler(l, cache))
	admin.POST("/charges/reject", RejectChargesHandler(l, cache))
	admin.GET("/audit/:phone", AuditUserHandler(l))
	admin.POST("/audit", AuditAllHandler(l))

	return r
}
