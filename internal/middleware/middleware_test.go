package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"credit_ledger/internal/config"
	"credit_ledger/internal/db"
	"credit_ledger/internal/domain"
	"credit_ledger/internal/ledger"
	"credit_ledger/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter(t *testing.T) (*gin.Engine, *ledger.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := db.Open(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	store := ledger.NewStore(gdb)

	r := gin.New()
	r.Use(JWTAuthMiddleware(secret), LoadUserMiddleware(store))
	r.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.PhoneNumber)
	})
	r.GET("/staff", StaffOnlyMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, store
}

func request(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, phone, key string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(phone, key)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestJWTAuthMiddleware(t *testing.T) {
	r, store := newRouter(t)
	require.NoError(t, store.CreateUser(context.Background(), &domain.User{PhoneNumber: "+989121111111", Password: "hash"}))

	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", token(t, "+989121111111", "wrong-secret")).Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", token(t, "+989122222222", secret)).Code)

	w := request(r, "/me", token(t, "+989121111111", secret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+989121111111", w.Body.String())
}

func TestStaffOnlyMiddleware(t *testing.T) {
	r, store := newRouter(t)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &domain.User{PhoneNumber: "+989121111111", Password: "hash"}))
	require.NoError(t, store.CreateUser(ctx, &domain.User{PhoneNumber: "+989123333333", Password: "hash", IsStaff: true}))

	assert.Equal(t, http.StatusForbidden, request(r, "/staff", token(t, "+989121111111", secret)).Code)
	assert.Equal(t, http.StatusOK, request(r, "/staff", token(t, "+989123333333", secret)).Code)
}
