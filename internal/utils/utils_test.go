package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("+989121234567", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "+989121234567", claims.PhoneNumber)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{PhoneNumber: "+989121234567"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(signed, "secret")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
}

func TestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	type entry struct {
		Phone string `json:"phone"`
	}

	var got entry
	found, err := cache.Get(ctx, UserKey("+1234567"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, UserKey("+1234567"), entry{Phone: "+1234567"}))
	found, err = cache.Get(ctx, UserKey("+1234567"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "+1234567", got.Phone)
	assert.Equal(t, time.Minute, mr.TTL(UserKey("+1234567")))

	require.NoError(t, cache.InvalidateUsers(ctx, "+1234567", "+7654321"))
	assert.False(t, mr.Exists(UserKey("+1234567")))
}

func TestNilCacheIsNoop(t *testing.T) {
	cache := NewCache(nil, 0)
	assert.Nil(t, cache)

	var dest map[string]any
	found, err := cache.Get(context.Background(), "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "k", 1))
	assert.NoError(t, cache.InvalidateUsers(context.Background(), "+1234567"))
}
