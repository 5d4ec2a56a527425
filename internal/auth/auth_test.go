package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	Init("test-secret")

	tokenString, err := GenerateJWT("worker@example.com", "worker", "WH-01", "worker-1", time.Hour)
	require.NoError(t, err)

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return Secret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "worker@example.com", claims.Email)
	assert.Equal(t, "worker", claims.Role)
	assert.Equal(t, "WH-01", claims.WarehouseID)
	assert.Equal(t, "worker-1", claims.UserID)
}
