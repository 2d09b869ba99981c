package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_UserID(t *testing.T) {
	j := NewJWTUtil("secret")

	token, err := j.GenerateToken("user-1", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	id, err := j.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	legacy, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-2"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	id, err = j.UserID(legacy)
	require.NoError(t, err)
	assert.Equal(t, "user-2", id)
}

func TestJWTUtil_RejectsBadTokens(t *testing.T) {
	j := NewJWTUtil("secret")

	expired, err := j.GenerateToken("user-1", jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	forged, err := NewJWTUtil("other").GenerateToken("user-1", nil)
	require.NoError(t, err)
	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "user"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"forged":    forged,
		"anonymous": anonymous,
		"garbage":   "a.b.c",
	} {
		_, err := j.UserID(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
