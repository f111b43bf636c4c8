package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "12.35 USD", FormatMoney(decimal.RequireFromString("12.345"), "USD"))
	assert.Equal(t, "-50.00 IQD", FormatMoney(decimal.NewFromInt(-50), "IQD"))
	assert.Equal(t, "1310.00", FormatMoney(decimal.NewFromInt(1310), ""))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("principal-1", "secret", time.Minute, "backoffice")
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "secret", "backoffice")
	require.NoError(t, err)
	assert.Equal(t, "principal-1", claims.Subject)

	_, err = ParseAndValidateJWT(token, "other-secret", "backoffice")
	assert.Error(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "someone-else")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT("principal-1", "secret", -time.Minute, "")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNewOAuthState(t *testing.T) {
	a, err := NewOAuthState()
	require.NoError(t, err)
	b, err := NewOAuthState()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}

func TestHashPasswordRejectsTruncation(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	BurnPasswordCheck("anything")
}
