package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
)

var (
	jwtService = NewJWTService("test-signing-key", "test-issuer", "test-audience")
	accountID  = id.NewAccountID()
	expiresIn  = time.Hour
)

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, "kim@example.com", "Kim", expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.Subject)
	assert.Equal(t, "kim@example.com", claims.Email)
	assert.Equal(t, "Kim", claims.Name)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.Message(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, "kim@example.com", "Kim", -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.Message(err))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "other-audience")
	token, err := other.GenerateAccessToken(accountID, "kim@example.com", "Kim", expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email: "kim@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID.String(),
			Issuer:   "test-issuer",
			Audience: []string{"test-audience"},
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapter(t *testing.T) {
	adapter := NewAdapter(jwtService)

	t.Run("maps claims", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(accountID, "kim@example.com", "Kim", expiresIn)
		require.NoError(t, err)

		claims, err := adapter.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, accountID, claims.AccountID)
		assert.Equal(t, "kim@example.com", claims.Email)
	})

	t.Run("rejects a non-uuid subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "not-a-uuid",
				Issuer:    "test-issuer",
				Audience:  []string{"test-audience"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = adapter.ValidateToken(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
