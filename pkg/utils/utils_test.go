package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFare(t *testing.T) {
	assert.Equal(t, 100.00, CalculateFare(5.0))
	assert.Equal(t, 51.00, CalculateFare(0.1))
	assert.Equal(t, 175.00, CalculateFare(12.5))
}

func TestCalculateCommission(t *testing.T) {
	assert.Equal(t, 40.00, CalculateCommission(5.0))
	assert.Equal(t, 20.40, CalculateCommission(0.1))
	// driver and company shares add back up to the fare
	fare := CalculateFare(7.3)
	assert.InDelta(t, fare, CalculateCommission(7.3)+CompanyIncome(fare), 0.01)
}

func TestCompanyIncome(t *testing.T) {
	assert.Equal(t, 60.00, CompanyIncome(100))
	assert.Equal(t, 30.6, CompanyIncome(51))
}

func TestGenerateVerificationCode(t *testing.T) {
	require.Len(t, VerificationCodeAlphabet, 57)
	seen := map[string]bool{}
	sawLower := false
	for i := 0; i < 200; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, VerificationCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(VerificationCodeAlphabet, r), "unexpected rune %q", r)
		}
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "l")
		if strings.ToUpper(code) != code {
			sawLower = true
		}
		assert.True(t, VerificationCodeMatches(code, strings.ToLower(code)))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
	assert.True(t, sawLower)
}

func TestVerificationCodeMatches(t *testing.T) {
	assert.True(t, VerificationCodeMatches("aB3xYz", "AB3XYZ"))
	assert.True(t, VerificationCodeMatches("aB3xYz", " ab3xyz "))
	assert.False(t, VerificationCodeMatches("aB3xYz", "aB3xY"))
	assert.False(t, VerificationCodeMatches("aB3xYz", "zzzzzz"))
	assert.False(t, VerificationCodeMatches("", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.GenerateToken(7, "driver")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ID)
	assert.Equal(t, "driver", claims.Role)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).GenerateToken(7, "driver")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewTokenIssuer("secret", -time.Minute).GenerateToken(7, "driver")
	require.NoError(t, err)
	_, err = NewTokenIssuer("secret", time.Hour).ValidateToken(expired)
	assert.Error(t, err)
}
