package utils

import (
	"regexp"
	"testing"

	"github.com/soundstage-events/backoffice/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.JWTSecret
	config.JWTSecret = secret
	t.Cleanup(func() { config.JWTSecret = prev })
}

func TestToken(t *testing.T) {
	withSecret(t, "first-secret")

	token, err := GenerateToken("65f0c0ffee0000000000beef", "owner@soundstage.test")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0000000000beef", claims.AdminID)
	assert.Equal(t, "owner@soundstage.test", claims.Email)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)

	withSecret(t, "rotated-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestToken_NoSecret(t *testing.T) {
	withSecret(t, "")
	_, err := GenerateToken("id", "a@b.c")
	assert.Error(t, err)
	_, err = ValidateToken("x.y.z")
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp)
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1)

	state, err := RandomState()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, state)
}
