package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	ti, err := NewTokenIssuer("secret", "HS256", 15*time.Minute)
	require.NoError(t, err)

	tok, err := ti.Issue("3f1c6c2e-7d43-4d39-9a2b-2b7b1a0f9c11")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	sub, err := ti.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "3f1c6c2e-7d43-4d39-9a2b-2b7b1a0f9c11", sub)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a, _ := NewTokenIssuer("secret-a", "HS256", time.Minute)
	b, _ := NewTokenIssuer("secret-b", "HS256", time.Minute)
	tok, err := a.Issue("u-1")
	require.NoError(t, err)
	_, err = b.Parse(tok.Token)
	assert.Error(t, err)
}

func TestParseRejectsOtherAlgorithm(t *testing.T) {
	a, _ := NewTokenIssuer("secret", "HS512", time.Minute)
	b, _ := NewTokenIssuer("secret", "HS256", time.Minute)
	tok, err := a.Issue("u-1")
	require.NoError(t, err)
	_, err = b.Parse(tok.Token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	ti, _ := NewTokenIssuer("secret", "HS256", time.Minute)
	ti.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := ti.Issue("u-1")
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Parse(tok.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	ti, _ := NewTokenIssuer("secret", "HS256", time.Minute)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ti.Parse(raw)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestNewTokenIssuerRejectsAsymmetric(t *testing.T) {
	_, err := NewTokenIssuer("secret", "RS256", time.Minute)
	assert.Error(t, err)
	_, err = NewTokenIssuer("", "HS256", time.Minute)
	assert.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), rt.Exp, 5*time.Second)

	h1 := HashRefresh("k1", rt.Raw)
	assert.Equal(t, h1, HashRefresh("k1", rt.Raw))
	assert.NotEqual(t, h1, HashRefresh("k2", rt.Raw))
	assert.Len(t, h1, 64)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw12345", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "pw12345", hash)
	assert.True(t, VerifyPassword(hash, "pw12345"))
	assert.False(t, VerifyPassword(hash, "pw54321"))
}
