package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-feed/internal/utils"
)

func TestSignUpThenSignIn(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	u := s.signUp(t, "Alice", "Smith", "alice1234")

	stored := s.db.UserRows[u.ID]
	assert.NotEqual(t, "pw12345", stored.PasswordHash)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "pw12345"))

	pair, err := s.auth.SignIn(ctx, SignInInput{Username: "alice1234", Password: "pw12345"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)
	require.Len(t, s.db.TokenRows, 1)
	for hash, tok := range s.db.TokenRows {
		assert.Equal(t, utils.HashRefresh("refresh-secret", pair.RefreshToken), hash)
		assert.True(t, tok.ExpiresAt.After(tok.CreatedAt))
		assert.False(t, tok.Revoked)
	}

	actor, err := s.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.ID)
}

func TestSignUpDuplicateUsername(t *testing.T) {
	s := newSuite(t)
	s.signUp(t, "Alice", "Smith", "alice1234")

	_, err := s.auth.SignUp(context.Background(), SignUpInput{
		FirstName: "Other", LastName: "Person", Username: "alice1234", Password: "secret99",
	})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Len(t, s.db.UserRows, 1)
}

func TestSignUpValidation(t *testing.T) {
	s := newSuite(t)
	cases := map[string]SignUpInput{
		"short first name": {FirstName: "A", LastName: "Smith", Username: "alice1234", Password: "pw12345"},
		"short username":   {FirstName: "Alice", LastName: "Smith", Username: "alice", Password: "pw12345"},
		"short password":   {FirstName: "Alice", LastName: "Smith", Username: "alice1234", Password: "pw"},
		"missing last":     {FirstName: "Alice", Username: "alice1234", Password: "pw12345"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.auth.SignUp(context.Background(), in)
			assert.Equal(t, KindBadRequest, KindOf(err))
		})
	}
	assert.Empty(t, s.db.UserRows)
}

func TestSignInFailures(t *testing.T) {
	s := newSuite(t)
	u := s.signUp(t, "Alice", "Smith", "alice1234")
	before := s.db.UserRows[u.ID].PasswordHash

	_, err := s.auth.SignIn(context.Background(), SignInInput{Username: "nobody12", Password: "pw12345"})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = s.auth.SignIn(context.Background(), SignInInput{Username: "alice1234", Password: "wrong"})
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, before, s.db.UserRows[u.ID].PasswordHash)
	assert.Empty(t, s.db.TokenRows)
}

func TestAuthenticateRejects(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	other, err := utils.NewTokenIssuer("another-secret", "HS256", time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue("0b6f8f5e-8a3e-4a53-9d55-2a1c2f0c1d11")
	require.NoError(t, err)
	notUUID, err := s.auth.issuer.Issue("not-a-uuid")
	require.NoError(t, err)
	ghost, err := s.auth.issuer.Issue("0b6f8f5e-8a3e-4a53-9d55-2a1c2f0c1d11")
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":        "",
		"garbage":      "abc.def.ghi",
		"wrong secret": forged.Token,
		"malformed":    notUUID.Token,
		"unknown user": ghost.Token,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.auth.Authenticate(ctx, raw)
			assert.Equal(t, KindUnauthorized, KindOf(err))
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	s.signUp(t, "Alice", "Smith", "alice1234")
	first, err := s.auth.SignIn(ctx, SignInInput{Username: "alice1234", Password: "pw12345"})
	require.NoError(t, err)

	second, err := s.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = s.auth.Refresh(ctx, first.RefreshToken)
	assert.Equal(t, KindUnauthorized, KindOf(err), "a rotated token cannot be reused")

	_, err = s.auth.Refresh(ctx, "")
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestRefreshRejectsExpired(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	s.signUp(t, "Alice", "Smith", "alice1234")
	pair, err := s.auth.SignIn(ctx, SignInInput{Username: "alice1234", Password: "pw12345"})
	require.NoError(t, err)

	s.auth.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = s.auth.Refresh(ctx, pair.RefreshToken)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestSignOut(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	alice := s.signUp(t, "Alice", "Smith", "alice1234")
	bob := s.signUp(t, "Bob", "Brown", "bobbrown")
	a1, err := s.auth.SignIn(ctx, SignInInput{Username: "alice1234", Password: "pw12345"})
	require.NoError(t, err)
	a2, err := s.auth.SignIn(ctx, SignInInput{Username: "alice1234", Password: "pw12345"})
	require.NoError(t, err)

	assert.Equal(t, KindForbidden, KindOf(s.auth.SignOut(ctx, bob, a1.RefreshToken)))

	require.NoError(t, s.auth.SignOut(ctx, alice, a1.RefreshToken))
	_, err = s.auth.Refresh(ctx, a1.RefreshToken)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	require.NoError(t, s.auth.SignOut(ctx, alice, a1.RefreshToken), "signing out twice is fine")

	require.NoError(t, s.auth.SignOut(ctx, alice, ""))
	_, err = s.auth.Refresh(ctx, a2.RefreshToken)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}
