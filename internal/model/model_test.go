package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestPostPatchApplyOnlyTouchesPresentFields(t *testing.T) {
	p := Post{Title: "old title", Content: "old content"}

	PostPatch{Title: strp("new title")}.Apply(&p)
	assert.Equal(t, "new title", p.Title)
	assert.Equal(t, "old content", p.Content)

	PostPatch{Content: strp("")}.Apply(&p)
	assert.Equal(t, "new title", p.Title)
	assert.Equal(t, "", p.Content, "an explicit empty value is still applied")
}

func TestUserPatch(t *testing.T) {
	u := User{FirstName: "Alice", LastName: "Smith", Username: "alice1234"}
	assert.True(t, UserPatch{}.Empty())

	patch := UserPatch{LastName: strp("Jones")}
	assert.False(t, patch.Empty())
	patch.Apply(&u)
	assert.Equal(t, "Alice Jones", u.FullName())
	assert.Equal(t, "alice1234", u.Username)
}

func TestCommentPatch(t *testing.T) {
	c := Comment{Message: "first"}
	CommentPatch{}.Apply(&c)
	assert.Equal(t, "first", c.Message)
	CommentPatch{Message: strp("second")}.Apply(&c)
	assert.Equal(t, "second", c.Message)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestRefreshTokenActive(t *testing.T) {
	now := time.Now()
	tok := RefreshToken{CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Active(now))
	assert.False(t, tok.Active(now.Add(2*time.Hour)))
	tok.Revoked = true
	assert.False(t, tok.Active(now))
}
