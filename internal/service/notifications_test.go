package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationAccess(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	alice := s.signUp(t, "Alice", "Smith", "alice1234")
	bob := s.signUp(t, "Bob", "Brown", "bobbrown")
	post, err := s.posts.Create(ctx, alice, PostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	_, err = s.comments.Create(ctx, bob, post.ID, CommentInput{Message: "nice"})
	require.NoError(t, err)

	inbox, err := s.notifications.Mine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	id := inbox[0].ID

	_, err = s.notifications.Get(ctx, bob, id)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, KindForbidden, KindOf(s.notifications.Delete(ctx, bob, id)))

	n, err := s.notifications.Get(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)

	require.NoError(t, s.notifications.Delete(ctx, alice, id))
	assert.Equal(t, KindNotFound, KindOf(s.notifications.Delete(ctx, alice, id)))
}

func TestClearNotificationsIsIdempotent(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	alice := s.signUp(t, "Alice", "Smith", "alice1234")
	bob := s.signUp(t, "Bob", "Brown", "bobbrown")
	post, err := s.posts.Create(ctx, alice, PostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = s.comments.Create(ctx, bob, post.ID, CommentInput{Message: "again"})
		require.NoError(t, err)
	}

	require.NoError(t, s.notifications.Clear(ctx, alice))
	require.NoError(t, s.notifications.Clear(ctx, alice))
	inbox, err := s.notifications.Mine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
