package model

import "time"

// Comment is a message left by a user on a post.  Both the author and the
// post must exist; a comment never outlives its post.
type Comment struct {
	ID        string    // comments.id
	UserID    string    // comments.user_id
	PostID    string    // comments.post_id
	Message   string    // comments.message
	CreatedAt time.Time // comments.date_created

	Author *User // hydrated author
	Post   *Post // hydrated post, with its Author when loaded by the comment queries
}

// CommentPatch is the partial update payload for a comment.
type CommentPatch struct {
	Message *string
}

// Empty reports whether the patch carries no field.
func (p CommentPatch) Empty() bool { return p.Message == nil }

// Apply overwrites the message when present.
func (p CommentPatch) Apply(c *Comment) {
	if p.Message != nil {
		c.Message = *p.Message
	}
}
