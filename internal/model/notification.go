package model

import "time"

// MaxNotificationLen is the column width of notifications.message.
const MaxNotificationLen = 100

// Notification tells a post author that somebody else commented on the
// post.  Rows are only ever created as a side effect of a comment; callers
// cannot create them directly.
//
// Fields:
//
//	ID        – UUID primary key.
//	UserID    – recipient, always the author of PostID.
//	PostID    – post that received the comment.
//	CommentID – the triggering comment.
//	Message   – generated text, at most MaxNotificationLen characters.
//	CreatedAt – creation timestamp.
type Notification struct {
	ID        string    // notifications.id
	UserID    string    // notifications.user_id
	PostID    string    // notifications.post_id
	CommentID string    // notifications.comment_id
	Message   string    // notifications.message
	CreatedAt time.Time // notifications.notification_date

	User    *User    // hydrated recipient
	Post    *Post    // hydrated post with its author
	Comment *Comment // hydrated comment with its author
}
