package model

import "time"

// MaxTitleLen is the column width of posts.title.
const MaxTitleLen = 200

// Post is a piece of content published by a user.  A post always has
// exactly one author; deleting the author or the post removes its comments
// and notifications.
//
// Fields:
//
//	ID        – UUID primary key.
//	UserID    – author (users.id).
//	Title     – headline, at most MaxTitleLen characters.
//	Content   – body text, unbounded.
//	CreatedAt – set once at creation and never updated.
type Post struct {
	ID        string    // posts.id
	UserID    string    // posts.user_id
	Title     string    // posts.title
	Content   string    // posts.content
	CreatedAt time.Time // posts.date_created

	Author   *User     // hydrated author, nil when not loaded
	Comments []Comment // hydrated comments with their authors on every post read
}

// PostPatch is the partial update payload for a post.
type PostPatch struct {
	Title   *string
	Content *string
}

// Empty reports whether the patch carries no field.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// Apply overwrites the present fields on post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
}
