package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-feed/internal/model"
)

// notificationSelect hydrates the recipient, the post with its author and
// the comment with its author.
var notificationSelect = "SELECT n.id, n.user_id, n.post_id, n.comment_id, n.message, n.notification_date, " +
	personCols("r") + ", " + postCols("p") + ", " + personCols("pa") + ", " +
	commentCols("c") + ", " + personCols("ca") +
	` FROM notifications n
	  JOIN users r ON r.id = n.user_id
	  JOIN posts p ON p.id = n.post_id
	  JOIN users pa ON pa.id = p.user_id
	  JOIN comments c ON c.id = n.comment_id
	  JOIN users ca ON ca.id = c.user_id`

// NotificationRepo persists notifications.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts n.  ID and CreatedAt are filled in when empty.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, post_id, comment_id, message, notification_date) VALUES (?,?,?,?,?,?)",
		n.ID, n.UserID, n.PostID, n.CommentID, n.Message, n.CreatedAt)
	return err
}

func scanNotification(s rowScanner) (model.Notification, error) {
	var (
		n             model.Notification
		recipient     = &model.User{}
		post          = &model.Post{}
		postAuthor    = &model.User{}
		comment       = &model.Comment{}
		commentAuthor = &model.User{}
	)
	dest := joinDest(
		[]any{&n.ID, &n.UserID, &n.PostID, &n.CommentID, &n.Message, &n.CreatedAt},
		personDest(recipient), postDest(post), personDest(postAuthor),
		commentDest(comment), personDest(commentAuthor),
	)
	if err := s.Scan(dest...); err != nil {
		return n, err
	}
	post.Author = postAuthor
	comment.Author = commentAuthor
	n.User, n.Post, n.Comment = recipient, post, comment
	return n, nil
}

// GetByID returns one hydrated notification or ErrNotFound.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (model.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, notificationSelect+" WHERE n.id = ?", id))
	return n, notFound(err)
}

// ListByRecipient returns every notification addressed to userID.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		notificationSelect+" WHERE n.user_id = ? ORDER BY n.notification_date, n.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes one notification; ErrNotFound when absent.
func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// DeleteByRecipient clears the inbox of userID and reports how many rows
// went away.  An empty inbox is not an error.
func (r *NotificationRepo) DeleteByRecipient(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notifications WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
