package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-feed/internal/model"
)

// commentSelect hydrates the comment author, the post and the post author.
var commentSelect = "SELECT " + commentCols("c") + ", " + personCols("ca") + ", " +
	postCols("p") + ", " + personCols("pa") +
	` FROM comments c
	  JOIN users ca ON ca.id = c.user_id
	  JOIN posts p ON p.id = c.post_id
	  JOIN users pa ON pa.id = p.user_id`

// CommentRepo persists comments.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts c.  ID and CreatedAt are filled in when empty.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (id, user_id, post_id, message, date_created) VALUES (?,?,?,?,?)",
		c.ID, c.UserID, c.PostID, c.Message, c.CreatedAt)
	return err
}

func scanComment(s rowScanner) (model.Comment, error) {
	var (
		c          model.Comment
		author     = &model.User{}
		post       = &model.Post{}
		postAuthor = &model.User{}
	)
	if err := s.Scan(joinDest(commentDest(&c), personDest(author), postDest(post), personDest(postAuthor))...); err != nil {
		return c, err
	}
	post.Author = postAuthor
	c.Author, c.Post = author, post
	return c, nil
}

// GetByID returns one hydrated comment or ErrNotFound.
func (r *CommentRepo) GetByID(ctx context.Context, id string) (model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", id))
	return c, notFound(err)
}

// ListByUser returns every comment written by userID.
func (r *CommentRepo) ListByUser(ctx context.Context, userID string) ([]model.Comment, error) {
	return r.list(ctx, commentSelect+" WHERE c.user_id = ? ORDER BY c.date_created, c.id", userID)
}

// ListAll returns every comment in the system.
func (r *CommentRepo) ListAll(ctx context.Context) ([]model.Comment, error) {
	return r.list(ctx, commentSelect+" ORDER BY c.date_created, c.id")
}

func (r *CommentRepo) list(ctx context.Context, q string, args ...any) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes the message of c.
func (r *CommentRepo) Update(ctx context.Context, c model.Comment) error {
	_, err := r.db.ExecContext(ctx, "UPDATE comments SET message=? WHERE id=?", c.Message, c.ID)
	return err
}

// Delete removes a comment and the notifications it triggered.
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE comment_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}
