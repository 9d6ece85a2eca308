package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-feed/internal/model"
)

var postSelect = "SELECT " + postCols("p") + ", " + personCols("a") +
	" FROM posts p JOIN users a ON a.id = p.user_id"

var postCommentSelect = "SELECT " + commentCols("c") + ", " + personCols("ca") +
	" FROM comments c JOIN users ca ON ca.id = c.user_id"

// PostRepo persists posts.  Every read returns posts with their author and
// their comments (each with its author) attached.
type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

// Create inserts p.  ID and CreatedAt are filled in when empty.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (id, user_id, title, content, date_created) VALUES (?,?,?,?,?)",
		p.ID, p.UserID, p.Title, p.Content, p.CreatedAt)
	return err
}

func scanPost(s rowScanner) (model.Post, error) {
	var p model.Post
	author := &model.User{}
	if err := s.Scan(joinDest(postDest(&p), personDest(author))...); err != nil {
		return p, err
	}
	p.Author = author
	return p, nil
}

// GetByID returns one hydrated post or ErrNotFound.
func (r *PostRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", id))
	if err != nil {
		return p, notFound(err)
	}
	posts := []model.Post{p}
	if err := r.attachComments(ctx, posts); err != nil {
		return p, err
	}
	return posts[0], nil
}

// ListAll returns the feed: every post in storage order.
func (r *PostRepo) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.list(ctx, postSelect+" ORDER BY p.date_created, p.id")
}

// ListByUser returns the posts authored by userID.
func (r *PostRepo) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	return r.list(ctx, postSelect+" WHERE p.user_id = ? ORDER BY p.date_created, p.id", userID)
}

func (r *PostRepo) list(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachComments loads the comments of all given posts with a single query
// and distributes them in creation order.
func (r *PostRepo) attachComments(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	args := make([]any, 0, len(posts))
	for i := range posts {
		posts[i].Comments = []model.Comment{}
		index[posts[i].ID] = i
		args = append(args, posts[i].ID)
	}
	q := postCommentSelect + " WHERE c.post_id IN (?" + strings.Repeat(",?", len(posts)-1) + ") ORDER BY c.date_created, c.id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Comment
		author := &model.User{}
		if err := rows.Scan(joinDest(commentDest(&c), personDest(author))...); err != nil {
			return err
		}
		c.Author = author
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return rows.Err()
}

// Update writes title and content of p.
func (r *PostRepo) Update(ctx context.Context, p model.Post) error {
	_, err := r.db.ExecContext(ctx, "UPDATE posts SET title=?, content=? WHERE id=?", p.Title, p.Content, p.ID)
	return err
}

// Delete removes a post together with its notifications and comments.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE post_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}
