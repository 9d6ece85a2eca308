package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-feed/internal/model"
)

const userSelect = "SELECT id, first_name, last_name, username, password_hash, role, created_at FROM users"

// UserRepo persists accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u.  ID and CreatedAt are filled in when empty.  A taken
// username yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, first_name, last_name, username, password_hash, role, created_at) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.FirstName, u.LastName, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE id=? LIMIT 1", id))
	return u, notFound(err)
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE username=? LIMIT 1", username))
	return u, notFound(err)
}

// UsernameExists reports whether any account already uses username.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll returns every account ordered by creation.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, userSelect+" ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes the profile fields of u.  The row is assumed to exist;
// callers load it first.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, username=? WHERE id=?",
		u.FirstName, u.LastName, u.Username, u.ID)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// Delete removes a user and everything hanging off it in one transaction:
// notifications that reference the user, their posts or their comments,
// then comments (their own and those on their posts), posts, refresh
// tokens and finally the user row.  ErrNotFound when no such user exists.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM notifications
			 WHERE user_id = ?
			    OR post_id IN (SELECT id FROM posts WHERE user_id = ?)
			    OR comment_id IN (SELECT id FROM comments WHERE user_id = ?)`,
			id, id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comments
			 WHERE user_id = ?
			    OR post_id IN (SELECT id FROM posts WHERE user_id = ?)`,
			id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE user_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}

// Hydrate loads the user's posts, comments and refresh tokens onto u.
func (r *UserRepo) Hydrate(ctx context.Context, u *model.User) error {
	posts, err := r.userPosts(ctx, u.ID)
	if err != nil {
		return err
	}
	comments, err := r.userComments(ctx, u.ID)
	if err != nil {
		return err
	}
	tokens, err := listTokens(ctx, r.DB, u.ID)
	if err != nil {
		return err
	}
	u.Posts, u.Comments, u.RefreshTokens = posts, comments, tokens
	return nil
}

func (r *UserRepo) userPosts(ctx context.Context, userID string) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+postCols("p")+" FROM posts p WHERE p.user_id = ? ORDER BY p.date_created, p.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(postDest(&p)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *UserRepo) userComments(ctx context.Context, userID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+commentCols("c")+" FROM comments c WHERE c.user_id = ? ORDER BY c.date_created, c.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(commentDest(&c)...); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
