package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-feed/internal/model"
)

// TokenRepo persists refresh tokens.  Only the keyed hash of a token is
// stored, never the raw value.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, t *model.RefreshToken) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked) VALUES (?,?,?,?,?,?)",
		t.ID, t.UserID, t.TokenHash, t.CreatedAt, t.ExpiresAt, t.Revoked)
	return err
}

// ValidateRefresh returns the owner of tokenHash when the token exists, is
// not revoked and has not expired at now.  Any other case is ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, created_at, expires_at, revoked FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.Revoked)
	if err != nil {
		return "", notFound(err)
	}
	if !t.Active(now) {
		return "", ErrNotFound
	}
	return t.UserID, nil
}

// RevokeByHash marks a token as revoked.  It reports false when the token
// was unknown or already revoked, which lets a caller detect a second use.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE token_hash=? AND revoked=FALSE", tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RevokeAllForUser revokes all of the user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE user_id=? AND revoked=FALSE", userID)
	return err
}

// ListByUser returns every token row of the user, newest first.
func (r *TokenRepo) ListByUser(ctx context.Context, userID string) ([]model.RefreshToken, error) {
	return listTokens(ctx, r.DB, userID)
}

func listTokens(ctx context.Context, db *sql.DB, userID string) ([]model.RefreshToken, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, user_id, token_hash, created_at, expires_at, revoked FROM refresh_tokens WHERE user_id=? ORDER BY created_at DESC, id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RefreshToken{}
	for rows.Next() {
		var t model.RefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.Revoked); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
