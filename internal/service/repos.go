package service

import (
	"context"
	"time"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/queue"
)

// The interfaces below are the slices of the repository package each
// service needs.  *repository.UserRepo and friends satisfy them.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	Hydrate(ctx context.Context, u *model.User) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, t *model.RefreshToken) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) error
}

type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string) (model.Post, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]model.Post, error)
	Update(ctx context.Context, p model.Post) error
	Delete(ctx context.Context, id string) error
}

type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (model.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Comment, error)
	ListAll(ctx context.Context) ([]model.Comment, error)
	Update(ctx context.Context, c model.Comment) error
	Delete(ctx context.Context, id string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (model.Notification, error)
	ListByRecipient(ctx context.Context, userID string) ([]model.Notification, error)
	Delete(ctx context.Context, id string) error
	DeleteByRecipient(ctx context.Context, userID string) (int64, error)
}

// EventPublisher is satisfied by queue.Publisher.
type EventPublisher interface {
	PublishNotificationCreated(ctx context.Context, ev queue.NotificationCreatedEvent) error
}
