package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/queue"
	"github.com/iliyamo/social-feed/internal/repository"
)

// BuildNotification derives the notification for comment on post written
// by commenter.  It reports false for self-comments, which notify nobody.
func BuildNotification(commenter model.User, post model.Post, comment model.Comment, now time.Time) (model.Notification, bool) {
	if commenter.ID == post.UserID {
		return model.Notification{}, false
	}
	msg := commenter.FullName() + " commented on your post"
	if r := []rune(msg); len(r) > model.MaxNotificationLen {
		msg = string(r[:model.MaxNotificationLen])
	}
	return model.Notification{
		ID:        uuid.NewString(),
		UserID:    post.UserID,
		PostID:    post.ID,
		CommentID: comment.ID,
		Message:   msg,
		CreatedAt: now.UTC(),
	}, true
}

// NotificationService owns the inbox of each user.
type NotificationService struct {
	notifications NotificationStore
	publisher     EventPublisher
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewNotificationService(store NotificationStore, publisher EventPublisher, log logrus.FieldLogger) *NotificationService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &NotificationService{notifications: store, publisher: publisher, log: log, now: time.Now}
}

// Notify stores the notification for a new comment, if one is due, and
// announces it on the queue.  A publish failure is logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, commenter model.User, post model.Post, comment model.Comment) (*model.Notification, error) {
	n, ok := BuildNotification(commenter, post, comment, s.now())
	if !ok {
		return nil, nil
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		return nil, err
	}
	ev := queue.NewNotificationCreatedEvent(n, commenter, post)
	if err := s.publisher.PublishNotificationCreated(ctx, ev); err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("notification event not published")
	}
	return &n, nil
}

// Mine lists the actor's notifications.
func (s *NotificationService) Mine(ctx context.Context, actor *model.User) ([]model.Notification, error) {
	return s.notifications.ListByRecipient(ctx, actor.ID)
}

// Get returns a notification addressed to the actor.
func (s *NotificationService) Get(ctx context.Context, actor *model.User, id string) (model.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Notification{}, NotFound("notification %s not found", id)
		}
		return model.Notification{}, err
	}
	if !CanModify(actor, n.UserID) {
		return model.Notification{}, Forbidden("notification belongs to another user")
	}
	return n, nil
}

// Delete removes one of the actor's notifications.
func (s *NotificationService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("notification %s not found", id)
		}
		return err
	}
	return nil
}

// Clear empties the actor's inbox.  Clearing an empty inbox succeeds.
func (s *NotificationService) Clear(ctx context.Context, actor *model.User) error {
	n, err := s.notifications.DeleteByRecipient(ctx, actor.ID)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": actor.ID, "removed": n}).Debug("notifications cleared")
	return nil
}
