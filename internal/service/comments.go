package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/repository"
)

// CommentInput is the payload of a new comment.
type CommentInput struct {
	Message string `json:"message" validate:"required"`
}

// CommentService applies the comment rules and triggers notifications.
type CommentService struct {
	comments      CommentStore
	posts         *PostService
	notifications *NotificationService
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewCommentService(comments CommentStore, posts *PostService, notifications *NotificationService, log logrus.FieldLogger) *CommentService {
	return &CommentService{comments: comments, posts: posts, notifications: notifications, log: log, now: time.Now}
}

// Create adds a comment by the actor to postID.  When the post belongs to
// someone else its author is notified.  The notification is written after
// the comment; if that write fails the comment stays and the failure is
// logged.
func (s *CommentService) Create(ctx context.Context, actor *model.User, postID string, in CommentInput) (model.Comment, error) {
	if err := Validate(in); err != nil {
		return model.Comment{}, err
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return model.Comment{}, err
	}
	c := model.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		PostID:    post.ID,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, &c); err != nil {
		return model.Comment{}, err
	}
	created, err := s.Get(ctx, c.ID)
	if err != nil {
		return model.Comment{}, err
	}
	if _, err := s.notifications.Notify(ctx, *actor, post, created); err != nil {
		s.log.WithError(err).WithField("comment_id", c.ID).Error("notification not stored")
	}
	return created, nil
}

// Get returns one comment with author, post and post author.
func (s *CommentService) Get(ctx context.Context, id string) (model.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Comment{}, NotFound("comment %s not found", id)
		}
		return model.Comment{}, err
	}
	return c, nil
}

// Mine returns every comment the actor wrote.
func (s *CommentService) Mine(ctx context.Context, actor *model.User) ([]model.Comment, error) {
	return s.comments.ListByUser(ctx, actor.ID)
}

// Update changes the message of a comment written by the actor.
func (s *CommentService) Update(ctx context.Context, actor *model.User, id string, patch model.CommentPatch) (model.Comment, error) {
	if patch.Message != nil && *patch.Message == "" {
		return model.Comment{}, BadRequest("message must not be empty")
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if !CanModify(actor, c.UserID) {
		return model.Comment{}, Forbidden("you can only edit your own comments")
	}
	if patch.Empty() {
		return c, nil
	}
	patch.Apply(&c)
	if err := s.comments.Update(ctx, c); err != nil {
		return model.Comment{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a comment.  The comment author and the post author may
// both do this.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteComment(actor, c) {
		return Forbidden("you can only delete your own comments or comments on your posts")
	}
	return s.remove(ctx, id)
}

// AdminList returns every comment.
func (s *CommentService) AdminList(ctx context.Context) ([]model.Comment, error) {
	return s.comments.ListAll(ctx)
}

// AdminDelete removes any comment.
func (s *CommentService) AdminDelete(ctx context.Context, id string) error {
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.log.WithField("comment_id", id).Info("comment deleted by admin")
	return nil
}

func (s *CommentService) remove(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("comment %s not found", id)
		}
		return err
	}
	return nil
}
