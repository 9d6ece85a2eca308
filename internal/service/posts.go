package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/repository"
)

// PostInput is the payload of a new post.
type PostInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}

// PostService applies the ownership rules to posts.
type PostService struct {
	posts PostStore
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewPostService(posts PostStore, log logrus.FieldLogger) *PostService {
	return &PostService{posts: posts, log: log, now: time.Now}
}

// Create publishes a post owned by the actor.
func (s *PostService) Create(ctx context.Context, actor *model.User, in PostInput) (model.Post, error) {
	if err := Validate(in); err != nil {
		return model.Post{}, err
	}
	p := model.Post{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.posts.Create(ctx, &p); err != nil {
		return model.Post{}, err
	}
	return s.Get(ctx, p.ID)
}

// Feed returns every post.
func (s *PostService) Feed(ctx context.Context) ([]model.Post, error) {
	return s.posts.ListAll(ctx)
}

// Mine returns the actor's posts.
func (s *PostService) Mine(ctx context.Context, actor *model.User) ([]model.Post, error) {
	return s.posts.ListByUser(ctx, actor.ID)
}

// Get returns one post with its author and comments.
func (s *PostService) Get(ctx context.Context, id string) (model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Post{}, NotFound("post %s not found", id)
		}
		return model.Post{}, err
	}
	return p, nil
}

func validatePostPatch(p model.PostPatch) error {
	if p.Title != nil {
		if *p.Title == "" {
			return BadRequest("title must not be empty")
		}
		if utf8.RuneCountInString(*p.Title) > model.MaxTitleLen {
			return BadRequest("title must be at most %d characters", model.MaxTitleLen)
		}
	}
	return nil
}

// Update applies patch to a post owned by the actor.
func (s *PostService) Update(ctx context.Context, actor *model.User, id string, patch model.PostPatch) (model.Post, error) {
	if err := validatePostPatch(patch); err != nil {
		return model.Post{}, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if !CanModify(actor, p.UserID) {
		return model.Post{}, Forbidden("you can only edit your own posts")
	}
	if patch.Empty() {
		return p, nil
	}
	patch.Apply(&p)
	if err := s.posts.Update(ctx, p); err != nil {
		return model.Post{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a post owned by the actor together with its comments and
// notifications.
func (s *PostService) Delete(ctx context.Context, actor *model.User, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, p.UserID) {
		return Forbidden("you can only delete your own posts")
	}
	return s.remove(ctx, id)
}

// AdminDelete removes any post.
func (s *PostService) AdminDelete(ctx context.Context, id string) error {
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.log.WithField("post_id", id).Info("post deleted by admin")
	return nil
}

func (s *PostService) remove(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("post %s not found", id)
		}
		return err
	}
	return nil
}
