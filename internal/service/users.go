package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/repository"
	"github.com/iliyamo/social-feed/internal/utils"
)

// ChangePasswordInput is the payload of a password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5,max=200"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UserService manages profiles and the admin view of accounts.
type UserService struct {
	users      UserStore
	tokens     TokenStore
	bcryptCost int
	log        logrus.FieldLogger
}

func NewUserService(users UserStore, tokens TokenStore, bcryptCost int, log logrus.FieldLogger) *UserService {
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

// Profile returns the actor with posts, comments and refresh tokens.
func (s *UserService) Profile(ctx context.Context, actor *model.User) (model.User, error) {
	return s.load(ctx, actor.ID)
}

func (s *UserService) load(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, NotFound("user not found")
		}
		return model.User{}, err
	}
	if err := s.users.Hydrate(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func checkLen(field, v string, lo, hi int) error {
	n := utf8.RuneCountInString(v)
	if n < lo {
		return BadRequest("%s must be at least %d characters", field, lo)
	}
	if n > hi {
		return BadRequest("%s must be at most %d characters", field, hi)
	}
	return nil
}

func validateUserPatch(p model.UserPatch) error {
	if p.FirstName != nil {
		if err := checkLen("first_name", *p.FirstName, 2, 100); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := checkLen("last_name", *p.LastName, 2, 100); err != nil {
			return err
		}
	}
	if p.Username != nil {
		if err := checkLen("username", *p.Username, 7, 200); err != nil {
			return err
		}
	}
	return nil
}

// UpdateProfile applies the present fields of patch to the actor.  A new
// username must not belong to anybody else.
func (s *UserService) UpdateProfile(ctx context.Context, actor *model.User, patch model.UserPatch) (model.User, error) {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		patch.Username = &trimmed
	}
	if err := validateUserPatch(patch); err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, NotFound("user not found")
		}
		return model.User{}, err
	}
	if patch.Username != nil && *patch.Username != u.Username {
		taken, err := s.users.UsernameExists(ctx, *patch.Username)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, Conflict("username %q is already taken", *patch.Username)
		}
	}
	if !patch.Empty() {
		patch.Apply(&u)
		if err := s.users.Update(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return model.User{}, Conflict("username %q is already taken", u.Username)
			}
			return model.User{}, err
		}
	}
	return s.load(ctx, u.ID)
}

// ChangePassword replaces the actor's password and ends all sessions.
func (s *UserService) ChangePassword(ctx context.Context, actor *model.User, in ChangePasswordInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	if in.NewPassword != in.ConfirmPassword {
		return BadRequest("new password and confirmation do not match")
	}
	if in.NewPassword == in.CurrentPassword {
		return BadRequest("new password must differ from the current one")
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("user not found")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.CurrentPassword) {
		return Unauthorized("incorrect current password")
	}
	hash, err := utils.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("password changed")
	return nil
}

// DeleteProfile removes the actor after confirming the password.
func (s *UserService) DeleteProfile(ctx context.Context, actor *model.User, password string) error {
	if password == "" {
		return BadRequest("password is required")
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("user not found")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return BadRequest("incorrect password")
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("user deleted own profile")
	return nil
}

// AdminListUsers returns every account, hydrated.
func (s *UserService) AdminListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.users.Hydrate(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// AdminDeleteUser removes any account.
func (s *UserService) AdminDeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("user %s not found", id)
		}
		return err
	}
	s.log.WithField("user_id", id).Info("user deleted by admin")
	return nil
}
