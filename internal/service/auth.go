package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/config"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/repository"
	"github.com/iliyamo/social-feed/internal/utils"
)

// SignUpInput is the registration payload.
type SignUpInput struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Username  string `json:"username" validate:"required,min=7,max=200"`
	Password  string `json:"password" validate:"required,min=5,max=200"`
}

// SignInInput carries the credentials of a sign-in.  Both form and JSON
// bodies bind into it.
type SignInInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenPair is what a successful sign-in or refresh returns.
type TokenPair struct {
	AccessToken      string
	TokenType        string
	ExpiresIn        int64 // seconds
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService handles credentials and sessions.
type AuthService struct {
	users          UserStore
	tokens         TokenStore
	issuer         *utils.TokenIssuer
	refreshSecret  string
	refreshTTLDays int
	bcryptCost     int
	log            logrus.FieldLogger
	now            func() time.Time
}

func NewAuthService(cfg config.Config, users UserStore, tokens TokenStore, issuer *utils.TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		issuer:         issuer,
		refreshSecret:  cfg.RefreshSecret,
		refreshTTLDays: cfg.RefreshTTLDays,
		bcryptCost:     cfg.BcryptCost,
		log:            log,
		now:            time.Now,
	}
}

// SignUp creates an account with the user role.  No token is issued.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := Validate(in); err != nil {
		return model.User{}, err
	}
	taken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, Conflict("username %q is already taken", in.Username)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, Conflict("username %q is already taken", in.Username)
		}
		return model.User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user signed up")
	return u, nil
}

// SignIn checks the credentials and opens a session.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (TokenPair, error) {
	if err := Validate(in); err != nil {
		return TokenPair{}, err
	}
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, NotFound("user %q not found", in.Username)
		}
		return TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return TokenPair{}, Unauthorized("incorrect password")
	}
	return s.issuePair(ctx, u.ID)
}

// Authenticate resolves a bearer token to its user.  It never writes.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, Unauthorized("missing token")
	}
	sub, err := s.issuer.Parse(raw)
	if err != nil {
		return nil, Unauthorized("could not validate credentials")
	}
	if _, err := uuid.Parse(sub); err != nil {
		return nil, Unauthorized("could not validate credentials")
	}
	u, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized("could not validate credentials")
		}
		return nil, err
	}
	return &u, nil
}

// Refresh exchanges a refresh token for a new pair.  The presented token is
// revoked, so a second use of the same token fails.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenPair{}, BadRequest("refresh_token is required")
	}
	hash := utils.HashRefresh(s.refreshSecret, raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, Unauthorized("invalid refresh token")
		}
		return TokenPair{}, err
	}
	revoked, err := s.tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return TokenPair{}, err
	}
	if !revoked {
		return TokenPair{}, Unauthorized("invalid refresh token")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, Unauthorized("invalid refresh token")
		}
		return TokenPair{}, err
	}
	return s.issuePair(ctx, userID)
}

// SignOut revokes the given refresh token, or every token of the actor when
// raw is empty.  Revoking an already dead token succeeds.
func (s *AuthService) SignOut(ctx context.Context, actor *model.User, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.tokens.RevokeAllForUser(ctx, actor.ID)
	}
	hash := utils.HashRefresh(s.refreshSecret, raw)
	owner, err := s.tokens.ValidateRefresh(ctx, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if owner != actor.ID {
		return Forbidden("refresh token belongs to another user")
	}
	_, err = s.tokens.RevokeByHash(ctx, hash)
	return err
}

func (s *AuthService) issuePair(ctx context.Context, userID string) (TokenPair, error) {
	access, err := s.issuer.Issue(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	now := s.now().UTC()
	row := model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: utils.HashRefresh(s.refreshSecret, refresh.Raw),
		CreatedAt: now,
		ExpiresAt: refresh.Exp,
	}
	if err := s.tokens.StoreRefresh(ctx, &row); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access.Token,
		TokenType:        "bearer",
		ExpiresIn:        int64(s.issuer.TTL() / time.Second),
		RefreshToken:     refresh.Raw,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}
