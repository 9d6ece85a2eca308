package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-feed/internal/config"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service/servicetest"
	"github.com/iliyamo/social-feed/internal/utils"
)

// suite wires every service to one in-memory store.
type suite struct {
	db            *servicetest.Store
	auth          *AuthService
	users         *UserService
	posts         *PostService
	comments      *CommentService
	notifications *NotificationService
	publisher     *servicetest.Publisher
	hook          *test.Hook
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	cfg := config.Config{
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		Algorithm:      "HS256",
		AccessTTL:      15 * time.Minute,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
	issuer, err := utils.NewTokenIssuer(cfg.AccessSecret, cfg.Algorithm, cfg.AccessTTL)
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	db := servicetest.NewStore()
	pub := &servicetest.Publisher{}
	posts := NewPostService(db.Posts(), log)
	notes := NewNotificationService(db.Notifications(), pub, log)
	return &suite{
		db:            db,
		auth:          NewAuthService(cfg, db.Users(), db.Tokens(), issuer, log),
		users:         NewUserService(db.Users(), db.Tokens(), cfg.BcryptCost, log),
		posts:         posts,
		comments:      NewCommentService(db.Comments(), posts, notes, log),
		notifications: notes,
		publisher:     pub,
		hook:          hook,
	}
}

// signUp registers a user and returns it as an authenticated actor.
func (s *suite) signUp(t *testing.T, first, last, username string) *model.User {
	t.Helper()
	u, err := s.auth.SignUp(context.Background(), SignUpInput{
		FirstName: first, LastName: last, Username: username, Password: "pw12345",
	})
	require.NoError(t, err)
	return &u
}

func (s *suite) admin(t *testing.T) *model.User {
	t.Helper()
	u := s.signUp(t, "Ada", "Admin", "administrator")
	s.db.SetRole(u.ID, model.RoleAdmin)
	u.Role = model.RoleAdmin
	return u
}
