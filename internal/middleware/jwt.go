package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// Authenticator resolves a raw bearer token to its user.
// *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.User, error)
}

// JWTAuth validates the Bearer access token of every request and stores
// the resolved user on the context.  Handlers read it back with Actor.
func JWTAuth(auth Authenticator, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return abort(c, http.StatusUnauthorized, string(service.KindUnauthorized), "missing bearer token")
			}

			u, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				var se *service.Error
				if errors.As(err, &se) {
					return abort(c, http.StatusUnauthorized, string(service.KindUnauthorized), se.Message)
				}
				log.WithError(err).Error("authenticate failed")
				return abort(c, http.StatusInternalServerError, "internal", "internal server error")
			}
			SetActor(c, u)
			return next(c)
		}
	}
}
