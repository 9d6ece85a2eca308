package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// RequireRole rejects the request with 403 unless the authenticated user
// holds role.  It must run after JWTAuth.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !service.Allow(Actor(c), role) {
				return abort(c, http.StatusForbidden, string(service.KindForbidden), string(role)+" role required")
			}
			return next(c)
		}
	}
}
