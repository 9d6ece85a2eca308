package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/model"
)

const actorKey = "actor"

// SetActor stores the authenticated user on the request context.
func SetActor(c echo.Context, u *model.User) { c.Set(actorKey, u) }

// Actor returns the authenticated user, or nil on public routes.
func Actor(c echo.Context) *model.User {
	u, _ := c.Get(actorKey).(*model.User)
	return u
}

// actorID identifies the caller for rate limiting and logs.  It returns
// "anon" when no user is authenticated.
func actorID(c echo.Context) string {
	if u := Actor(c); u != nil && u.ID != "" {
		return u.ID
	}
	return "anon"
}

// abort writes the JSON error body used across the API.
func abort(c echo.Context, status int, kind, detail string) error {
	if status == http.StatusUnauthorized {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
	}
	return c.JSON(status, echo.Map{"error": kind, "detail": detail})
}
