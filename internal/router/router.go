package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/handler"
	"github.com/iliyamo/social-feed/internal/middleware"
)

// Guards holds the middleware shared by the /api groups.  Nil or disabled
// parts degrade to pass-through.
type Guards struct {
	Auth      echo.MiddlewareFunc // bearer token check, see middleware.JWTAuth
	RateLimit echo.MiddlewareFunc // token bucket, see middleware.NewTokenBucket
	Cache     *middleware.ResponseCache
}

func (g Guards) rateLimit() echo.MiddlewareFunc {
	if g.RateLimit == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return g.RateLimit
}

// protected opens a group whose routes need a signed-in caller.  The rate
// limiter runs after authentication so that the user key strategy sees
// the actor.  Successful writes purge the feed cache.
func (g Guards) protected(e *echo.Echo, prefix string) *echo.Group {
	return e.Group(prefix, g.Auth, g.rateLimit(), g.Cache.PurgeOnWrite())
}

// RegisterRoutes registers the health checks and the metrics endpoint.  These
// routes carry no authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, metrics *middleware.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	if metrics != nil {
		e.GET("/metrics", metrics.Handler())
	}
}

// RegisterAPI wires every /api resource.
func RegisterAPI(e *echo.Echo, g Guards, h Handlers) {
	RegisterUsers(e, g, h.Auth, h.Users)
	RegisterPosts(e, g, h.Posts)
	RegisterComments(e, g, h.Comments)
	RegisterNotifications(e, g, h.Notifications)
}

// Handlers groups the resource handlers built in main.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Posts         *handler.PostHandler
	Comments      *handler.CommentHandler
	Notifications *handler.NotificationHandler
}
