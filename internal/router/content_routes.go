package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/handler"
	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/model"
)

// RegisterPosts registers /api/posts.  Static segments (my_post, admin)
// win over :id in echo's router.
func RegisterPosts(e *echo.Echo, g Guards, h *handler.PostHandler) {
	p := g.protected(e, "/api/posts")
	p.POST("", h.Create)
	p.GET("", h.Feed, g.Cache.Middleware())
	p.GET("/my_post", h.Mine)
	p.GET("/:id", h.Get)
	p.PATCH("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
	p.DELETE("/admin/:id", h.AdminDelete, middleware.RequireRole(model.RoleAdmin))
}

// RegisterComments registers /api/comments.  New comments name their post
// with ?post_id=.
func RegisterComments(e *echo.Echo, g Guards, h *handler.CommentHandler) {
	p := g.protected(e, "/api/comments")
	p.POST("", h.Create)
	p.GET("/my_comments", h.Mine)
	p.GET("/:id", h.Get)
	p.PATCH("/:id", h.Update)
	p.DELETE("/:id", h.Delete)

	admin := middleware.RequireRole(model.RoleAdmin)
	p.GET("/admin", h.AdminList, admin)
	p.DELETE("/admin/:id", h.AdminDelete, admin)
}

// RegisterNotifications registers /api/notifications.  Every route acts on
// the caller's own inbox.
func RegisterNotifications(e *echo.Echo, g Guards, h *handler.NotificationHandler) {
	p := g.protected(e, "/api/notifications")
	p.GET("", h.Mine)
	p.DELETE("", h.Clear)
	p.GET("/:id", h.Get)
	p.DELETE("/:id", h.Delete)
}
