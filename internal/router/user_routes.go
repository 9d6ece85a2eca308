package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/handler"
	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/model"
)

// RegisterUsers registers the session and profile endpoints under
// /api/users.  signUp, signIn and refresh are public; the rest require a
// bearer token and the admin routes the admin role.
func RegisterUsers(e *echo.Echo, g Guards, a *handler.AuthHandler, u *handler.UserHandler) {
	rl := g.rateLimit()
	e.POST("/api/users/signUp", a.SignUp, rl)
	e.POST("/api/users/signIn", a.SignIn, rl)
	e.POST("/api/users/refresh", a.Refresh, rl)

	p := g.protected(e, "/api/users")
	p.POST("/signOut", a.SignOut)

	p.GET("/me", u.Me)
	p.PATCH("/me", u.UpdateMe)
	p.POST("/me", u.ChangePassword)
	p.DELETE("/me", u.DeleteMe)

	admin := middleware.RequireRole(model.RoleAdmin)
	p.GET("/admin", u.AdminList, admin)
	p.DELETE("/admin", u.AdminDelete, admin)
}
