package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

// UserHandler serves the profile and admin user endpoints.
type UserHandler struct {
	Users *service.UserService
	Log   logrus.FieldLogger
}

func NewUserHandler(users *service.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Users: users, Log: log}
}

type userPatchReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
}

type passwordReq struct {
	Password string `json:"password" form:"password" query:"password"`
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Profile(ctx, middleware.Actor(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// UpdateMe applies a partial profile update.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	patch := model.UserPatch{FirstName: req.FirstName, LastName: req.LastName, Username: req.Username}
	u, err := h.Users.UpdateProfile(ctx, middleware.Actor(c), patch)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// ChangePassword handles POST /api/users/me.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var in service.ChangePasswordInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, middleware.Actor(c), in); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}

// DeleteMe removes the caller's account.  The password comes as a query
// parameter or in the body.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.DeleteProfile(ctx, middleware.Actor(c), req.Password); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminList returns every user.
func (h *UserHandler) AdminList(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.AdminListUsers(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return c.JSON(http.StatusOK, out)
}

// AdminDelete removes the user named by ?user_id=.
func (h *UserHandler) AdminDelete(c echo.Context) error {
	id, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.AdminDeleteUser(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
