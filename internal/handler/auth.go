package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/service"
)

const requestTimeout = 5 * time.Second

// reqCtx bounds every storage round trip of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// AuthHandler bundles the session endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Log  logrus.FieldLogger
}

func NewAuthHandler(auth *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// SignUp creates an account.  No token is returned; the client signs in
// afterwards.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var in service.SignUpInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.SignUp(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user created successfully", "id": u.ID})
}

// SignIn accepts username and password as a form or as JSON.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var in service.SignInInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.SignIn(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toTokens(pair))
}

// Refresh rotates a refresh token into a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toTokens(pair))
}

// SignOut revokes the posted refresh token, or all of the caller's tokens
// when the body carries none.
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.SignOut(ctx, middleware.Actor(c), req.RefreshToken); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
