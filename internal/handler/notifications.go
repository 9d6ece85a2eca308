package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/service"
)

// NotificationHandler serves /api/notifications.
type NotificationHandler struct {
	Notifications *service.NotificationService
	Log           logrus.FieldLogger
}

func NewNotificationHandler(n *service.NotificationService, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Log: log}
}

func (h *NotificationHandler) Mine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Notifications.Mine(ctx, middleware.Actor(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toNotifications(list))
}

// Clear empties the caller's inbox.
func (h *NotificationHandler) Clear(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.Clear(ctx, middleware.Actor(c)); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Notifications.Get(ctx, middleware.Actor(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toNotification(n))
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.Delete(ctx, middleware.Actor(c), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
