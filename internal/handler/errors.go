// Package handler adapts HTTP requests to the service layer and shapes the
// results into the public JSON responses.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindBadRequest:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
}

// fail writes err as {"error": kind, "detail": message}.  Anything that is
// not a rule violation is logged and hidden behind a generic 500.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "detail": "internal server error"})
	}
	if status == http.StatusUnauthorized {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
	}
	var se *service.Error
	errors.As(err, &se)
	return c.JSON(status, echo.Map{"error": string(kind), "detail": se.Message})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": string(service.KindBadRequest), "detail": "invalid body"})
}
