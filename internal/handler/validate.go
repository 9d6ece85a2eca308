package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-feed/internal/service"
)

// Validator plugs the service validation rules into echo's c.Validate.
type Validator struct{}

func (Validator) Validate(i interface{}) error { return service.Validate(i) }

type idParam struct {
	ID string `param:"id" json:"id" validate:"required,uuid"`
}

// pathID binds and validates the :id path parameter.
func pathID(c echo.Context) (string, error) {
	var p idParam
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &p); err != nil {
		return "", service.BadRequest("invalid id")
	}
	if err := c.Validate(&p); err != nil {
		return "", err
	}
	return p.ID, nil
}

// queryID reads a UUID query parameter such as ?post_id=.
func queryID(c echo.Context, name string) (string, error) {
	v := c.QueryParam(name)
	if v == "" {
		return "", service.BadRequest("%s is required", name)
	}
	p := idParam{ID: v}
	if err := c.Validate(&p); err != nil {
		return "", service.BadRequest("%s must be a valid id", name)
	}
	return v, nil
}
