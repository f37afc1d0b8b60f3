package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// bind decodes the request body into req and runs the registered validator.
// A body that does not decode is reported as 400 before validation.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
