package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const ContextKeyPostID = "post_id"

// PostID parses the :id path parameter and rejects anything that is not a
// positive integer with 400.
func PostID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
		}
		c.Set(ContextKeyPostID, id)
		return next(c)
	}
}

// PostIDFrom returns the id stored by PostID.
func PostIDFrom(c echo.Context) int64 {
	id, _ := c.Get(ContextKeyPostID).(int64)
	return id
}
