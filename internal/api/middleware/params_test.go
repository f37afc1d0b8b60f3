package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPostID_Valid(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/posts/12", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("12")

	called := false
	handler := PostID(func(c echo.Context) error {
		called = true
		if got := PostIDFrom(c); got != 12 {
			t.Fatalf("expected post id 12, got %d", got)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestPostID_Invalid(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", ""} {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)

		handler := PostID(func(c echo.Context) error {
			t.Fatalf("next should not be called for %q", raw)
			return nil
		})
		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %v", raw, err)
		}
	}
}
