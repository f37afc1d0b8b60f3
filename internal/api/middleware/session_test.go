package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/infrastructure/session"
)

func newTestSessions() (*Sessions, *session.MemoryStore) {
	store := session.NewMemoryStore(16, time.Hour)
	cookies := NewCookieStore("0123456789abcdef0123456789abcdef", time.Hour, false)
	return NewSessions(cookies, store), store
}

// login runs Begin and returns the cookie the client would send back.
func login(t *testing.T, s *Sessions, userID int64) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/login", nil), rec)

	if err := s.Begin(c, userID); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			if !ck.HttpOnly {
				t.Fatalf("expected HttpOnly session cookie")
			}
			return ck
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestRequireAuth_ValidSession(t *testing.T) {
	s, _ := newTestSessions()
	cookie := login(t, s, 42)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.RequireAuth(func(c echo.Context) error {
		called = true
		id, err := UserID(c)
		if err != nil || id != 42 {
			t.Fatalf("expected user 42, got %d, %v", id, err)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	s, _ := newTestSessions()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/user", nil), httptest.NewRecorder())

	handler := s.RequireAuth(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireAuth_TamperedCookie(t *testing.T) {
	s, _ := newTestSessions()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	c := e.NewContext(req, httptest.NewRecorder())

	handler := s.RequireAuth(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestEnd_RevokesSession(t *testing.T) {
	s, store := newTestSessions()
	cookie := login(t, s, 7)
	if store.Len() != 1 {
		t.Fatalf("expected one stored session, got %d", store.Len())
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := s.End(e.NewContext(req, rec)); err != nil {
		t.Fatalf("end: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session to be destroyed, %d left", store.Len())
	}

	// The old cookie no longer authenticates even if the client keeps it.
	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)
	handler := s.RequireAuth(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
}

func TestBegin_RevokesPriorSession(t *testing.T) {
	s, store := newTestSessions()
	first := login(t, s, 7)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.AddCookie(first)
	rec := httptest.NewRecorder()
	if err := s.Begin(e.NewContext(req, rec), 9); err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the new session to remain, got %d", store.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(first)
	handler := s.RequireAuth(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for the replaced cookie, got %v", err)
	}

	var second *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			second = ck
		}
	}
	if second == nil {
		t.Fatalf("session cookie not set")
	}
	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(second)
	var got int64
	handler = s.RequireAuth(func(c echo.Context) error {
		got, _ = UserID(c)
		return nil
	})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("new cookie rejected: %v", err)
	}
	if got != 9 {
		t.Fatalf("expected user 9, got %d", got)
	}
}

func TestUserID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := UserID(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
