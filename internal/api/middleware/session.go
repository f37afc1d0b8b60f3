package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const (
	SessionCookieName = "groompost_session"
	ContextKeyUserID  = "user_id"

	sessionTokenKey = "token"
)

// NewCookieStore returns the signed cookie codec that carries the opaque
// session token. The token itself is resolved server side.
func NewCookieStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Sessions ties the session cookie to a server-side SessionStore.
type Sessions struct {
	cookies sessions.Store
	store   ports.SessionStore
}

func NewSessions(cookies sessions.Store, store ports.SessionStore) *Sessions {
	return &Sessions{cookies: cookies, store: store}
}

// Begin creates a server-side session for userID and writes its token to the
// response cookie. A token already held by the request's cookie is revoked.
func (s *Sessions) Begin(c echo.Context, userID int64) error {
	ctx := c.Request().Context()

	// A cookie that fails to decode is replaced rather than rejected.
	session, _ := s.cookies.Get(c.Request(), SessionCookieName)
	if prior, ok := session.Values[sessionTokenKey].(string); ok && prior != "" {
		if err := s.store.Destroy(ctx, prior); err != nil {
			return err
		}
		delete(session.Values, sessionTokenKey)
	}

	token, err := s.store.Create(ctx, userID)
	if err != nil {
		return err
	}

	session.Values[sessionTokenKey] = token
	if err := session.Save(c.Request(), c.Response()); err != nil {
		_ = s.store.Destroy(ctx, token)
		return err
	}

	c.Set(ContextKeyUserID, userID)
	return nil
}

// End destroys the server-side session, if any, and expires the cookie.
func (s *Sessions) End(c echo.Context) error {
	session, _ := s.cookies.Get(c.Request(), SessionCookieName)
	if token, ok := session.Values[sessionTokenKey].(string); ok && token != "" {
		if err := s.store.Destroy(c.Request().Context(), token); err != nil {
			return err
		}
	}

	delete(session.Values, sessionTokenKey)
	session.Options.MaxAge = -1
	return session.Save(c.Request(), c.Response())
}

// RequireAuth resolves the session cookie and injects the user id into the
// echo context. Requests without a live session fail with 401.
func (s *Sessions) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.cookies.Get(c.Request(), SessionCookieName)
		if err != nil {
			return domain.ErrUnauthenticated
		}

		token, ok := session.Values[sessionTokenKey].(string)
		if !ok || token == "" {
			return domain.ErrUnauthenticated
		}

		userID, found, err := s.store.Resolve(c.Request().Context(), token)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUnauthenticated
		}

		c.Set(ContextKeyUserID, userID)
		return next(c)
	}
}

// UserID returns the authenticated user injected by RequireAuth.
func UserID(c echo.Context) (int64, error) {
	id, ok := c.Get(ContextKeyUserID).(int64)
	if !ok || id == 0 {
		return 0, domain.ErrUnauthenticated
	}
	return id, nil
}
