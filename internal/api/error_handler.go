package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/api/handler"
	"github.com/groompost/groompost-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	failed := false

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, handler.ErrorResponse{Error: validationMessage(err)}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, handler.ErrorResponse{Error: "username already exists"}
	case errors.Is(err, domain.ErrUnsupportedMediaType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrMissingImages):
		return http.StatusBadRequest, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrAlreadyPosted):
		return http.StatusBadRequest, handler.ErrorResponse{Error: "post already published"}
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusBadRequest, handler.ErrorResponse{
			Error:      "Instagram credentials needed",
			NeedsSetup: true,
			Success:    &failed,
		}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid username or password"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "not authenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrGuestDisabled):
		return http.StatusForbidden, handler.ErrorResponse{Error: "guest login is disabled"}
	case errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "post not found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrGenerationFailed):
		// Upstream messages are passed through so the user can act on them.
		logUpstream(log, c, err)
		return http.StatusInternalServerError, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrPublishFailed):
		logUpstream(log, c, err)
		return http.StatusInternalServerError, handler.ErrorResponse{Error: err.Error(), Success: &failed}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}

func logUpstream(log zerolog.Logger, c echo.Context, err error) {
	log.Warn().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("upstream service error")
}

// validationMessage drops the sentinel prefix so only the field messages
// reach the client.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error())
	msg = strings.TrimLeft(msg, ":\n ")
	if msg == "" {
		return domain.ErrValidation.Error()
	}
	return strings.ReplaceAll(msg, "\n", "; ")
}
