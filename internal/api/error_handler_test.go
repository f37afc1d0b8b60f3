package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/api/handler"
	"github.com/groompost/groompost-api/internal/core/domain"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/x", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: caption cannot be empty", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrUserExists, http.StatusBadRequest},
		{fmt.Errorf("%w: notes.txt", domain.ErrUnsupportedMediaType), http.StatusBadRequest},
		{domain.ErrFileTooLarge, http.StatusBadRequest},
		{domain.ErrMissingImages, http.StatusBadRequest},
		{domain.ErrNotConfigured, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrGuestDisabled, http.StatusForbidden},
		{domain.ErrPostNotFound, http.StatusNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: quota exceeded", domain.ErrGenerationFailed), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		code, body := render(t, tc.err)
		if code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if body["error"] == "" || body["error"] == nil {
			t.Fatalf("%v: missing error message", tc.err)
		}
	}
}

func TestHTTPErrorHandler_ValidationMessage(t *testing.T) {
	err := errors.Join(domain.ErrValidation, errors.New("dogName is required"), errors.New("caption is required"))
	_, body := render(t, err)
	if body["error"] != "dogName is required; caption is required" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestHTTPErrorHandler_NotConfiguredFlag(t *testing.T) {
	_, body := render(t, domain.ErrNotConfigured)
	if body["needsSetup"] != true || body["success"] != false {
		t.Fatalf("expected needsSetup and success=false, got %+v", body)
	}
}

func TestHTTPErrorHandler_PublishFailurePassesMessage(t *testing.T) {
	code, body := render(t, &domain.PublishError{Step: domain.StepPublish, Message: "media not ready"})
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["error"] != "failed to post to instagram: media not ready" || body["success"] != false {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHTTPErrorHandler_MasksUnknownErrors(t *testing.T) {
	code, body := render(t, errors.New("pq: connection reset by peer"))
	if code != http.StatusInternalServerError || body["error"] != "internal server error" {
		t.Fatalf("expected masked 500, got %d %+v", code, body)
	}
	if _, ok := body["needsSetup"]; ok {
		t.Fatalf("needsSetup must be omitted")
	}
}

func TestHTTPErrorHandler_EnvelopeMatchesDocumentedType(t *testing.T) {
	for _, err := range []error{
		domain.ErrNotConfigured,
		&domain.PublishError{Step: domain.StepAttachChildren, Message: "bad children"},
		domain.ErrPostNotFound,
	} {
		e := echo.New()
		rec := httptest.NewRecorder()
		NewHTTPErrorHandler(zerolog.Nop())(err, e.NewContext(httptest.NewRequest(http.MethodPost, "/api/x", nil), rec))

		dec := json.NewDecoder(rec.Body)
		dec.DisallowUnknownFields()
		var body handler.ErrorResponse
		if derr := dec.Decode(&body); derr != nil {
			t.Fatalf("%v: envelope does not match handler.ErrorResponse: %v", err, derr)
		}
		if body.Error == "" {
			t.Fatalf("%v: empty error message", err)
		}
		var pubErr *domain.PublishError
		if errors.As(err, &pubErr) && (body.Success == nil || *body.Success) {
			t.Fatalf("expected success=false on publish failure, got %v", body.Success)
		}
	}
}
