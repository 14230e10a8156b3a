package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestError_Status(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NewValidation("bad input"), http.StatusBadRequest},
		{NewAuthentication("who are you"), http.StatusUnauthorized},
		{NewAuthorization("not allowed"), http.StatusForbidden},
		{NewNotFound("missing"), http.StatusNotFound},
		{NewConflict("duplicate"), http.StatusConflict},
	}

	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.status {
			t.Errorf("kind %d: expected status %d, got %d", tc.err.Kind, tc.status, got)
		}
	}
}

func TestError_WrapPreservesCause(t *testing.T) {
	cause := errors.New("pg: connection refused")
	err := NewNotFound("Patient not found").Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "Patient not found" {
		t.Errorf("expected client message, got %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("service: %w", NewConflict("already inactive"))
	if !IsKind(err, KindConflict) {
		t.Error("expected IsKind to see wrapped conflict")
	}
	if IsKind(err, KindNotFound) {
		t.Error("expected IsKind to reject mismatched kind")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("expected IsKind to reject plain errors")
	}
}

func handle(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Handler(zerolog.Nop())(err, c)
	return rec
}

func TestHandler_TypedError(t *testing.T) {
	rec := handle(t, NewNotFound("Patient not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Patient not found" {
		t.Errorf("expected client message, got %q", body["error"])
	}
}

func TestHandler_UnknownErrorIsOpaque500(t *testing.T) {
	rec := handle(t, errors.New("pq: duplicate key value violates unique constraint"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("internal detail leaked to client: %q", body["error"])
	}
}

func TestHandler_EchoHTTPError(t *testing.T) {
	rec := handle(t, echo.NewHTTPError(http.StatusForbidden, "required role: staff"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "required role: staff" {
		t.Errorf("expected echo message, got %q", body["error"])
	}
}
