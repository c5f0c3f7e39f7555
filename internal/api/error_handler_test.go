package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

func handleError(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return rec.Code, resp
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"binding not found", domain.ErrBindingNotFound, http.StatusNotFound},
		{"session not found", domain.ErrSessionNotFound, http.StatusNotFound},
		{"unbound account", domain.ErrUnboundAccount, http.StatusConflict},
		{"invalid mnemonic", domain.ErrInvalidMnemonic, http.StatusBadRequest},
		{"no signing key", domain.ErrSigning, http.StatusServiceUnavailable},
		{"bad key material", domain.ErrKeyMaterial, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := handleError(t, tc.err)
			if code != tc.code {
				t.Errorf("status = %d, want %d", code, tc.code)
			}
		})
	}
}

func TestErrorHandler_GatewayError(t *testing.T) {
	code, resp := handleError(t, &domain.GatewayError{
		Path:           domain.PathSDK,
		UpstreamStatus: 503,
		Message:        "upstream maintenance",
	})

	if code != http.StatusBadGateway {
		t.Errorf("status = %d", code)
	}
	if resp.Path != "SDK" {
		t.Errorf("path = %q", resp.Path)
	}
	if resp.UpstreamStatus != 503 {
		t.Errorf("upstream_status = %d", resp.UpstreamStatus)
	}
	if resp.Retryable == nil || !*resp.Retryable {
		t.Error("a 503 must be flagged retryable")
	}
}

func TestErrorHandler_UnexpectedErrorHidesDetails(t *testing.T) {
	_, resp := handleError(t, errors.New("pq: connection refused at 10.0.0.5"))
	if resp.Error != "internal server error" {
		t.Errorf("internal diagnostics leaked: %q", resp.Error)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, resp := handleError(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if code != http.StatusTeapot {
		t.Errorf("status = %d", code)
	}
	if resp.Error != "short and stout" {
		t.Errorf("error = %q", resp.Error)
	}
}
