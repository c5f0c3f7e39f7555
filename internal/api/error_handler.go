package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error          string `json:"error"`
	Path           string `json:"path,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	Retryable      *bool  `json:"retryable,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Surfaces gateway failures with path identity and upstream status so
//     callers can decide retryability.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Gateway failures keep their upstream identity intact.
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		retryable := ge.Retryable()
		return http.StatusBadGateway, errorResponse{
			Error:          "payment network call failed",
			Path:           string(ge.Path),
			UpstreamStatus: ge.UpstreamStatus,
			Retryable:      &retryable,
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrBindingNotFound):
		return http.StatusNotFound, errorResponse{Error: "binding not found"}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorResponse{Error: "session not found"}
	case errors.Is(err, domain.ErrUnboundAccount):
		return http.StatusConflict, errorResponse{Error: "account has no provisioned wallet"}
	case errors.Is(err, domain.ErrInvalidMnemonic):
		return http.StatusBadRequest, errorResponse{Error: "invalid mnemonic phrase"}
	case errors.Is(err, domain.ErrKeyMaterial), errors.Is(err, domain.ErrSigning):
		// Configuration-class failure: only credentialed operations are
		// blocked, and the raw key diagnostics stay server-side.
		return http.StatusServiceUnavailable, errorResponse{Error: "signing credentials unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
