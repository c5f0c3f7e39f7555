package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// SessionHandler serves session views and preference updates.
type SessionHandler struct {
	service ports.SessionService
	window  time.Duration
}

func NewSessionHandler(service ports.SessionService, window time.Duration) *SessionHandler {
	return &SessionHandler{service: service, window: window}
}

type sessionResponse struct {
	PlatformID      int64             `json:"platform_id"`
	AccountID       string            `json:"account_id,omitempty"`
	IsAuthenticated bool              `json:"is_authenticated"`
	LastActivity    string            `json:"last_activity"`
	Expired         bool              `json:"expired"`
	Preferences     map[string]string `json:"preferences,omitempty"`
}

// Get handles GET /v1/sessions/:platform_id.
//
// @Summary      Get the session for a platform identity
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        platform_id  path      integer  true  "Chat platform user ID"
// @Success      200          {object}  sessionResponse
// @Failure      404          {object}  map[string]string
// @Router       /v1/sessions/{platform_id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	platformID, err := parsePlatformID(c)
	if err != nil {
		return err
	}

	session, err := h.service.Get(c.Request().Context(), platformID)
	if err != nil {
		return err
	}
	expired, err := h.service.IsExpired(c.Request().Context(), platformID, h.window)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		PlatformID:      session.PlatformID,
		AccountID:       session.AccountID,
		IsAuthenticated: session.IsAuthenticated,
		LastActivity:    session.LastActivity.UTC().Format(time.RFC3339Nano),
		Expired:         expired,
		Preferences:     session.Preferences,
	})
}

type setPreferenceRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// SetPreference handles PUT /v1/sessions/:platform_id/preferences.
//
// @Summary      Set one session preference
// @Tags         sessions
// @Accept       json
// @Security     BearerAuth
// @Param        platform_id  path  integer               true  "Chat platform user ID"
// @Param        body         body  setPreferenceRequest  true  "Preference entry"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/sessions/{platform_id}/preferences [put]
func (h *SessionHandler) SetPreference(c echo.Context) error {
	platformID, err := parsePlatformID(c)
	if err != nil {
		return err
	}

	var req setPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.SetPreference(c.Request().Context(), platformID, req.Key, req.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Authenticate handles POST /v1/sessions/:platform_id/authenticate.
//
// @Summary      Mark a session authenticated
// @Tags         sessions
// @Security     BearerAuth
// @Param        platform_id  path  integer  true  "Chat platform user ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/sessions/{platform_id}/authenticate [post]
func (h *SessionHandler) Authenticate(c echo.Context) error {
	platformID, err := parsePlatformID(c)
	if err != nil {
		return err
	}
	if err := h.service.Authenticate(c.Request().Context(), platformID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parsePlatformID(c echo.Context) (int64, error) {
	platformID, err := strconv.ParseInt(c.Param("platform_id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "platform_id must be an integer")
	}
	return platformID, nil
}
