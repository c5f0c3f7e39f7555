package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// MessageDispatcher is the interface the handler uses to enqueue inbound
// messages.
type MessageDispatcher interface {
	Enqueue(msg ports.InboundMessage)
}

// MessageHandler ingests the chat platform's webhook deliveries.
type MessageHandler struct {
	dispatcher MessageDispatcher
}

func NewMessageHandler(dispatcher MessageDispatcher) *MessageHandler {
	return &MessageHandler{dispatcher: dispatcher}
}

type inboundMessageRequest struct {
	PlatformID  int64  `json:"platform_id" validate:"required"`
	MessageID   string `json:"message_id" validate:"required"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// Receive handles POST /v1/messages — enqueues one webhook delivery, 202.
//
// @Summary      Ingest an inbound chat message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      inboundMessageRequest  true  "Inbound message"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/messages [post]
func (h *MessageHandler) Receive(c echo.Context) error {
	var req inboundMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(ports.InboundMessage{
		PlatformID:  req.PlatformID,
		MessageID:   req.MessageID,
		DisplayName: req.DisplayName,
		Text:        req.Text,
		ReceivedAt:  time.Now().UTC(),
	})
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "message accepted"})
}
