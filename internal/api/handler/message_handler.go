package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/estatehub/listing-api/internal/api/metrics"
	"github.com/estatehub/listing-api/internal/core/ports"
	"github.com/estatehub/listing-api/internal/relay"
)

// MessageHandler exposes the inquiry threads over REST. Sends persist through
// the same service the live relay uses and are published to the relay, so a
// recipient with an open socket sees REST-sent messages immediately.
type MessageHandler struct {
	service ports.MessageService
	bridge  relay.Bridge
	log     zerolog.Logger
}

// NewMessageHandler creates a MessageHandler. bridge may be nil when no live
// relay is running.
func NewMessageHandler(service ports.MessageService, bridge relay.Bridge, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{service: service, bridge: bridge, log: log}
}

type sendMessageRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	Message    string `json:"message" validate:"required"`
}

type markReadRequest struct {
	PropertyID  string `json:"propertyId" validate:"required"`
	OtherUserID string `json:"otherUserId" validate:"required"`
}

// Send handles POST /api/messages.
//
// @Summary      Send an inquiry about a listing
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendMessageRequest  true  "Property and message text"
// @Success      201   {object}  ports.MessageView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Send(c.Request().Context(), user.ID, req.PropertyID, req.Message)
	if err != nil {
		return err
	}
	metrics.MessagesSentTotal.WithLabelValues("rest").Inc()

	if h.bridge != nil {
		env := relay.Envelope{
			From:      view.From.ID,
			To:        view.To.ID,
			Property:  view.Property.ID,
			Text:      view.Text,
			CreatedAt: view.CreatedAt,
		}
		if err := h.bridge.Publish(c.Request().Context(), env); err != nil {
			h.log.Warn().Err(err).Msg("relay publish failed")
		}
	}

	return c.JSON(http.StatusCreated, view)
}

// Thread handles GET /api/messages/property/:propertyId.
//
// @Summary      Get the caller's thread for a listing
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        propertyId  path      string  true  "Property id"
// @Success      200         {array}   ports.MessageView
// @Failure      404         {object}  map[string]string
// @Router       /api/messages/property/{propertyId} [get]
func (h *MessageHandler) Thread(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.Thread(c.Request().Context(), user.ID, c.Param("propertyId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// Conversations handles GET /api/messages/conversations.
//
// @Summary      Get the caller's inbox grouped by thread
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Conversations
// @Router       /api/messages/conversations [get]
func (h *MessageHandler) Conversations(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	inbox, err := h.service.Inbox(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inbox)
}

// MarkRead handles PUT /api/messages/read.
//
// @Summary      Mark a thread's incoming messages as read
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markReadRequest  true  "Thread identifiers"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /api/messages/read [put]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.MarkRead(c.Request().Context(), user.ID, req.PropertyID, req.OtherUserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Messages marked as read"})
}
