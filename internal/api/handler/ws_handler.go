package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/api/metrics"
	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
	"github.com/estatehub/listing-api/internal/relay"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Socket auth failure codes clients can branch on.
const (
	codeTokenMissing = "TOKEN_MISSING"
	codeInvalidToken = "INVALID_TOKEN"
	codeUserNotFound = "USER_NOT_FOUND"
	codeUserBlocked  = "USER_BLOCKED"
)

// WSHandler upgrades authenticated clients to a live message relay
// connection. Auth runs before the upgrade so refusals are ordinary JSON
// responses with a typed code.
type WSHandler struct {
	secret   string
	users    ports.UserRepository
	messages ports.MessageService
	hub      *relay.Hub
	bridge   relay.Bridge
	log      zerolog.Logger
}

func NewWSHandler(secret string, users ports.UserRepository, messages ports.MessageService, hub *relay.Hub, bridge relay.Bridge, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		secret:   secret,
		users:    users,
		messages: messages,
		hub:      hub,
		bridge:   bridge,
		log:      log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth gates the connection; the HTTP layer owns origin policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsErrorData struct {
	Code string `json:"code"`
}

type wsError struct {
	Message string      `json:"message"`
	Data    wsErrorData `json:"data"`
}

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendFrame struct {
	ToUserID   string `json:"toUserId"`
	PropertyID string `json:"propertyId"`
	Text       string `json:"text"`
}

type receiveFrame struct {
	Event string         `json:"event"`
	Data  relay.Envelope `json:"data"`
}

// Handle upgrades GET /ws.
//
// @Summary      Open a live message relay connection
// @Tags         messages
// @Param        token  query     string  false  "Session token (alternative to the Authorization header)"
// @Success      101    {string}  string  "Switching protocols"
// @Failure      401    {object}  wsError
// @Failure      403    {object}  wsError
// @Router       /ws [get]
func (h *WSHandler) Handle(c echo.Context) error {
	user, status, code := h.authenticate(c)
	if code != "" {
		return c.JSON(status, wsError{Message: "Authentication failed", Data: wsErrorData{Code: code}})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		return nil
	}

	session := h.hub.Register(user.ID.Hex())
	metrics.SocketConnections.Inc()
	h.log.Info().Str("user_id", user.ID.Hex()).Msg("socket connected")

	done := make(chan struct{})
	go h.writePump(conn, session, done)
	h.readPump(c, conn, user)

	close(done)
	h.hub.Unregister(session)
	metrics.SocketConnections.Dec()
	_ = conn.Close()
	h.log.Info().Str("user_id", user.ID.Hex()).Msg("socket disconnected")
	return nil
}

// authenticate resolves the connecting user before the upgrade. Returns a
// non-empty code on refusal.
func (h *WSHandler) authenticate(c echo.Context) (*domain.User, int, string) {
	token := c.QueryParam("token")
	if token == "" {
		header := c.Request().Header.Get("Authorization")
		if len(header) > 7 && header[:7] == "Bearer " {
			token = header[7:]
		}
	}
	if token == "" {
		return nil, http.StatusUnauthorized, codeTokenMissing
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(h.secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, http.StatusUnauthorized, codeInvalidToken
	}

	idHex, _ := claims["id"].(string)
	uid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, http.StatusUnauthorized, codeInvalidToken
	}

	user, err := h.users.FindByID(c.Request().Context(), uid)
	if err != nil {
		return nil, http.StatusUnauthorized, codeUserNotFound
	}
	if user.Blocked() {
		return nil, http.StatusForbidden, codeUserBlocked
	}
	return user, 0, ""
}

// readPump consumes client frames until the connection drops.
func (h *WSHandler) readPump(c echo.Context, conn *websocket.Conn, user *domain.User) {
	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.log.Debug().Err(err).Msg("malformed socket frame")
			continue
		}
		if frame.Event != "sendMessage" {
			continue
		}

		var send sendFrame
		if err := json.Unmarshal(frame.Data, &send); err != nil {
			h.log.Debug().Err(err).Msg("malformed sendMessage payload")
			continue
		}

		view, err := h.messages.SendTo(c.Request().Context(), user.ID, send.ToUserID, send.PropertyID, send.Text)
		if err != nil {
			h.writeError(conn, err)
			continue
		}
		metrics.MessagesSentTotal.WithLabelValues("socket").Inc()

		env := relay.Envelope{
			From:      view.From.ID,
			To:        view.To.ID,
			Property:  view.Property.ID,
			Text:      view.Text,
			CreatedAt: view.CreatedAt,
		}
		if err := h.bridge.Publish(c.Request().Context(), env); err != nil {
			h.log.Warn().Err(err).Msg("relay publish failed, delivering locally")
			h.hub.DeliverLocal(env)
		}
	}
}

// writePump delivers relayed envelopes and keepalive pings to the client.
func (h *WSHandler) writePump(conn *websocket.Conn, session *relay.Session, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case env, ok := <-session.Receive():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(receiveFrame{Event: "receiveMessage", Data: env}); err != nil {
				return
			}
			metrics.MessagesRelayedTotal.Inc()
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(map[string]interface{}{
		"event": "error",
		"data":  map[string]string{"message": err.Error()},
	})
}
