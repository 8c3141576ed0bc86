package relay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const sessionBuffer = 32

// Envelope is one relayed chat message. IDs travel as hex strings so the
// payload is the same on the wire and on the backplane.
type Envelope struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Property  string    `json:"property,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is one live connection's delivery queue. The reader owns Receive;
// the hub writes into it without ever blocking.
type Session struct {
	UserID string
	send   chan Envelope
}

// Receive exposes the session's inbound envelopes.
func (s *Session) Receive() <-chan Envelope {
	return s.send
}

// Hub is the in-process connection registry. A user may hold several
// concurrent sessions; every one of them receives each envelope addressed to
// that user.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Session]struct{}),
		log:      log,
	}
}

// Register creates and tracks a session for userID.
func (h *Hub) Register(userID string) *Session {
	s := &Session{UserID: userID, send: make(chan Envelope, sessionBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[userID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[userID] = set
	}
	set[s] = struct{}{}
	return s
}

// Unregister removes the session and closes its queue.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.UserID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.UserID)
	}
	close(s.send)
}

// DeliverLocal fans the envelope out to every local session of the recipient.
// Sessions with a full queue are skipped; a lagging reader cannot stall the
// hub.
func (h *Hub) DeliverLocal(env Envelope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.sessions[env.To] {
		select {
		case s.send <- env:
			delivered++
		default:
			h.log.Warn().Str("user_id", env.To).Msg("session queue full, envelope dropped")
		}
	}
	return delivered
}

// Connections reports the number of live sessions.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.sessions {
		n += len(set)
	}
	return n
}
