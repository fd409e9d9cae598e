package narrator

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Envelope is the typed frame pushed to the browser, which performs the
// actual speech synthesis.
type Envelope struct {
	Type        string `json:"type"`
	UtteranceID string `json:"utteranceId,omitempty"`
	Text        string `json:"text,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

const (
	envelopeSpeak  = "speak"
	envelopeCancel = "cancel"
)

type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(env)
}

// Hub fans narration out to at most one websocket per user. Users without a
// connection just hear nothing; narration is an optional capability.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*conn
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[string]*conn),
	}
}

// Attach upgrades the request and registers the connection as the user's
// narration channel, replacing any previous one. It blocks until the peer
// disconnects.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, userID string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &conn{ws: ws}
	h.mu.Lock()
	if prev, ok := h.conns[userID]; ok {
		prev.ws.Close()
	}
	h.conns[userID] = c
	h.mu.Unlock()

	// Drain the read side to notice the close; nothing inbound is expected.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if h.conns[userID] == c {
		delete(h.conns, userID)
	}
	h.mu.Unlock()
	return ws.Close()
}

// CloseUser drops the user's narration channel, if any. Used when the
// session behind it signs out.
func (h *Hub) CloseUser(userID string) {
	h.mu.Lock()
	c, ok := h.conns[userID]
	if ok {
		delete(h.conns, userID)
	}
	h.mu.Unlock()

	if ok {
		c.ws.Close()
	}
}

// For returns the narrator bound to one user's connection.
func (h *Hub) For(userID string) Narrator {
	return &userNarrator{hub: h, userID: userID}
}

func (h *Hub) lookup(userID string) (*conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[userID]
	return c, ok
}

type userNarrator struct {
	hub    *Hub
	userID string
}

// Speak pushes a cancel for whatever is playing, then the new utterance, so
// at most one utterance is ever audible.
func (n *userNarrator) Speak(text string) {
	c, ok := n.hub.lookup(n.userID)
	if !ok {
		return
	}

	now := time.Now().UnixMilli()
	if err := c.send(Envelope{Type: envelopeCancel, Timestamp: now}); err != nil {
		log.Printf("[narrator] cancel push failed for user=%s: %v", n.userID, err)
		return
	}
	err := c.send(Envelope{
		Type:        envelopeSpeak,
		UtteranceID: uuid.NewString(),
		Text:        text,
		Timestamp:   now,
	})
	if err != nil {
		log.Printf("[narrator] speak push failed for user=%s: %v", n.userID, err)
	}
}

// Cancel silences the current utterance immediately.
func (n *userNarrator) Cancel() {
	c, ok := n.hub.lookup(n.userID)
	if !ok {
		return
	}
	if err := c.send(Envelope{Type: envelopeCancel, Timestamp: time.Now().UnixMilli()}); err != nil {
		log.Printf("[narrator] cancel push failed for user=%s: %v", n.userID, err)
	}
}
