package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"portfolio/pkg/services"
)

// liveMessage is the outgoing WebSocket message format
type liveMessage struct {
	Update *services.Update `json:"update,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// liveConn serialises writes; debounced updates arrive from timer goroutines
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) send(msg liveMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("live: websocket write: %v", err)
	}
}

// LiveHandler runs one interactive page per connection. The client sends
// services.Event values and receives the resulting services.Update values.
func (h *Handler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.loader.Load(r.Context())
	if err != nil {
		log.Printf("Error loading document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	log.Printf("live: session %s opened", session)
	defer log.Printf("live: session %s closed", session)

	page := h.newPage(r, doc)
	defer page.Close()

	lc := &liveConn{conn: conn}
	page.OnUpdate(func(u services.Update) {
		if !u.Empty() {
			lc.send(liveMessage{Update: &u})
		}
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("live: session %s read: %v", session, err)
			}
			return
		}

		var e services.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			lc.send(liveMessage{Error: "invalid message format"})
			continue
		}

		u, err := page.Dispatch(e)
		if err != nil {
			lc.send(liveMessage{Error: err.Error()})
			continue
		}
		if !u.Empty() {
			lc.send(liveMessage{Update: &u})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
