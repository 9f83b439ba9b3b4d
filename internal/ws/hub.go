package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/labyrinth/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection watching a session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub keeps the websocket clients of every session, grouped in rooms by
// session ID.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// WSMessage is a client request.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Run handles client registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.sessionID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.sessionID] = room
			}
			room[client] = true
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Client joined session %s (room_size=%d)", client.sessionID, size)

		case client := <-h.unregister:
			if h.removeClient(client) {
				log.Printf("[WS] Client left session %s", client.sessionID)
			}
		}
	}
}

// join hands client to the Run loop. It reports false once the hub has
// stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

// leave hands client to the Run loop, or drops it directly once the hub has
// stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
		h.removeClient(client)
	}
}

// removeClient drops a client and closes its send channel exactly once.
func (h *Hub) removeClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.sessionID]
	if !ok || !room[client] {
		return false
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.sessionID)
	}
	close(client.send)
	return true
}

// closeRoom disconnects every client of a session.
func (h *Hub) closeRoom(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[sessionID] {
		close(client.send)
	}
	delete(h.rooms, sessionID)
}

func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every client of a session.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[sessionID]
	if !exists || len(room) == 0 {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	for client := range room {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for session %s, dropping message", sessionID)
		}
	}
}

// sendTo sends a message to one client if it is still registered.
func (h *Hub) sendTo(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.rooms[client.sessionID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[WS] Send buffer full for session %s, dropping message", client.sessionID)
	}
}

// SendFrame streams a session frame to its room.
func (h *Hub) SendFrame(s session.Snapshot) {
	h.BroadcastToSession(s.SessionID, outMessage{Type: "frame", Data: s})
}

// SendEvent forwards a session event to its room. Clients of an expired
// session are disconnected afterwards.
func (h *Hub) SendEvent(e session.Event) {
	h.BroadcastToSession(e.SessionID, outMessage{Type: "session_event", Data: e})
	if e.Type == session.EventExpired {
		h.closeRoom(e.SessionID)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Removed from the hub; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}
