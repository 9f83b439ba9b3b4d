package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/labyrinth/internal/auth"
	"github.com/playmatatu/labyrinth/internal/session"
)

type TiltData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PointerData is a pointer or touch movement in pixels.
type PointerData struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Touch bool    `json:"touch"`
}

// Handler upgrades session websocket requests and feeds client input to
// the session.
type Handler struct {
	hub      *Hub
	sessions *session.Manager
	tokens   *auth.Tokens
}

func NewHandler(hub *Hub, sessions *session.Manager, tokens *auth.Tokens) *Handler {
	return &Handler{hub: hub, sessions: sessions, tokens: tokens}
}

// HandleWebSocket serves GET /sessions/:id/ws?pt=<token>.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")
	token := c.Query("pt")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pt required"})
		return
	}
	if err := h.tokens.VerifyFor(token, sessionID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}

	// Queue the current state before the client can receive broadcasts.
	if snap, err := sess.Snapshot(); err == nil {
		if data, err := json.Marshal(outMessage{Type: "frame", Data: snap}); err == nil {
			client.send <- data
		}
	}

	if !h.hub.join(client) {
		log.Printf("[WS] Hub stopped, dropping client for session %s", sessionID)
		conn.Close()
		return
	}
	h.sessions.Touch(c.Request.Context(), sessionID)

	go client.writePump()
	go h.readPump(client)
}

// readPump reads client messages until the connection drops.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			break
		}

		h.sessions.Touch(context.Background(), c.sessionID)

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(c, "Invalid message")
			continue
		}
		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg WSMessage) {
	sess, err := h.sessions.Get(c.sessionID)
	if err != nil {
		h.sendError(c, "Session not found")
		return
	}

	switch msg.Type {
	case "tilt":
		var data TiltData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(c, "Invalid tilt data")
			return
		}
		err = sess.Tilt(data.DX, data.DY)

	case "pointer":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(c, "Invalid pointer data")
			return
		}
		err = sess.Pointer(data.DX, data.DY, data.Touch)

	case "pause":
		err = sess.Pause()

	case "resume":
		err = sess.Resume()

	case "restart":
		err = sess.Restart()

	case "get_state":
		var snap session.Snapshot
		if snap, err = sess.Snapshot(); err == nil {
			h.hub.sendTo(c, outMessage{Type: "frame", Data: snap})
		}

	default:
		h.sendError(c, "Unknown message type")
		return
	}

	if errors.Is(err, session.ErrClosed) {
		h.sendError(c, "Session closed")
	}
}

// sendError sends an error message to the client
func (h *Handler) sendError(c *Client, message string) {
	h.hub.sendTo(c, outMessage{Type: "error", Message: message})
}
