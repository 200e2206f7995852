package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/themobileprof/medcompanion-be/internal/api/middleware"
	"github.com/themobileprof/medcompanion-be/internal/chat"
	"github.com/themobileprof/medcompanion-be/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced by the HTTP middleware
	},
}

// Responder answers one chat message
type Responder interface {
	Respond(ctx context.Context, req chat.Request) chat.Reply
}

// ChatHandler handles WebSocket chat connections
type ChatHandler struct {
	engine            Responder
	log               *logger.Logger
	messagesPerMinute int
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine Responder, log *logger.Logger, messagesPerMinute int) *ChatHandler {
	return &ChatHandler{
		engine:            engine,
		log:               log,
		messagesPerMinute: messagesPerMinute,
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Content string `json:"content"`
}

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type     string        `json:"type"` // "message", "error"
	Content  string        `json:"content,omitempty"`
	Priority chat.Priority `json:"priority,omitempty"`
	Action   string        `json:"action,omitempty"`
}

// HandleChat handles WebSocket chat connections
// GET /ws/chat
func (h *ChatHandler) HandleChat(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	limiter := middleware.NewWebSocketLimiter(h.messagesPerMinute)
	h.log.Info("WebSocket connected", "user_id", userID)

	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("WebSocket error", "error", err, "user_id", userID)
			}
			break
		}

		if !limiter.Allow() {
			if err := h.sendError(conn, "Too many messages. Please slow down."); err != nil {
				break
			}
			continue
		}

		if strings.TrimSpace(msg.Content) == "" {
			if err := h.sendError(conn, "Message cannot be empty"); err != nil {
				break
			}
			continue
		}

		reply := h.engine.Respond(c.Request.Context(), chat.Request{UserID: userID, Message: msg.Content})
		if err := h.sendReply(conn, reply); err != nil {
			h.log.Warn("WebSocket write error", "error", err, "user_id", userID)
			break
		}
	}
}

// sendReply sends a chat reply to the client
func (h *ChatHandler) sendReply(conn *websocket.Conn, reply chat.Reply) error {
	return conn.WriteJSON(OutgoingMessage{
		Type:     "message",
		Content:  reply.Response,
		Priority: reply.Priority,
		Action:   reply.Action,
	})
}

// sendError sends an error message to the client
func (h *ChatHandler) sendError(conn *websocket.Conn, message string) error {
	return conn.WriteJSON(OutgoingMessage{
		Type:    "error",
		Content: message,
	})
}
