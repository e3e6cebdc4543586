package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"guruconnect/models"
	"guruconnect/services/chat"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authenticator maps a bearer token to a participant id.
type Authenticator func(token string) (string, error)

// Hub owns every live connection and the chat rooms they joined.
type Hub struct {
	chats    chat.ChatService
	bus      Bus
	auth     Authenticator
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub(chats chat.ChatService, bus Bus, auth Authenticator, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		chats:  chats,
		bus:    bus,
		auth:   auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Run pumps bus traffic into local rooms until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	return h.bus.Run(ctx, h.deliver)
}

// Publish broadcasts a persisted message to its room on every instance.
func (h *Hub) Publish(ctx context.Context, msg models.Message) error {
	return h.bus.Publish(ctx, msg)
}

func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// ServeWS upgrades an authenticated request and serves it until disconnect.
func (h *Hub) ServeWS(c *gin.Context) {
	userID, err := h.auth(bearerToken(c))
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("userId", userID), zap.Error(err))
		return
	}

	client := newClient(h, conn, userID)
	h.logger.Debug("websocket connected", zap.String("userId", userID))
	go client.writePump()
	client.readPump()
}

func (h *Hub) dispatch(c *Client, env models.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch env.Event {
	case models.EventJoinRoom:
		var p models.JoinRoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ChatID == "" {
			c.sendError(env.Event, "chatId is required")
			return
		}
		if _, err := h.chats.Authorize(ctx, p.ChatID, c.UserID); err != nil {
			c.sendError(env.Event, errorText(err))
			return
		}
		h.join(c, p.ChatID)

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ChatID == "" {
			c.sendError(env.Event, "chatId is required")
			return
		}
		if p.SenderID != "" && p.SenderID != c.UserID {
			c.sendError(env.Event, "senderId does not match the connection")
			return
		}
		msg, err := h.chats.PostMessage(ctx, p.ChatID, c.UserID, p.Message, p.ClientID)
		if err != nil {
			c.sendError(env.Event, errorText(err))
			return
		}
		if err := h.bus.Publish(ctx, *msg); err != nil {
			h.logger.Error("chat publish failed", zap.String("chatId", msg.ChatID), zap.Error(err))
			c.sendError(env.Event, "message saved but not delivered")
		}

	default:
		c.sendError(env.Event, "unknown event")
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrNotParticipant):
		return "not a participant of this chat"
	case errors.Is(err, chat.ErrChatNotFound):
		return "chat not found"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "message is empty"
	default:
		return "internal error"
	}
}

func (h *Hub) join(c *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[chatID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, id)
		}
	}
}

// deliver sends a confirmed message to every local member of its room, sender included.
func (h *Hub) deliver(msg models.Message) {
	env, err := models.NewEnvelope(models.EventReceiveMessage, msg)
	if err != nil {
		h.logger.Error("encode chat message", zap.Error(err))
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[msg.ChatID]))
	for c := range h.rooms[msg.ChatID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.enqueue(env)
	}
}

// RoomSize reports how many local connections joined chatID.
func (h *Hub) RoomSize(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
