package realtime

import (
	"encoding/json"
	"errors"
	"modesta-resort-api/handler"
	"modesta-resort-api/logger"
	"modesta-resort-api/metrics"
	"modesta-resort-api/model"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 32

	AdminRoom = "admin-dashboard"
)

// Frame is the JSON envelope exchanged in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	user  *model.User
	rooms map[string]struct{}
}

// Hub relays frames between connections that joined the same room. Nothing
// is persisted.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub builds a hub; checkOrigin may be nil to accept any origin.
func NewHub(checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeWS upgrades the request. Run it behind OptionalAuthenticate so admins
// can join the dashboard room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), rooms: make(map[string]struct{})}
	if user, ok := handler.UserFromContext(r.Context()); ok {
		c.user = user
	}

	metrics.WebsocketConnected()
	logger.Log.WithField("remote", conn.RemoteAddr().String()).Info("Client connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.leaveAll(c)
		close(c.send)
		metrics.WebsocketDisconnected()
		logger.Log.WithField("remote", c.conn.RemoteAddr().String()).Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).Debug("WebSocket read error")
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.reply(c, "error", "malformed frame")
				continue
			}
			return
		}
		h.dispatch(c, frame)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) dispatch(c *client, frame Frame) {
	switch frame.Event {
	case "join-booking":
		h.joinByID(c, "booking-", frame.Data)
	case "join-conversation":
		h.joinByID(c, "conversation-", frame.Data)
	case "join-admin":
		if c.user == nil || (c.user.Role != model.RoleAdmin && c.user.Role != model.RoleSuperAdmin) {
			h.reply(c, "error", "admin role required")
			return
		}
		h.join(c, AdminRoom)
		h.reply(c, "joined", AdminRoom)
	case "send-message":
		var msg struct {
			ConversationID json.RawMessage `json:"conversationId"`
		}
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			h.reply(c, "error", "invalid message")
			return
		}
		id, ok := parseRoomID(msg.ConversationID)
		if !ok {
			h.reply(c, "error", "invalid conversationId")
			return
		}
		h.Broadcast("conversation-"+id, "new-message", frame.Data)
	default:
		h.reply(c, "error", "unknown event")
	}
}

func (h *Hub) joinByID(c *client, prefix string, raw json.RawMessage) {
	id, ok := parseRoomID(raw)
	if !ok {
		h.reply(c, "error", "invalid room id")
		return
	}
	h.join(c, prefix+id)
	h.reply(c, "joined", prefix+id)
}

// parseRoomID accepts a JSON number or string.
func parseRoomID(raw json.RawMessage) (string, bool) {
	id := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return id, roomIDPattern.MatchString(id)
}

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveAll(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends event to every member of room. Slow receivers with a full
// buffer miss the frame.
func (h *Hub) Broadcast(room, event string, data json.RawMessage) {
	payload, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			logger.Log.WithFields(logrus.Fields{"room": room, "event": event}).Warn("Dropping frame for slow client")
		}
	}
}

// RoomSize reports how many connections joined room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) reply(c *client, event, message string) {
	data, _ := json.Marshal(message)
	payload, _ := json.Marshal(Frame{Event: event, Data: data})
	select {
	case c.send <- payload:
	default:
	}
}
