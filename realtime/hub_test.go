package realtime

import (
	"encoding/json"
	"io"
	"modesta-resort-api/handler"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

// newServer starts a hub behind an httptest server; user, when set, is
// attached to every upgrade request.
func newServer(t *testing.T, hub *Hub, user *model.User) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			r = r.WithContext(handler.WithUser(r.Context(), user))
		}
		hub.ServeWS(w, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	frame := map[string]interface{}{"event": event}
	if data != nil {
		frame["data"] = data
	}
	require.NoError(t, conn.WriteJSON(frame))
}

func receive(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHub_JoinBooking(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, newServer(t, hub, nil))

	send(t, conn, "join-booking", 42)
	frame := receive(t, conn)

	assert.Equal(t, "joined", frame.Event)
	assert.JSONEq(t, `"booking-42"`, string(frame.Data))
	assert.Equal(t, 1, hub.RoomSize("booking-42"))
}

func TestHub_JoinBooking_InvalidID(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, newServer(t, hub, nil))

	send(t, conn, "join-booking", "../../etc")
	frame := receive(t, conn)

	assert.Equal(t, "error", frame.Event)
}

func TestHub_SendMessage_RelaysToConversationMembers(t *testing.T) {
	hub := NewHub(nil)
	url := newServer(t, hub, nil)
	alice := dial(t, url)
	bob := dial(t, url)
	outsider := dial(t, url)

	send(t, alice, "join-conversation", "7")
	receive(t, alice)
	send(t, bob, "join-conversation", 7)
	receive(t, bob)
	send(t, outsider, "join-conversation", 8)
	receive(t, outsider)

	send(t, alice, "send-message", map[string]interface{}{"conversationId": 7, "text": "hello"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := receive(t, conn)
		assert.Equal(t, "new-message", frame.Event)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(frame.Data, &payload))
		assert.Equal(t, "hello", payload["text"])
	}

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var frame Frame
	assert.Error(t, outsider.ReadJSON(&frame))
}

func TestHub_JoinAdmin(t *testing.T) {
	t.Run("anonymous is rejected", func(t *testing.T) {
		hub := NewHub(nil)
		conn := dial(t, newServer(t, hub, nil))

		send(t, conn, "join-admin", nil)
		frame := receive(t, conn)

		assert.Equal(t, "error", frame.Event)
		assert.Equal(t, 0, hub.RoomSize(AdminRoom))
	})

	t.Run("guest is rejected", func(t *testing.T) {
		hub := NewHub(nil)
		conn := dial(t, newServer(t, hub, &model.User{ID: 1, Role: model.RoleGuest}))

		send(t, conn, "join-admin", nil)
		frame := receive(t, conn)

		assert.Equal(t, "error", frame.Event)
	})

	t.Run("admin joins the dashboard", func(t *testing.T) {
		hub := NewHub(nil)
		conn := dial(t, newServer(t, hub, &model.User{ID: 2, Role: model.RoleAdmin}))

		send(t, conn, "join-admin", nil)
		frame := receive(t, conn)

		assert.Equal(t, "joined", frame.Event)
		assert.Equal(t, 1, hub.RoomSize(AdminRoom))

		hub.Broadcast(AdminRoom, "booking-updated", json.RawMessage(`{"id":3}`))
		frame = receive(t, conn)
		assert.Equal(t, "booking-updated", frame.Event)
	})
}

func TestHub_UnknownEvent(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, newServer(t, hub, nil))

	send(t, conn, "dance", nil)
	frame := receive(t, conn)

	assert.Equal(t, "error", frame.Event)
	assert.JSONEq(t, `"unknown event"`, string(frame.Data))
}

func TestHub_DisconnectLeavesRooms(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, newServer(t, hub, nil))

	send(t, conn, "join-booking", 5)
	receive(t, conn)
	require.Equal(t, 1, hub.RoomSize("booking-5"))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize("booking-5") == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestHub_RejectsDisallowedOrigin(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return false })
	url := newServer(t, hub, nil)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
