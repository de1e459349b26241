package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		n := 0
		for _, set := range hub.clients {
			n += len(set)
		}
		return n == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PushReachesOnlyTargetUser(t *testing.T) {
	hub, srv := newHubServer(t)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, hub, 2)

	hub.Push("alice", Event{Type: EventBotLog, Payload: map[string]any{"detail": "hello"}})

	event := readEvent(t, alice)
	assert.Equal(t, EventBotLog, event.Type)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's event")
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub, srv := newHubServer(t)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, hub, 2)

	hub.Broadcast(Event{Type: EventTick, Payload: map[string]any{"symbol": "R_10"}})

	assert.Equal(t, EventTick, readEvent(t, alice).Type)
	assert.Equal(t, EventTick, readEvent(t, bob).Type)
}

func TestHub_PushToUnknownUserIsHarmless(t *testing.T) {
	hub, _ := newHubServer(t)
	hub.Push("nobody", Event{Type: EventBotLog})
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dial(t, srv, "alice")
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Close is idempotent and later pushes are no-ops.
	require.NoError(t, hub.Close())
	hub.Push("alice", Event{Type: EventBotLog})
}

func TestNoOpNotifier(t *testing.T) {
	n := NewNoOpNotifier()
	n.Push("u", Event{Type: EventTick})
	n.Broadcast(Event{Type: EventTick})
	assert.NoError(t, n.Close())
}
