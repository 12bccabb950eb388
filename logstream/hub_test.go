package logstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsToClients(t *testing.T) {
	hub := newTestHub()
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Emit("⚙️SERVER: Extrahujem spoje...", 102)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var entry Entry
	require.NoError(t, conn.ReadJSON(&entry))
	assert.Equal(t, "⚙️SERVER: Extrahujem spoje...", entry.Message)
	assert.Equal(t, 102, entry.Status)
	assert.NotEmpty(t, entry.Time)
}

func TestHubDropsUnreachableClients(t *testing.T) {
	hub := newTestHub()
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	// The first write may still land in the OS buffer; broadcasting twice
	// gives the hub a chance to observe the write failure.
	hub.Emit("first", 102)
	assert.Eventually(t, func() bool {
		hub.Emit("second", 102)
		return hub.ClientCount() == 0
	}, 2*time.Second, 50*time.Millisecond)
}

// registeredConn returns the server-side connection the hub holds for its
// single client.
func registeredConn(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	hub.mu.Lock()
	defer hub.mu.Unlock()
	require.Len(t, hub.clients, 1)
	for c := range hub.clients {
		return c
	}
	return nil
}

func TestHubSerializesSendWithBroadcast(t *testing.T) {
	hub := newTestHub()
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	server := registeredConn(t, hub)

	// Broadcasts and the per-client echo path race for the same connection;
	// the hub must serialize them so no frame is corrupted.
	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.Emit("⚙️SERVER: Extrahujem spoje...", 102)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			assert.NoError(t, hub.Send(server, "🧑‍💻CLIENT: Received your message: ping", 200))
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	broadcasts, echoes := 0, 0
	for i := 0; i < 2*rounds; i++ {
		var entry Entry
		require.NoError(t, conn.ReadJSON(&entry))
		switch entry.Status {
		case 102:
			broadcasts++
		case 200:
			echoes++
		default:
			t.Fatalf("unexpected status %d", entry.Status)
		}
	}
	wg.Wait()
	assert.Equal(t, rounds, broadcasts)
	assert.Equal(t, rounds, echoes)
}

func TestHubSendRejectsUnregisteredClient(t *testing.T) {
	hub := newTestHub()
	err := hub.Send(&websocket.Conn{}, "hello", 200)
	require.Error(t, err)
}

func TestHubUnregister(t *testing.T) {
	hub := newTestHub()
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.mu.Lock()
	var registered *websocket.Conn
	for c := range hub.clients {
		registered = c
	}
	hub.mu.Unlock()

	hub.Unregister(registered)
	assert.Equal(t, 0, hub.ClientCount())
	_ = conn
}
