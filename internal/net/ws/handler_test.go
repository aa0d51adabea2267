package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "breach-and-block/server"
)

func newTestServer(t *testing.T) (*server.Hub, string) {
	t.Helper()
	hub := server.NewHub(server.HubConfig{Logger: zerolog.Nop()})
	handler := NewHandler(hub, HandlerConfig{Logger: zerolog.Nop()})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

// readUntil drains frames until one contains sub, tolerating interleaved
// timer broadcasts from the live room.
func readUntil(t *testing.T, conn *websocket.Conn, sub string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err, "connection closed while waiting for %q", sub)
		if strings.Contains(string(payload), sub) {
			return string(payload)
		}
	}
	t.Fatalf("never received a frame containing %q", sub)
	return ""
}

func TestCreateJoinAndPlay(t *testing.T) {
	_, url := newTestServer(t)

	creator := dial(t, url)
	send(t, creator, "create:PvP:hacker:Medium:duel:hunter2")
	readUntil(t, creator, "Room created: duel | Waiting for second player...")

	joiner := dial(t, url)
	send(t, joiner, "join:duel:hunter2")
	readUntil(t, joiner, "Role assigned: defender")
	readUntil(t, creator, "Game Started | PvP")
	readUntil(t, creator, "Game Started! | PvP: Hacker vs Defender")

	send(t, creator, "scan_network")
	line := readUntil(t, joiner, "Response: Scanning the network")
	assert.Contains(t, line, "Access: 50")
	assert.Contains(t, line, "Router: Compromised")

	send(t, joiner, "raise_firewall")
	line = readUntil(t, creator, "Response: Raising firewall rules")
	assert.Contains(t, line, "Alert: 15")
	assert.Contains(t, line, "Router: Secure")

	send(t, creator, "whoami")
	readUntil(t, creator, "You are the Hacker")
}

func TestHandshakeRejectsUnknownVerb(t *testing.T) {
	_, url := newTestServer(t)

	conn := dial(t, url)
	send(t, conn, "attack:duel")

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid request", string(payload))

	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connection is closed after a failed handshake")
}

func TestHandshakeRejectsMalformedCreate(t *testing.T) {
	_, url := newTestServer(t)

	conn := dial(t, url)
	send(t, conn, "create:PvP:hacker:duel")

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid request", string(payload))
}

func TestCreateDuplicateRoom(t *testing.T) {
	_, url := newTestServer(t)

	first := dial(t, url)
	send(t, first, "create:PvP:hacker:Medium:duel:pw")
	readUntil(t, first, "Room created: duel")

	second := dial(t, url)
	send(t, second, "create:PvP:defender:Medium:duel:pw")
	_, payload, err := second.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Room already exists", string(payload))
}

func TestJoinRejections(t *testing.T) {
	_, url := newTestServer(t)

	creator := dial(t, url)
	send(t, creator, "create:PvP:hacker:Medium:duel:pw")
	readUntil(t, creator, "Room created: duel")

	missing := dial(t, url)
	send(t, missing, "join:ghost:pw")
	_, payload, err := missing.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid room name or password", string(payload))

	badpw := dial(t, url)
	send(t, badpw, "join:duel:wrong")
	_, payload, err = badpw.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid room name or password", string(payload))

	joiner := dial(t, url)
	send(t, joiner, "join:duel:pw")
	readUntil(t, joiner, "Role assigned: defender")

	late := dial(t, url)
	send(t, late, "join:duel:pw")
	_, payload, err = late.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: Room is full", string(payload))
}

func TestDisconnectAbortsForRemainingPlayer(t *testing.T) {
	hub, url := newTestServer(t)

	creator := dial(t, url)
	send(t, creator, "create:PvP:hacker:Medium:duel:pw")
	readUntil(t, creator, "Room created: duel")

	joiner := dial(t, url)
	send(t, joiner, "join:duel:pw")
	readUntil(t, creator, "Game Started!")

	require.NoError(t, joiner.Close())

	readUntil(t, creator, "Player disconnected! Game aborted.")

	require.Eventually(t, func() bool {
		_, ok := hub.Lookup("duel")
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "aborted room leaves the directory")
}

func TestCoopCreateStartsImmediately(t *testing.T) {
	_, url := newTestServer(t)

	conn := dial(t, url)
	send(t, conn, "create:Co-op:hacker:Easy:solo:pw")
	readUntil(t, conn, "Room created: solo")
	readUntil(t, conn, "Game Started! | Co-op: Team vs Bot (Easy)")

	send(t, conn, "chat:hacker:anyone home")
	readUntil(t, conn, "Chat: [Hacker] anyone home")
}

func TestUnknownCommandKeepsConnectionOpen(t *testing.T) {
	_, url := newTestServer(t)

	conn := dial(t, url)
	send(t, conn, "create:Co-op:defender:Medium:solo:pw")
	readUntil(t, conn, "Game Started!")

	send(t, conn, "xyzzy")
	readUntil(t, conn, "Error: Unknown command 'xyzzy'")

	send(t, conn, "status")
	readUntil(t, conn, "Status: | Access:")
}
