package ws

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 10 * time.Second

// Session wraps one websocket connection. It satisfies the engine's
// Session interface: Send is best-effort and Close is idempotent, so the
// room can tear a player down without caring about socket state.
type Session struct {
	id     string
	conn   *websocket.Conn
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func newSession(conn *websocket.Conn, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		conn:   conn,
		logger: logger.With().Str("session", id).Logger(),
	}
}

func (s *Session) ID() string { return s.id }

// Send writes one text frame. Writes to a closed session are dropped, and
// a write failure marks the session closed so later sends stop trying.
func (s *Session) Send(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		s.logger.Debug().Err(err).Msg("dropping send to dead session")
		s.closed = true
	}
}

// Close sends a close frame and shuts the connection down. Safe to call
// from the room while the read loop is blocked; the pending read fails and
// the loop exits.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.conn.Close()
}

// ReadLine blocks for the next inbound command. Commands are
// newline-delimited text; a trailing newline from line-mode clients is
// stripped.
func (s *Session) ReadLine() (string, error) {
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(payload), "\r\n"), nil
}
