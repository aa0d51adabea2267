package ws

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	server "breach-and-block/server"
)

type HandlerConfig struct {
	Logger zerolog.Logger
}

// Handler upgrades connections on the game endpoint and runs the
// handshake-then-command-loop session protocol against the hub.
type Handler struct {
	hub      *server.Hub
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	return &Handler{
		hub:    hub,
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle serves one player connection end to end. The first line must be a
// create or join request; every later line is game input forwarded to the
// room. A failed handshake closes the connection with an explanatory
// message and never touches room state.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}
	sess := newSession(conn, h.logger)

	first, err := sess.ReadLine()
	if err != nil {
		sess.Close()
		return
	}

	room, ok := h.handshake(sess, first)
	if !ok {
		sess.Close()
		return
	}

	for {
		line, err := sess.ReadLine()
		if err != nil {
			room.Leave(sess)
			return
		}
		room.ApplyCommand(sess, line)
	}
}

// handshake parses the opening create/join line and seats the session.
func (h *Handler) handshake(sess *Session, line string) (*server.Room, bool) {
	parts := strings.Split(line, ":")
	switch parts[0] {
	case "create":
		if len(parts) != 6 {
			sess.Send("Error: Invalid request")
			return nil, false
		}
		mode := server.Mode(parts[1])
		role := server.Role(parts[2])
		difficulty := server.Difficulty(parts[3])
		name, password := parts[4], parts[5]

		room, err := h.hub.CreateRoom(mode, role, difficulty, name, password, sess)
		if err != nil {
			if errors.Is(err, server.ErrRoomExists) {
				sess.Send("Error: Room already exists")
			} else {
				sess.Send("Error: Invalid request")
			}
			return nil, false
		}
		if room.Mode() == server.ModeCoop {
			sess.Send(fmt.Sprintf("Room created: %s", name))
			room.Begin()
		} else {
			sess.Send(fmt.Sprintf("Room created: %s | Waiting for second player...", name))
		}
		return room, true

	case "join":
		if len(parts) != 3 {
			sess.Send("Error: Invalid request")
			return nil, false
		}
		room, _, err := h.hub.JoinRoom(parts[1], parts[2], sess)
		switch {
		case err == nil:
			return room, true
		case errors.Is(err, server.ErrRoomFull):
			sess.Send("Error: Room is full")
		default:
			sess.Send("Error: Invalid room name or password")
		}
		return nil, false

	default:
		sess.Send("Error: Invalid request")
		return nil, false
	}
}
