package server

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrBadPassword  = errors.New("wrong room password")
	ErrRoomFull     = errors.New("room is full")
	ErrInvalidMode  = errors.New("invalid game mode")
	ErrInvalidRole  = errors.New("invalid role")
)

// Hub is the process-wide room directory. Rooms insert themselves on create
// and retire themselves on teardown; the hub lock only ever guards the map,
// never a room's internals, so directory and room locks never nest.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	logger  zerolog.Logger
	catalog Catalog
}

type HubConfig struct {
	Logger  zerolog.Logger
	Catalog Catalog
}

func NewHub(cfg HubConfig) *Hub {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Hub{
		rooms:   make(map[string]*Room),
		logger:  cfg.Logger,
		catalog: catalog,
	}
}

// CreateRoom registers a new room with the creator seated. In Co-op the bot
// seat is filled immediately; call Begin on the returned room to start it.
func (h *Hub) CreateRoom(mode Mode, role Role, difficulty Difficulty, name, password string, creator Session) (*Room, error) {
	if _, ok := ParseMode(string(mode)); !ok {
		return nil, ErrInvalidMode
	}
	if _, ok := ParseRole(string(role)); !ok {
		return nil, ErrInvalidRole
	}
	if name == "" {
		return nil, ErrRoomNotFound
	}

	h.mu.Lock()
	if _, exists := h.rooms[name]; exists {
		h.mu.Unlock()
		return nil, ErrRoomExists
	}
	room := newRoom(h, name, password, mode, role, difficulty, creator)
	h.rooms[name] = room
	h.mu.Unlock()

	h.logger.Info().Str("room", name).Str("mode", string(mode)).Str("role", string(role)).Msg("room created")
	return room, nil
}

// JoinRoom seats a second player in an existing room. Password and
// existence failures are distinct errors, though the session layer answers
// both with the same reply.
func (h *Hub) JoinRoom(name, password string, sess Session) (*Room, Role, error) {
	h.mu.Lock()
	room, ok := h.rooms[name]
	h.mu.Unlock()

	if !ok {
		return nil, "", ErrRoomNotFound
	}
	if room.password != password {
		return nil, "", ErrBadPassword
	}

	role, err := room.Join(sess)
	if err != nil {
		return nil, "", err
	}
	h.logger.Info().Str("room", name).Str("role", string(role)).Msg("player joined")
	return room, role, nil
}

// Lookup returns the room registered under name, if any.
func (h *Hub) Lookup(name string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[name]
	return room, ok
}

// remove retires a room from the directory. Called by room teardown.
func (h *Hub) remove(name string) {
	h.mu.Lock()
	_, ok := h.rooms[name]
	delete(h.rooms, name)
	h.mu.Unlock()
	if ok {
		h.logger.Info().Str("room", name).Msg("room removed")
	}
}

// DiagnosticsSnapshot lists every live room for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []RoomInfo {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}
	return infos
}
