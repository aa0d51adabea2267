package server

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session is the transport-facing surface a seated player provides.
// Send is best-effort: a closed connection swallows the write.
type Session interface {
	Send(text string)
	Close()
}

// Lifecycle tracks a room from creation to teardown. Ended is terminal and
// entered exactly once.
type Lifecycle int

const (
	LifecycleWaiting Lifecycle = iota
	LifecycleActive
	LifecycleEnded
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleWaiting:
		return "waiting"
	case LifecycleActive:
		return "active"
	case LifecycleEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// seat is one side of the duel. The bot seat has no session.
type seat struct {
	session Session
	role    Role
	bot     bool
}

// delivery is an outbound line captured under the room lock and sent after
// it is released, so a slow socket never stalls the engine.
type delivery struct {
	to   Session
	text string
}

// Room owns all mutable state of one match: the scoreboard, the roster and
// the three background processes. Every mutation runs under mu, and every
// mutation path evaluates the win conditions before the lock is released.
type Room struct {
	name       string
	password   string
	mode       Mode
	difficulty Difficulty

	hub     *Hub
	logger  zerolog.Logger
	catalog Catalog

	mu        sync.Mutex
	rng       *rand.Rand
	seats     []*seat
	metrics   Metrics
	lifecycle Lifecycle
	cancel    context.CancelFunc
}

// RoomInfo is the diagnostics view of a room.
type RoomInfo struct {
	Name          string     `json:"name"`
	Mode          Mode       `json:"mode"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	Lifecycle     string     `json:"lifecycle"`
	Players       int        `json:"players"`
	TimeRemaining int        `json:"timeRemaining"`
}

func newRoom(hub *Hub, name, password string, mode Mode, creatorRole Role, difficulty Difficulty, creator Session) *Room {
	r := &Room{
		name:       name,
		password:   password,
		mode:       mode,
		difficulty: difficulty,
		hub:        hub,
		logger:     hub.logger.With().Str("room", name).Logger(),
		catalog:    hub.catalog,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		metrics:    NewMetrics(),
		seats:      []*seat{{session: creator, role: creatorRole}},
	}
	if mode == ModeCoop {
		r.seats = append(r.seats, &seat{role: creatorRole.Opponent(), bot: true})
	}
	return r
}

func (r *Room) Name() string { return r.name }
func (r *Room) Mode() Mode   { return r.mode }

// Lifecycle returns the current phase.
func (r *Room) Lifecycle() Lifecycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle
}

// Info snapshots the room for the diagnostics endpoint.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		Name:          r.name,
		Mode:          r.mode,
		Difficulty:    r.difficulty,
		Lifecycle:     r.lifecycle.String(),
		Players:       len(r.seats),
		TimeRemaining: r.metrics.TimeRemaining,
	}
}

// Join seats a second human, assigning the role opposite the creator, and
// starts the game once both seats are filled.
func (r *Room) Join(sess Session) (Role, error) {
	r.mu.Lock()
	if r.lifecycle == LifecycleEnded {
		r.mu.Unlock()
		return "", ErrRoomNotFound
	}
	if len(r.seats) >= 2 {
		r.mu.Unlock()
		return "", ErrRoomFull
	}

	role := r.seats[0].role.Opponent()
	r.seats = append(r.seats, &seat{session: sess, role: role})

	out := []delivery{
		{to: sess, text: "Role assigned: " + string(role)},
		{to: r.seats[0].session, text: "Game Started | " + string(r.mode)},
	}
	out = append(out, r.startLocked()...)
	r.mu.Unlock()

	r.flush(out, nil, false)
	return role, nil
}

// Begin activates a Co-op room, whose bot seat is filled at creation.
func (r *Room) Begin() {
	r.mu.Lock()
	var out []delivery
	if r.lifecycle == LifecycleWaiting && len(r.seats) >= 2 {
		out = r.startLocked()
	}
	r.mu.Unlock()
	r.flush(out, nil, false)
}

// startLocked flips the room to Active and spawns the background processes.
func (r *Room) startLocked() []delivery {
	r.lifecycle = LifecycleActive
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go r.runTimer(ctx)
	go r.runEvents(ctx)

	text := "Game Started! | PvP: Hacker vs Defender"
	if r.mode == ModeCoop {
		text = fmt.Sprintf("Game Started! | Co-op: Team vs Bot (%s)", r.difficulty)
		go r.runBot(ctx)
	}
	r.logger.Info().Str("mode", string(r.mode)).Msg("game started")
	return r.broadcastLocked(text)
}

// ApplyCommand dispatches one line of player input: Co-op chat, a catalog
// command, a read-only query, or an unknown-command error. Catalog commands
// mutate the scoreboard and funnel through the win check before the room
// lock is released.
func (r *Room) ApplyCommand(sess Session, input string) {
	r.mu.Lock()
	if r.lifecycle == LifecycleEnded {
		r.mu.Unlock()
		return
	}
	st := r.seatForLocked(sess)
	if st == nil {
		r.mu.Unlock()
		return
	}
	role := st.role

	var out []delivery
	var closers []Session
	retire := false

	switch {
	case r.mode == ModeCoop && strings.HasPrefix(input, "chat:"):
		parts := strings.SplitN(input, ":", 3)
		if len(parts) == 3 && parts[1] == string(role) {
			out = r.broadcastLocked(fmt.Sprintf("Chat: [%s] %s", role.Title(), parts[2]))
		}
	default:
		if desc, ok := r.catalog.Describe(role, input); ok {
			ApplyPlayerCommand(&r.metrics, role, input)
			out = r.broadcastLocked("Response: " + desc)
			wout, wclosers, wretire := r.checkWinLocked()
			out = append(out, wout...)
			closers = wclosers
			retire = wretire
			break
		}
		switch input {
		case "map":
			out = []delivery{{to: sess, text: r.metrics.NetworkMap()}}
		case "whoami":
			out = []delivery{{to: sess, text: "You are the " + role.Title()}}
		case "status":
			out = []delivery{{to: sess, text: r.metrics.StatusLine()}}
		case "clear":
			out = []delivery{{to: sess, text: "clear"}}
		default:
			out = []delivery{{to: sess, text: fmt.Sprintf("Error: Unknown command '%s'", input)}}
		}
	}
	r.mu.Unlock()

	r.flush(out, closers, retire)
}

// Tick advances the countdown by one second. Reaching zero with integrity
// still standing is an unconditional defender/bot win, independent of the
// regular win table. The return value tells the timer loop whether to keep
// running.
func (r *Room) Tick() bool {
	r.mu.Lock()
	if r.lifecycle != LifecycleActive || r.metrics.TimeRemaining <= 0 {
		r.mu.Unlock()
		return false
	}
	r.metrics.TimeRemaining--
	out := r.broadcastLocked("Time Left: " + FormatClock(r.metrics.TimeRemaining))

	var closers []Session
	retire := false
	cont := r.metrics.TimeRemaining > 0
	if r.metrics.TimeRemaining <= 0 && r.metrics.SystemIntegrity > 0 {
		out = append(out, r.broadcastLocked("Defeat: Time's up! Defender/Bot wins!")...)
		closers = r.endLocked()
		retire = true
	}
	r.mu.Unlock()

	r.flush(out, closers, retire)
	return cont
}

// randomEvents are the scripted outcomes the event process draws from.
// The last entry is narrative-only.
var randomEvents = []struct {
	text  string
	apply func(*Metrics)
}{
	{"Event: Firewall Alert! Alert +20", func(m *Metrics) { m.addAlert(20) }},
	{"Event: Suspicious Activity! Stealth -15", func(m *Metrics) { m.addStealth(-15) }},
	{"Event: Vulnerability Found! Integrity -20", func(m *Metrics) { m.addIntegrity(-20) }},
	{"Chat: [System] Security breach detected!", nil},
}

// TriggerRandomEvent applies one scripted event chosen at random.
func (r *Room) TriggerRandomEvent() bool {
	r.mu.Lock()
	if r.lifecycle != LifecycleActive {
		r.mu.Unlock()
		return false
	}
	ev := randomEvents[r.rng.Intn(len(randomEvents))]
	if ev.apply != nil {
		ev.apply(&r.metrics)
	}
	out := r.broadcastLocked(ev.text)
	wout, closers, retire := r.checkWinLocked()
	out = append(out, wout...)
	r.mu.Unlock()

	r.flush(out, closers, retire)
	return !retire
}

// BotTurn picks one command from the bot role's catalog and applies it at
// difficulty-scaled magnitude.
func (r *Room) BotTurn() bool {
	r.mu.Lock()
	if r.lifecycle != LifecycleActive {
		r.mu.Unlock()
		return false
	}
	var bot *seat
	for _, st := range r.seats {
		if st.bot {
			bot = st
			break
		}
	}
	if bot == nil {
		r.mu.Unlock()
		return false
	}

	names := r.catalog.Names(bot.role)
	name := names[r.rng.Intn(len(names))]
	ApplyBotCommand(&r.metrics, bot.role, name, r.difficulty.Modifier())
	desc, _ := r.catalog.Describe(bot.role, name)

	out := r.broadcastLocked(fmt.Sprintf("Bot %s: %s", bot.role.Title(), desc))
	wout, closers, retire := r.checkWinLocked()
	out = append(out, wout...)
	r.mu.Unlock()

	r.flush(out, closers, retire)
	return !retire
}

// Leave removes a disconnected player. Dropping below two participants
// aborts the game for whoever remains.
func (r *Room) Leave(sess Session) {
	r.mu.Lock()
	if r.lifecycle == LifecycleEnded {
		r.mu.Unlock()
		return
	}
	found := false
	seats := r.seats[:0]
	for _, st := range r.seats {
		if st.session == sess {
			found = true
			continue
		}
		seats = append(seats, st)
	}
	r.seats = seats
	if !found {
		r.mu.Unlock()
		return
	}

	var out []delivery
	var closers []Session
	retire := false
	if len(r.seats) < 2 {
		out = r.broadcastLocked("Player disconnected! Game aborted.")
		closers = r.endLocked()
		retire = true
	}
	r.mu.Unlock()

	r.flush(out, closers, retire)
}

// Broadcast sends a line, with the status suffix, to every connected seat.
func (r *Room) Broadcast(text string) {
	r.mu.Lock()
	out := r.broadcastLocked(text)
	r.mu.Unlock()
	r.flush(out, nil, false)
}

// broadcastLocked captures one outbound line per connected seat, with the
// current scoreboard appended, while the lock is held.
func (r *Room) broadcastLocked(text string) []delivery {
	line := text + r.metrics.StatusSuffix()
	out := make([]delivery, 0, len(r.seats))
	for _, st := range r.seats {
		if st.session == nil {
			continue
		}
		out = append(out, delivery{to: st.session, text: line})
	}
	return out
}

// checkWinLocked evaluates the win table and, on a positive result,
// captures the victory broadcast and performs the terminal transition.
func (r *Room) checkWinLocked() ([]delivery, []Session, bool) {
	outcome := EvaluateWin(&r.metrics, r.mode, r.humanRoleLocked())
	if !outcome.Ended {
		return nil, nil, false
	}
	out := r.broadcastLocked(outcome.Text)
	return out, r.endLocked(), true
}

// endLocked flips the room to Ended, cancels the background processes and
// collects the sessions to close. Safe to call more than once; only the
// first call does anything.
func (r *Room) endLocked() []Session {
	if r.lifecycle == LifecycleEnded {
		return nil
	}
	r.lifecycle = LifecycleEnded
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	closers := make([]Session, 0, len(r.seats))
	for _, st := range r.seats {
		if st.session != nil {
			closers = append(closers, st.session)
		}
	}
	r.logger.Info().Msg("game ended")
	return closers
}

func (r *Room) seatForLocked(sess Session) *seat {
	for _, st := range r.seats {
		if st.session == sess {
			return st
		}
	}
	return nil
}

func (r *Room) humanRoleLocked() Role {
	if len(r.seats) == 0 {
		return RoleHacker
	}
	return r.seats[0].role
}

// flush delivers captured messages, closes finished sessions and retires
// the room from the directory, all outside the room lock.
func (r *Room) flush(out []delivery, closers []Session, retire bool) {
	for _, d := range out {
		if d.to != nil {
			d.to.Send(d.text)
		}
	}
	for _, s := range closers {
		s.Close()
	}
	if retire && r.hub != nil {
		r.hub.remove(r.name)
	}
}
