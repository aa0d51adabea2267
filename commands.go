package server

import "strings"

// Role is a side of the duel. Every room seats exactly one of each.
type Role string

const (
	RoleHacker   Role = "hacker"
	RoleDefender Role = "defender"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleHacker, RoleDefender:
		return Role(raw), true
	default:
		return "", false
	}
}

func (r Role) Opponent() Role {
	if r == RoleHacker {
		return RoleDefender
	}
	return RoleHacker
}

// Title renders the role for player-facing text ("Hacker", "Defender").
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Mode selects between two humans and human-plus-bot.
type Mode string

const (
	ModePvP  Mode = "PvP"
	ModeCoop Mode = "Co-op"
)

func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModePvP, ModeCoop:
		return Mode(raw), true
	default:
		return "", false
	}
}

// Difficulty scales bot cadence and effect magnitude in Co-op rooms.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Modifier returns the bot scaling factor. Unknown difficulties fall back
// to 1, matching the original balance table.
func (d Difficulty) Modifier() float64 {
	switch d {
	case DifficultyEasy:
		return 0.5
	case DifficultyHard:
		return 1.5
	default:
		return 1
	}
}

// applyEffects runs one command through the keyword rule table for role,
// mutating m in place. Commands classify by substring, not exact name, and
// each row pairs its keyword with a precondition: a failed precondition
// falls through to the next row, exactly like the original branch chain.
// Magnitudes scale by scale and truncate toward zero; the fixed setters
// (access 50/100, integrity 0) never scale.
func applyEffects(m *Metrics, role Role, name string, scale float64) {
	scaled := func(base int) int { return int(float64(base) * scale) }

	if role == RoleHacker {
		switch {
		case strings.Contains(name, "scan") && m.AccessLevel < 50:
			m.AccessLevel = 50
			m.addStealth(-scaled(10))
			m.Network[NodeRouter] = NodeCompromised
		case strings.Contains(name, "force") && m.AccessLevel < 100:
			m.AccessLevel = 100
			m.addStealth(-scaled(20))
			m.Network[NodeServer] = NodeCompromised
		case strings.Contains(name, "data") && m.AccessLevel > 0:
			m.addData(scaled(30))
			m.addStealth(-scaled(10))
			m.Network[NodeDB] = NodeCompromised
		case strings.Contains(name, "ransom") && m.AccessLevel == 100:
			m.SystemIntegrity = 0
		case strings.Contains(name, "spoof"), strings.Contains(name, "cloak"):
			m.addStealth(scaled(20))
		}
		return
	}

	switch {
	case strings.Contains(name, "block") && m.AccessLevel > 0:
		m.addLockout(scaled(20))
	case strings.Contains(name, "firewall"):
		m.addLockout(scaled(30))
		m.addAlert(scaled(10))
		m.Network[NodeRouter] = NodeSecure
	case strings.Contains(name, "trace") && m.AlertLevel > 50:
		m.addTrace(scaled(20))
	case strings.Contains(name, "backdoor") && m.SystemIntegrity < 100:
		m.addIntegrity(scaled(30))
		m.Network[NodeServer] = NodeSecure
	case strings.Contains(name, "monitor"):
		m.addAlert(scaled(15))
		m.addStealth(-scaled(10))
	}
}

// ApplyPlayerCommand applies a human command at full magnitude. Hacker
// activity always raises the alert level, whether or not a rule fired.
func ApplyPlayerCommand(m *Metrics, role Role, name string) {
	applyEffects(m, role, name, 1)
	if role == RoleHacker {
		m.addAlert(5)
	}
}

// ApplyBotCommand applies a bot command scaled by the difficulty modifier.
// Bot turns raise the alert level regardless of role.
func ApplyBotCommand(m *Metrics, role Role, name string, mod float64) {
	applyEffects(m, role, name, mod)
	m.addAlert(int(5 * mod))
}
