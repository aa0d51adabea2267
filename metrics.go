package server

import "fmt"

// NodeStatus marks a network node as held by the defender or the hacker.
type NodeStatus string

const (
	NodeSecure      NodeStatus = "Secure"
	NodeCompromised NodeStatus = "Compromised"
)

// Node identifies one hop of the simulated network.
type Node string

const (
	NodeRouter Node = "Router"
	NodeServer Node = "Server"
	NodeDB     Node = "DB"
)

const initialGameTime = 600 // seconds

// Metrics is the scoreboard of a single room. All gauges live in [0,100]
// except DataExtracted, which only has a floor, and TimeRemaining.
type Metrics struct {
	AccessLevel     int
	DataExtracted   int
	SystemIntegrity int
	Stealth         int
	LockoutProgress int
	TraceProgress   int
	AlertLevel      int
	Network         map[Node]NodeStatus
	TimeRemaining   int
}

func NewMetrics() Metrics {
	return Metrics{
		SystemIntegrity: 100,
		Stealth:         100,
		Network: map[Node]NodeStatus{
			NodeRouter: NodeSecure,
			NodeServer: NodeSecure,
			NodeDB:     NodeSecure,
		},
		TimeRemaining: initialGameTime,
	}
}

func clampGauge(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (m *Metrics) addAlert(delta int)     { m.AlertLevel = clampGauge(m.AlertLevel + delta) }
func (m *Metrics) addStealth(delta int)   { m.Stealth = clampGauge(m.Stealth + delta) }
func (m *Metrics) addIntegrity(delta int) { m.SystemIntegrity = clampGauge(m.SystemIntegrity + delta) }
func (m *Metrics) addLockout(delta int)   { m.LockoutProgress = clampGauge(m.LockoutProgress + delta) }
func (m *Metrics) addTrace(delta int)     { m.TraceProgress = clampGauge(m.TraceProgress + delta) }

func (m *Metrics) addData(delta int) {
	m.DataExtracted += delta
	if m.DataExtracted < 0 {
		m.DataExtracted = 0
	}
}

// StatusSuffix renders the fixed-format scoreboard appended to every
// room broadcast.
func (m *Metrics) StatusSuffix() string {
	return fmt.Sprintf(
		"| Access: %d | Data: %d | Integrity: %d | Stealth: %d | Lockout: %d | Trace: %d | Alert: %d | Router: %s | Server: %s | DB: %s",
		m.AccessLevel, m.DataExtracted, m.SystemIntegrity, m.Stealth,
		m.LockoutProgress, m.TraceProgress, m.AlertLevel,
		m.Network[NodeRouter], m.Network[NodeServer], m.Network[NodeDB],
	)
}

// StatusLine answers the "status" query. Unlike the broadcast suffix it
// omits the network nodes.
func (m *Metrics) StatusLine() string {
	return fmt.Sprintf(
		"Status: | Access: %d | Data: %d | Integrity: %d | Stealth: %d | Lockout: %d | Trace: %d | Alert: %d",
		m.AccessLevel, m.DataExtracted, m.SystemIntegrity, m.Stealth,
		m.LockoutProgress, m.TraceProgress, m.AlertLevel,
	)
}

// NetworkMap answers the "map" query.
func (m *Metrics) NetworkMap() string {
	return fmt.Sprintf(
		"[NETWORK]\n[Router: %s] --> [Server: %s] --> [DB: %s]",
		m.Network[NodeRouter], m.Network[NodeServer], m.Network[NodeDB],
	)
}

// FormatClock renders remaining seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
