package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateWin(t *testing.T) {
	hackerWon := func() Metrics {
		m := NewMetrics()
		m.SystemIntegrity = 0
		return m
	}
	defenderWon := func() Metrics {
		m := NewMetrics()
		m.LockoutProgress = 100
		m.TraceProgress = 100
		return m
	}

	tests := []struct {
		name      string
		metrics   Metrics
		mode      Mode
		humanRole Role
		want      Outcome
	}{
		{
			name:    "pvp hacker wins on zero integrity",
			metrics: hackerWon(),
			mode:    ModePvP,
			want:    Outcome{Ended: true, Text: "Victory: System compromised! Hacker wins!"},
		},
		{
			name: "pvp hacker wins on full exfiltration at full access",
			metrics: func() Metrics {
				m := NewMetrics()
				m.DataExtracted = 120
				m.AccessLevel = 100
				return m
			}(),
			mode: ModePvP,
			want: Outcome{Ended: true, Text: "Victory: System compromised! Hacker wins!"},
		},
		{
			name: "pvp full exfiltration without full access is not a win",
			metrics: func() Metrics {
				m := NewMetrics()
				m.DataExtracted = 120
				m.AccessLevel = 50
				return m
			}(),
			mode: ModePvP,
			want: Outcome{},
		},
		{
			name:    "pvp defender wins on lockout and trace",
			metrics: defenderWon(),
			mode:    ModePvP,
			want:    Outcome{Ended: true, Text: "Victory: Hacker locked out and traced! Defender wins!"},
		},
		{
			name: "pvp lockout alone is not a win",
			metrics: func() Metrics {
				m := NewMetrics()
				m.LockoutProgress = 100
				m.TraceProgress = 80
				return m
			}(),
			mode: ModePvP,
			want: Outcome{},
		},
		{
			name:      "coop human hacker victory",
			metrics:   hackerWon(),
			mode:      ModeCoop,
			humanRole: RoleHacker,
			want:      Outcome{Ended: true, Text: "Victory: System compromised! Hackers win!"},
		},
		{
			name:      "coop human hacker defeat",
			metrics:   defenderWon(),
			mode:      ModeCoop,
			humanRole: RoleHacker,
			want:      Outcome{Ended: true, Text: "Defeat: Bot locked you out and traced you!"},
		},
		{
			name:      "coop human defender defeat",
			metrics:   hackerWon(),
			mode:      ModeCoop,
			humanRole: RoleDefender,
			want:      Outcome{Ended: true, Text: "Defeat: Bot compromised the system!"},
		},
		{
			name:      "coop human defender victory",
			metrics:   defenderWon(),
			mode:      ModeCoop,
			humanRole: RoleDefender,
			want:      Outcome{Ended: true, Text: "Victory: Bot locked out and traced!"},
		},
		{
			name:    "fresh board is not over",
			metrics: NewMetrics(),
			mode:    ModePvP,
			want:    Outcome{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateWin(&tt.metrics, tt.mode, tt.humanRole)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateWinIsPure(t *testing.T) {
	m := NewMetrics()
	m.SystemIntegrity = 0
	before := m
	EvaluateWin(&m, ModePvP, RoleHacker)
	assert.Equal(t, before.SystemIntegrity, m.SystemIntegrity)
	assert.Equal(t, before.AlertLevel, m.AlertLevel)
}
