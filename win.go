package server

// Outcome is the result of a win-condition evaluation. Ended reports that
// the game is over; Text is the line broadcast to the room.
type Outcome struct {
	Ended bool
	Text  string
}

// EvaluateWin reads the scoreboard and decides whether either side has won.
// It is pure: the caller broadcasts the text and tears the room down.
// humanRole only matters in Co-op, where it picks the Victory/Defeat
// framing for the human seat; the metric conditions are identical.
func EvaluateWin(m *Metrics, mode Mode, humanRole Role) Outcome {
	hackerWin := m.SystemIntegrity == 0 || (m.DataExtracted >= 100 && m.AccessLevel == 100)
	defenderWin := m.LockoutProgress >= 100 && m.TraceProgress >= 100

	if mode == ModeCoop {
		switch {
		case hackerWin && humanRole == RoleHacker:
			return Outcome{Ended: true, Text: "Victory: System compromised! Hackers win!"}
		case hackerWin:
			return Outcome{Ended: true, Text: "Defeat: Bot compromised the system!"}
		case defenderWin && humanRole == RoleHacker:
			return Outcome{Ended: true, Text: "Defeat: Bot locked you out and traced you!"}
		case defenderWin:
			return Outcome{Ended: true, Text: "Victory: Bot locked out and traced!"}
		}
		return Outcome{}
	}

	switch {
	case hackerWin:
		return Outcome{Ended: true, Text: "Victory: System compromised! Hacker wins!"}
	case defenderWin:
		return Outcome{Ended: true, Text: "Victory: Hacker locked out and traced! Defender wins!"}
	}
	return Outcome{}
}
