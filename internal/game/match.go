package game

// DefaultWinThreshold is the number of round wins that ends a match.
const DefaultWinThreshold = 10

// Match tracks cumulative round wins for the two seats of a room and the
// rematch handshake that follows a finished match.
type Match struct {
	threshold int
	scores    [2]int
	over      bool
	winner    Seat
	rematch   [2]bool
}

// NewMatch creates a match that ends when a seat reaches threshold wins.
func NewMatch(threshold int) *Match {
	if threshold <= 0 {
		threshold = DefaultWinThreshold
	}
	return &Match{threshold: threshold}
}

// Threshold returns the number of wins needed to take the match.
func (m *Match) Threshold() int { return m.threshold }

// Scores returns both seats' win counts.
func (m *Match) Scores() [2]int { return m.scores }

// Over reports whether a seat has reached the threshold.
func (m *Match) Over() bool { return m.over }

// Winner returns the seat that took the match.
func (m *Match) Winner() (Seat, bool) {
	return m.winner, m.over
}

// Record credits the round winner and reports whether the match is now over.
// Draws change nothing. Rounds recorded after the match ended are ignored.
func (m *Match) Record(w Winner) bool {
	if m.over {
		return true
	}

	seat, ok := w.Seat()
	if !ok {
		return false
	}

	m.scores[seat]++
	if m.scores[seat] >= m.threshold {
		m.over = true
		m.winner = seat
	}
	return m.over
}

// RequestRematch records seat's request. It returns true once both seats have
// asked, at which point scores are reset and the pending requests cleared.
func (m *Match) RequestRematch(seat Seat) (bool, error) {
	if !m.over {
		return false, ErrMatchNotOver
	}

	m.rematch[seat] = true
	if !m.rematch[SeatFirst] || !m.rematch[SeatSecond] {
		return false, nil
	}

	m.reset()
	return true, nil
}

// RematchRequested reports whether seat has a pending rematch request.
func (m *Match) RematchRequested(seat Seat) bool { return m.rematch[seat] }

func (m *Match) reset() {
	m.scores = [2]int{}
	m.over = false
	m.winner = 0
	m.rematch = [2]bool{}
}
