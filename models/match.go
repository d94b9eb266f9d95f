package models

// Match is a single game between two sides. Placeholders for later bracket rounds are created up front
// with nil sides and filled in as earlier matches complete.
type Match struct {
	ID              int     `json:"id"`
	Round           int     `json:"round"`
	Court           int     `json:"court,omitempty"`
	Bracket         Bracket `json:"bracket"`
	Pool            int     `json:"pool,omitempty"`
	Session         int     `json:"session,omitempty"`
	Team1           *Side   `json:"team1"`
	Team2           *Side   `json:"team2"`
	Score1          *int    `json:"score1"`
	Score2          *int    `json:"score2"`
	Winner          *Side   `json:"winner"`
	Completed       bool    `json:"completed"`
	BracketPosition int     `json:"bracketPosition"`
	IsBye           bool    `json:"isBye,omitempty"`
	IsReset         bool    `json:"isReset,omitempty"`
}

// Loser returns the side that did not win a completed match
func (m *Match) Loser() *Side {
	if !m.Completed || m.Winner == nil {
		return nil
	}
	if m.Winner.Equals(m.Team1) {
		return m.Team2
	}
	return m.Team1
}

// Ready reports whether both sides are known
func (m *Match) Ready() bool {
	return m.Team1 != nil && m.Team2 != nil
}

// OpponentOf returns the opposing side for a participant, nil if the participant is not playing
func (m *Match) OpponentOf(id string) *Side {
	switch {
	case m.Team1.Contains(id):
		return m.Team2
	case m.Team2.Contains(id):
		return m.Team1
	}
	return nil
}

// ScoreFor returns own and opposing points of the given participant in this match
func (m *Match) ScoreFor(id string) (own, opp int, ok bool) {
	if m.Score1 == nil || m.Score2 == nil {
		return 0, 0, false
	}
	switch {
	case m.Team1.Contains(id):
		return *m.Score1, *m.Score2, true
	case m.Team2.Contains(id):
		return *m.Score2, *m.Score1, true
	}
	return 0, 0, false
}

func (m *Match) Clone() Match {
	c := *m
	c.Team1 = m.Team1.Clone()
	c.Team2 = m.Team2.Clone()
	c.Winner = m.Winner.Clone()
	c.Score1 = cloneInt(m.Score1)
	c.Score2 = cloneInt(m.Score2)
	return c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr is a small helper for building scores
func IntPtr(v int) *int {
	return &v
}
