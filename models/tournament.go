package models

import "time"

// Settings are fixed once the schedule for a phase has been generated
type Settings struct {
	Rounds       int  `json:"rounds"`
	Courts       int  `json:"courts"`
	NumPools     int  `json:"numPools"`
	PoolSize     int  `json:"poolSize"`
	AdvanceCount int  `json:"advanceCount"`
	PointsToWin  int  `json:"pointsToWin"`
	WinByTwo     bool `json:"winByTwo"`
}

// Validate checks the settings that every format relies on
func (s Settings) Validate() error {
	switch s.PointsToWin {
	case 11, 15, 21:
	default:
		return Invalid("pointsToWin", "must be 11, 15 or 21, got %d", s.PointsToWin)
	}
	return nil
}

// Court is one ladder court. Number 1 is the bottom court
type Court struct {
	Number  int      `json:"number"`
	Players []string `json:"players"`
}

// CourtAssignments maps ladder courts to the four players on them
type CourtAssignments []Court

// Get returns the court with the given number
func (c CourtAssignments) Get(number int) *Court {
	for i := range c {
		if c[i].Number == number {
			return &c[i]
		}
	}
	return nil
}

// Top returns the highest court number
func (c CourtAssignments) Top() int {
	top := 0
	for _, ct := range c {
		if ct.Number > top {
			top = ct.Number
		}
	}
	return top
}

func (c CourtAssignments) Clone() CourtAssignments {
	if c == nil {
		return nil
	}
	out := make(CourtAssignments, len(c))
	for i, ct := range c {
		out[i] = Court{Number: ct.Number, Players: append([]string(nil), ct.Players...)}
	}
	return out
}

// State is the full engine state of a tournament. Every engine transition takes a State and returns a new one
type State struct {
	Format       Format           `json:"format"`
	Kind         ParticipantKind  `json:"kind"`
	Settings     Settings         `json:"settings"`
	Participants Roster           `json:"participants"`
	Matches      []Match          `json:"matches"`
	Phase        Phase            `json:"phase"`
	Session      int              `json:"session,omitempty"`
	Courts       CourtAssignments `json:"courts,omitempty"`
	// Pools lists the sides dealt into each pool, pool 1 first
	Pools        [][]*Side        `json:"pools,omitempty"`
	Champion     *Side            `json:"champion,omitempty"`
}

// Clone deep copies the state
func (s State) Clone() State {
	c := s
	c.Participants = append(Roster(nil), s.Participants...)
	c.Matches = make([]Match, len(s.Matches))
	for i := range s.Matches {
		c.Matches[i] = s.Matches[i].Clone()
	}
	c.Courts = s.Courts.Clone()
	if s.Pools != nil {
		c.Pools = make([][]*Side, len(s.Pools))
		for i, pool := range s.Pools {
			for _, side := range pool {
				c.Pools[i] = append(c.Pools[i], side.Clone())
			}
		}
	}
	c.Champion = s.Champion.Clone()
	return c
}

// Match looks up a match by id
func (s *State) Match(id int) *Match {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return &s.Matches[i]
		}
	}
	return nil
}

// NextMatchID returns an id that is not in use yet
func (s *State) NextMatchID() int {
	max := 0
	for _, m := range s.Matches {
		if m.ID > max {
			max = m.ID
		}
	}
	return max + 1
}

// Finished reports whether a champion has been decided
func (s *State) Finished() bool {
	return s.Champion != nil
}

// Tournament is the persisted record of a tournament
type Tournament struct {
	ID        string    `json:"id" storm:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
	State     `storm:"inline"`
}
