package tournament

import (
	"sort"

	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

// LadderCourtSize is the number of players sharing a ladder court
const LadderCourtSize = 4

// ladderPairings are the three ways four players split into two doubles pairs, by seat
var ladderPairings = [][4]int{
	{0, 1, 2, 3},
	{0, 2, 1, 3},
	{0, 3, 1, 2},
}

// gamesPerPairing is how often every pairing is played in a session
const gamesPerPairing = 2

// LadderSession seats players four to a court in the given order, the first four on the top court,
// and schedules six games per court so each player partners each of the others twice
func LadderSession(players models.Roster, session int) (Schedule, error) {
	return ladderSession(players.IDs(), session, &idSeq{next: 1})
}

func ladderSession(order []string, session int, ids *idSeq) (Schedule, error) {
	n := len(order)
	if n == 0 || n%LadderCourtSize != 0 {
		return Schedule{}, models.Invalid("participants", "a ladder needs a positive multiple of %d players, got %d", LadderCourtSize, n)
	}
	if session < 1 {
		return Schedule{}, models.Invalid("session", "sessions start at 1, got %d", session)
	}

	numCourts := n / LadderCourtSize
	courts := make(models.CourtAssignments, 0, numCourts)
	var matches []models.Match
	for c := numCourts; c >= 1; c-- {
		start := (numCourts - c) * LadderCourtSize
		seats := append([]string(nil), order[start:start+LadderCourtSize]...)
		courts = append(courts, models.Court{Number: c, Players: seats})

		game := 1
		for rep := 0; rep < gamesPerPairing; rep++ {
			for _, p := range ladderPairings {
				matches = append(matches, models.Match{
					ID:      ids.take(),
					Round:   game,
					Court:   c,
					Bracket: models.BracketLadder,
					Session: session,
					Team1:   models.Pair(seats[p[0]], seats[p[1]]),
					Team2:   models.Pair(seats[p[2]], seats[p[3]]),
				})
				game++
			}
		}
	}

	log.Debug().Int("session", session).Int("courts", numCourts).Int("matches", len(matches)).Msg("ladder session built")
	return Schedule{Matches: matches, Phase: models.PhasePlaying, Courts: courts}, nil
}

// PlayerScore is a player's point total on their court for a session
type PlayerScore struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
}

// CourtResult ranks the players of one court and names who changes court
type CourtResult struct {
	Court     int           `json:"court"`
	Ranking   []PlayerScore `json:"ranking"`
	MovesUp   string        `json:"movesUp,omitempty"`
	MovesDown string        `json:"movesDown,omitempty"`
}

// Movement is the outcome of a ladder session. Courts are listed from the top court down and
// NextOrder is the player order the next session is seated from.
type Movement struct {
	Session   int           `json:"session"`
	Courts    []CourtResult `json:"courts"`
	NextOrder []string      `json:"nextOrder"`
}

// BasicPlayerScoreLess sorts by points, highest first
func BasicPlayerScoreLess(scores []PlayerScore) func(i, j int) bool {
	return func(i, j int) bool {
		return scores[i].Points > scores[j].Points
	}
}

// LadderMovement totals each player's points on their court for the session. The winner of every
// court but the top one swaps with the last placed player of the court above. Level totals keep
// seat order.
func LadderMovement(courts models.CourtAssignments, matches []models.Match, session int) Movement {
	top := courts.Top()
	results := map[int]*CourtResult{}
	for c := top; c >= 1; c-- {
		ct := courts.Get(c)
		if ct == nil {
			continue
		}
		scores := make([]PlayerScore, len(ct.Players))
		for i, id := range ct.Players {
			scores[i].ID = id
			for k := range matches {
				m := &matches[k]
				if m.Bracket != models.BracketLadder || m.Session != session || m.Court != c || !m.Completed {
					continue
				}
				if own, _, ok := m.ScoreFor(id); ok {
					scores[i].Points += own
				}
			}
		}
		sort.SliceStable(scores, BasicPlayerScoreLess(scores))

		res := &CourtResult{Court: c, Ranking: scores}
		if len(scores) > 0 {
			if c < top {
				res.MovesUp = scores[0].ID
			}
			if c > 1 {
				res.MovesDown = scores[len(scores)-1].ID
			}
		}
		results[c] = res
	}

	seats := map[int][]string{}
	for c := range results {
		seats[c] = append([]string(nil), courts.Get(c).Players...)
	}
	for c := 1; c < top; c++ {
		lower, upper := results[c], results[c+1]
		if lower == nil || upper == nil || lower.MovesUp == "" || upper.MovesDown == "" {
			continue
		}
		swapSeat(seats[c], lower.MovesUp, upper.MovesDown)
		swapSeat(seats[c+1], upper.MovesDown, lower.MovesUp)
	}

	mv := Movement{Session: session}
	for c := top; c >= 1; c-- {
		if res, ok := results[c]; ok {
			mv.Courts = append(mv.Courts, *res)
			mv.NextOrder = append(mv.NextOrder, seats[c]...)
		}
	}
	return mv
}

func swapSeat(seats []string, out, in string) {
	for i := range seats {
		if seats[i] == out {
			seats[i] = in
			return
		}
	}
}

// NextLadderSession applies the movement of the finished session and schedules the next one
func NextLadderSession(st models.State) (models.State, Movement, error) {
	if st.Format != models.FormatLadder {
		return st, Movement{}, models.IllegalState("%v tournaments have no sessions", st.Format)
	}
	if st.Phase != models.PhaseSessionResults {
		return st, Movement{}, models.IllegalState("session %d is not finished", st.Session)
	}

	mv := LadderMovement(st.Courts, st.Matches, st.Session)
	next := st.Clone()
	s, err := ladderSession(mv.NextOrder, st.Session+1, &idSeq{next: st.NextMatchID()})
	if err != nil {
		return st, Movement{}, err
	}
	next.Matches = append(next.Matches, s.Matches...)
	next.Courts = s.Courts
	next.Session = st.Session + 1
	next.Phase = s.Phase
	return next, mv, nil
}
