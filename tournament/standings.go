package tournament

import (
	"sort"

	"github.com/justinjudd/courtplay/models"
)

// Standing is one row of a standings table
type Standing struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Points        int     `json:"points"`
	PointDiff     int     `json:"pointDiff"`
	WinPercentage float64 `json:"winPercentage"`
	// HeadToHead counts the rivals with the same number of wins that this participant beat head to head
	HeadToHead int `json:"headToHead"`
}

type matchFilter struct {
	restricted bool
	pool       int
	session    int
	court      int
	bracket    *models.Bracket
}

// Option narrows the matches a standings table is computed from. Restricted tables rebuild the
// win/loss/points record from the selected matches instead of the cumulative participant stats.
type Option func(*matchFilter)

// InPool restricts standings to the matches of one pool
func InPool(pool int) Option {
	return func(f *matchFilter) {
		f.restricted = true
		f.pool = pool
	}
}

// OnCourt restricts standings to one ladder court in one session
func OnCourt(session, court int) Option {
	return func(f *matchFilter) {
		f.restricted = true
		f.session = session
		f.court = court
		b := models.BracketLadder
		f.bracket = &b
	}
}

// InBracket restricts standings to one part of the draw
func InBracket(b models.Bracket) Option {
	return func(f *matchFilter) {
		f.restricted = true
		f.bracket = &b
	}
}

func (f *matchFilter) keep(m *models.Match) bool {
	if f.pool != 0 && (m.Bracket != models.BracketPool || m.Pool != f.pool) {
		return false
	}
	if f.bracket != nil && m.Bracket != *f.bracket {
		return false
	}
	if f.session != 0 && m.Session != f.session {
		return false
	}
	if f.court != 0 && m.Court != f.court {
		return false
	}
	return true
}

func decided(m *models.Match) bool {
	return m.Completed && !m.IsBye && m.Winner != nil && m.Score1 != nil && m.Score2 != nil
}

// Calculate ranks participants by wins, then head to head among those level on wins (and the direct
// result when two are still level), then point differential, win percentage and total points. Participants level on everything keep roster order.
func Calculate(participants models.Roster, matches []models.Match, opts ...Option) []Standing {
	var f matchFilter
	for _, o := range opts {
		o(&f)
	}

	var selected []models.Match
	for i := range matches {
		if f.keep(&matches[i]) {
			selected = append(selected, matches[i])
		}
	}

	rows := make([]Standing, 0, len(participants))
	index := map[string]int{}
	for _, p := range participants {
		if f.restricted && !appearsIn(p.ID, selected) {
			continue
		}
		row := Standing{ParticipantID: p.ID, Name: p.DisplayName()}
		if !f.restricted {
			row.Wins, row.Losses, row.Points = p.Wins, p.Losses, p.Points
		}
		index[p.ID] = len(rows)
		rows = append(rows, row)
	}

	for i := range selected {
		m := &selected[i]
		if !decided(m) {
			continue
		}
		for _, side := range []*models.Side{m.Team1, m.Team2} {
			for _, id := range side.Members() {
				ri, ok := index[id]
				if !ok {
					continue
				}
				own, opp, _ := m.ScoreFor(id)
				rows[ri].PointDiff += own - opp
				if f.restricted {
					rows[ri].Points += own
					if m.Winner.Contains(id) {
						rows[ri].Wins++
					} else {
						rows[ri].Losses++
					}
				}
			}
		}
	}

	for i := range rows {
		if played := rows[i].Wins + rows[i].Losses; played > 0 {
			rows[i].WinPercentage = float64(rows[i].Wins) / float64(played)
		}
	}
	headToHead(rows, selected)
	duel := duels(rows, selected)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.HeadToHead != b.HeadToHead {
			return a.HeadToHead > b.HeadToHead
		}
		// only set when a and b are the sole two rows level on wins and head to head
		if rec := duel[a.ParticipantID]; rec != 0 {
			return rec > 0
		}
		if a.PointDiff != b.PointDiff {
			return a.PointDiff > b.PointDiff
		}
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		return a.Points > b.Points
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// headToHead fills in, for every group of rows level on wins, how many group rivals each row beat
// in their direct meetings. A meeting record that is level counts for nobody.
func headToHead(rows []Standing, matches []models.Match) {
	groups := map[int][]int{}
	for i, r := range rows {
		groups[r.Wins] = append(groups[r.Wins], i)
	}
	for _, group := range groups {
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				a, b := &rows[group[x]], &rows[group[y]]
				switch rec := directRecord(a.ParticipantID, b.ParticipantID, matches); {
				case rec > 0:
					a.HeadToHead++
				case rec < 0:
					b.HeadToHead++
				}
			}
		}
	}
}

type tieKey struct {
	wins, headToHead int
}

// duels settles ties between exactly two rows that are still level after the head to head count:
// the one that won their direct meetings goes first. It maps each such row to its direct record
// against the other one. Larger ties are left to point differential.
func duels(rows []Standing, matches []models.Match) map[string]int {
	groups := map[tieKey][]int{}
	for i, r := range rows {
		k := tieKey{r.Wins, r.HeadToHead}
		groups[k] = append(groups[k], i)
	}
	out := map[string]int{}
	for _, group := range groups {
		if len(group) != 2 {
			continue
		}
		a, b := rows[group[0]].ParticipantID, rows[group[1]].ParticipantID
		if rec := directRecord(a, b, matches); rec != 0 {
			out[a], out[b] = rec, -rec
		}
	}
	return out
}

// directRecord is a's wins minus b's wins over the decided matches where they were on opposite sides
func directRecord(a, b string, matches []models.Match) int {
	rec := 0
	for i := range matches {
		m := &matches[i]
		if !decided(m) {
			continue
		}
		opp := m.OpponentOf(a)
		if opp == nil || !opp.Contains(b) {
			continue
		}
		if m.Winner.Contains(a) {
			rec++
		} else {
			rec--
		}
	}
	return rec
}

func appearsIn(id string, matches []models.Match) bool {
	for i := range matches {
		if matches[i].Team1.Contains(id) || matches[i].Team2.Contains(id) {
			return true
		}
	}
	return false
}
