package tournament

import (
	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

// DoubleElimination builds a winners bracket, a losers bracket of 2*(winnersRounds-1) rounds, a grand
// final and an inactive reset match that is only filled if the losers bracket champion wins the final
func DoubleElimination(participants models.Roster, kind models.ParticipantKind, rng RandomSource) (Schedule, error) {
	if len(participants) < minEliminationParticipants {
		return Schedule{}, models.Invalid("participants", "double elimination needs at least %d participants, got %d", minEliminationParticipants, len(participants))
	}

	sides := buildSides(Shuffled(rng, participants), kind)
	byes := ByesNeeded(len(sides))
	ids := &idSeq{next: 1}

	matches, err := buildBracket(sides, models.BracketWinners, ids)
	if err != nil {
		return Schedule{}, err
	}

	winnersRounds := SingleEliminationRounds(len(sides))
	losersRounds := LosersRounds(winnersRounds)
	firstRound := NextPowerOfTwo(len(sides)) / 2
	for r := 1; r <= losersRounds; r++ {
		for pos := 0; pos < LosersRoundMatches(firstRound, r); pos++ {
			matches = append(matches, models.Match{
				ID:              ids.take(),
				Round:           r,
				Bracket:         models.BracketLosers,
				BracketPosition: pos,
			})
		}
	}
	matches = append(matches,
		models.Match{ID: ids.take(), Round: winnersRounds + 1, Bracket: models.BracketGrandFinal},
		models.Match{ID: ids.take(), Round: winnersRounds + 2, Bracket: models.BracketReset, IsReset: true},
	)

	// first round byes never send anyone down, settle the losers matches that only byes feed
	d := newDraw(matches)
	if _, err := d.settleLosersByes(); err != nil {
		return Schedule{}, err
	}

	log.Debug().
		Int("sides", len(sides)).
		Int("byes", byes).
		Int("winnersRounds", winnersRounds).
		Int("losersRounds", losersRounds).
		Msg("double elimination draw built")
	return Schedule{Matches: matches, Phase: models.PhaseNone, Warnings: byeWarning(byes)}, nil
}

// feeder is a match whose winner (or loser) ends up in another match
type feeder struct {
	match *models.Match
	loser bool
}

// draw wraps the arena with the linkage rules of elimination brackets
type draw struct {
	*arena
}

func newDraw(matches []models.Match) *draw {
	return &draw{newArena(matches)}
}

func (d *draw) winnersRounds() int { return d.rounds(models.BracketWinners) }
func (d *draw) losersRounds() int  { return d.rounds(models.BracketLosers) }

// dropTarget is the losers bracket match the loser of a winners bracket match falls into.
// An empty losers bracket sends the loser straight to the grand final.
func (d *draw) dropTarget(m *models.Match) *models.Match {
	if d.losersRounds() == 0 {
		return d.only(models.BracketGrandFinal)
	}
	if m.Round == 1 {
		return d.at(models.BracketLosers, 1, m.BracketPosition/2)
	}
	r := 2 * (m.Round - 1)
	count := d.roundSize(models.BracketLosers, r)
	return d.at(models.BracketLosers, r, count-1-m.BracketPosition)
}

// advanceTarget is the match the winner of m moves on to, nil once m decides the tournament
func (d *draw) advanceTarget(m *models.Match) *models.Match {
	switch m.Bracket {
	case models.BracketMain:
		if m.Round >= d.rounds(models.BracketMain) {
			return nil
		}
		return d.at(models.BracketMain, m.Round+1, m.BracketPosition/2)
	case models.BracketWinners:
		if m.Round >= d.winnersRounds() {
			return d.only(models.BracketGrandFinal)
		}
		return d.at(models.BracketWinners, m.Round+1, m.BracketPosition/2)
	case models.BracketLosers:
		if m.Round >= d.losersRounds() {
			return d.only(models.BracketGrandFinal)
		}
		if m.Round%2 == 1 {
			return d.at(models.BracketLosers, m.Round+1, m.BracketPosition)
		}
		return d.at(models.BracketLosers, m.Round+1, m.BracketPosition/2)
	}
	return nil
}

// feeders lists the matches that send a side into losers bracket match m
func (d *draw) feeders(m *models.Match) []feeder {
	var out []feeder
	add := func(src *models.Match, loser bool) {
		if src != nil {
			out = append(out, feeder{src, loser})
		}
	}
	switch {
	case m.Round == 1:
		add(d.at(models.BracketWinners, 1, 2*m.BracketPosition), true)
		add(d.at(models.BracketWinners, 1, 2*m.BracketPosition+1), true)
	case m.Round%2 == 0:
		add(d.at(models.BracketLosers, m.Round-1, m.BracketPosition), false)
		wr := m.Round/2 + 1
		add(d.at(models.BracketWinners, wr, d.roundSize(models.BracketWinners, wr)-1-m.BracketPosition), true)
	default:
		add(d.at(models.BracketLosers, m.Round-1, 2*m.BracketPosition), false)
		add(d.at(models.BracketLosers, m.Round-1, 2*m.BracketPosition+1), false)
	}
	return out
}

func (d *draw) roundSize(b models.Bracket, round int) int {
	n := 0
	for d.at(b, round, n) != nil {
		n++
	}
	return n
}

// settleLosersByes completes every losers bracket match that cannot get a second side any more
// because all of its feeders are decided. A single side walks over, an empty match is void.
// It returns the matches it settled, in order.
func (d *draw) settleLosersByes() ([]*models.Match, error) {
	var settled []*models.Match
	for r := 1; r <= d.losersRounds(); r++ {
		for pos := 0; ; pos++ {
			m := d.at(models.BracketLosers, r, pos)
			if m == nil {
				break
			}
			if m.Completed || m.Ready() {
				continue
			}
			done := true
			for _, f := range d.feeders(m) {
				if !f.match.Completed {
					done = false
					break
				}
			}
			if !done {
				continue
			}

			m.IsBye = true
			m.Completed = true
			switch {
			case m.Team1 != nil:
				m.Winner = m.Team1.Clone()
			case m.Team2 != nil:
				m.Team1, m.Team2 = m.Team2, nil
				m.Winner = m.Team1.Clone()
			}
			settled = append(settled, m)
			if m.Winner == nil {
				continue
			}
			if next := d.advanceTarget(m); next != nil {
				if err := d.place(next, m.Winner, true); err != nil {
					return settled, err
				}
			}
		}
	}
	return settled, nil
}

// place puts side into target. In the grand final the winners bracket champion is team1 and the
// losers bracket champion team2, everywhere else the first open slot is used
func (d *draw) place(target *models.Match, side *models.Side, losersSide bool) error {
	if target.Bracket != models.BracketGrandFinal {
		return fillOpenSlot(target, side)
	}
	slot := &target.Team1
	if losersSide {
		slot = &target.Team2
	}
	if *slot != nil {
		return models.IllegalState("grand final slot is already taken by %s", (*slot).Key())
	}
	*slot = side.Clone()
	return nil
}
