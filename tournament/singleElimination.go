package tournament

import (
	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

// minEliminationParticipants is the smallest roster an elimination draw is generated for
const minEliminationParticipants = 4

// buildBracket lays out a full elimination bracket for sides, in seed order. Slot i meets slot
// size-1-i in the first round, a missing opponent is a bye that is completed straight away.
// Every later round is created as placeholders, and bye winners are already moved into round 2.
func buildBracket(sides []*models.Side, tag models.Bracket, ids *idSeq) ([]models.Match, error) {
	n := len(sides)
	if n < 2 {
		return nil, models.Invalid("participants", "a bracket needs at least 2 sides, got %d", n)
	}
	size := NextPowerOfTwo(n)
	firstRound := size / 2

	matches := make([]models.Match, 0, size)
	for i := 0; i < firstRound; i++ {
		m := models.Match{
			ID:              ids.take(),
			Round:           1,
			Bracket:         tag,
			BracketPosition: i,
			Team1:           sides[i].Clone(),
		}
		if j := size - 1 - i; j < n {
			m.Team2 = sides[j].Clone()
		} else {
			m.IsBye = true
			m.Completed = true
			m.Winner = sides[i].Clone()
		}
		matches = append(matches, m)
	}

	for r, count := 2, (firstRound+1)/2; firstRound > 1 && count >= 1; r++ {
		for pos := 0; pos < count; pos++ {
			matches = append(matches, models.Match{
				ID:              ids.take(),
				Round:           r,
				Bracket:         tag,
				BracketPosition: pos,
			})
		}
		if count == 1 {
			break
		}
		count = (count + 1) / 2
	}

	a := newArena(matches)
	for i := 0; i < firstRound; i++ {
		m := &matches[i]
		if !m.IsBye {
			continue
		}
		next := a.at(tag, 2, m.BracketPosition/2)
		if next == nil {
			continue
		}
		if err := fillOpenSlot(next, m.Winner); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// SingleElimination builds a knockout draw. Individuals are paired into doubles sides first
func SingleElimination(participants models.Roster, kind models.ParticipantKind, rng RandomSource) (Schedule, error) {
	if len(participants) < minEliminationParticipants {
		return Schedule{}, models.Invalid("participants", "single elimination needs at least %d participants, got %d", minEliminationParticipants, len(participants))
	}

	sides := buildSides(Shuffled(rng, participants), kind)
	byes := ByesNeeded(len(sides))
	if byes > 0 {
		log.Debug().Int("sides", len(sides)).Int("byes", byes).Msg("padding bracket with byes")
	}

	matches, err := buildBracket(sides, models.BracketMain, &idSeq{next: 1})
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Matches: matches, Phase: models.PhaseNone, Warnings: byeWarning(byes)}, nil
}
