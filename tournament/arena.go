package tournament

import "github.com/justinjudd/courtplay/models"

type slot struct {
	bracket  models.Bracket
	round    int
	position int
}

// arena indexes the bracket matches of a state by bracket, round and position so advancement
// never has to scan the match list
type arena struct {
	matches   []models.Match
	bySlot    map[slot]int
	byID      map[int]int
	maxRounds map[models.Bracket]int
}

func newArena(matches []models.Match) *arena {
	a := &arena{
		matches:   matches,
		bySlot:    make(map[slot]int, len(matches)),
		byID:      make(map[int]int, len(matches)),
		maxRounds: map[models.Bracket]int{},
	}
	for i, m := range matches {
		a.byID[m.ID] = i
		switch m.Bracket {
		case models.BracketMain, models.BracketWinners, models.BracketLosers, models.BracketGrandFinal, models.BracketReset:
			a.bySlot[slot{m.Bracket, m.Round, m.BracketPosition}] = i
			if m.Round > a.maxRounds[m.Bracket] {
				a.maxRounds[m.Bracket] = m.Round
			}
		}
	}
	return a
}

func (a *arena) at(b models.Bracket, round, position int) *models.Match {
	i, ok := a.bySlot[slot{b, round, position}]
	if !ok {
		return nil
	}
	return &a.matches[i]
}

func (a *arena) byMatchID(id int) *models.Match {
	i, ok := a.byID[id]
	if !ok {
		return nil
	}
	return &a.matches[i]
}

// rounds is the number of rounds in a bracket
func (a *arena) rounds(b models.Bracket) int {
	return a.maxRounds[b]
}

func (a *arena) only(b models.Bracket) *models.Match {
	for i := range a.matches {
		if a.matches[i].Bracket == b {
			return &a.matches[i]
		}
	}
	return nil
}
