package tournament

import (
	"sort"
	"strings"

	"github.com/justinjudd/courtplay/models"
)

// repeatPenalty is added to the cost of a fixture that has already been scheduled. Rematches stay
// possible once every fresh fixture is used up
const repeatPenalty = 1000

// NextPowerOfTwo returns the smallest power of two that is >= n
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ByesNeeded is how many empty slots a bracket of sideCount sides has
func ByesNeeded(sideCount int) int {
	return NextPowerOfTwo(sideCount) - sideCount
}

// SingleEliminationRounds is the number of rounds in a bracket of sideCount sides
func SingleEliminationRounds(sideCount int) int {
	rounds := 0
	for size := NextPowerOfTwo(sideCount); size > 1; size >>= 1 {
		rounds++
	}
	return rounds
}

// LosersRounds is the number of losers bracket rounds that go with a winners bracket
func LosersRounds(winnersRounds int) int {
	if winnersRounds < 1 {
		return 0
	}
	return 2 * (winnersRounds - 1)
}

// LosersRoundMatches returns how many matches losers round r has, given the number of first round
// winners bracket matches. Round 1 takes the first round losers, every even round takes drop-ins
// from the winners bracket and keeps the count of the round before, every odd round after that halves.
func LosersRoundMatches(firstRoundMatches, r int) int {
	count := (firstRoundMatches + 1) / 2
	for i := 2; i <= r; i++ {
		if i%2 == 1 {
			count = (count + 1) / 2
		}
	}
	return count
}

type idSeq struct {
	next int
}

func (s *idSeq) take() int {
	id := s.next
	s.next++
	return id
}

// fixture is a candidate pairing that has not been given a round yet
type fixture struct {
	team1, team2 *models.Side
	members      []string
	// key identifies a repeat, split the exact arrangement of sides
	key, split string
}

// newFixture keys a pairing by its two sides
func newFixture(a, b *models.Side) fixture {
	sides := []string{a.Key(), b.Key()}
	sort.Strings(sides)
	k := strings.Join(sides, "|")
	return fixture{team1: a, team2: b, members: append(a.Members(), b.Members()...), key: k, split: k}
}

// newMixerFixture keys a doubles pairing by the four players on court, so the same foursome counts
// as a repeat however it is split. The split still breaks ties between repeats.
func newMixerFixture(a, b *models.Side) fixture {
	f := newFixture(a, b)
	players := append([]string(nil), f.members...)
	sort.Strings(players)
	f.key = strings.Join(players, "+")
	return f
}

func (f fixture) clashes(used map[string]bool) bool {
	for _, m := range f.members {
		if used[m] {
			return true
		}
	}
	return false
}

// scheduleFixtures greedily fills up to courts matches per round for the given number of rounds.
// Each court takes the open fixture with the lowest play count of its members, heavily penalising
// fixtures that were already played. Ties go to whichever comes first in a freshly shuffled order.
func scheduleFixtures(fixtures []fixture, rounds, courts int, rng RandomSource, ids *idSeq) []models.Match {
	playCount := map[string]int{}
	scheduled := map[string]bool{}
	order := make([]int, len(fixtures))
	for i := range order {
		order[i] = i
	}

	var matches []models.Match
	for r := 1; r <= rounds; r++ {
		used := map[string]bool{}
		Shuffle(rng, order)
		for c := 1; c <= courts; c++ {
			best, bestCost := -1, 0
			for _, i := range order {
				f := fixtures[i]
				if f.clashes(used) {
					continue
				}
				cost := 0
				for _, m := range f.members {
					cost += playCount[m]
				}
				if scheduled[f.key] {
					cost += repeatPenalty
				}
				if f.split != f.key && scheduled[f.split] {
					cost += repeatPenalty
				}
				if best < 0 || cost < bestCost {
					best, bestCost = i, cost
				}
			}
			if best < 0 {
				break
			}

			f := fixtures[best]
			for _, m := range f.members {
				used[m] = true
				playCount[m]++
			}
			scheduled[f.key] = true
			scheduled[f.split] = true
			matches = append(matches, models.Match{
				ID:    ids.take(),
				Round: r,
				Court: c,
				Team1: f.team1.Clone(),
				Team2: f.team2.Clone(),
			})
		}
	}
	return matches
}

// buildSides turns a roster into bracket sides. Teams stay single sides, individuals are paired up
// in order with a lone leftover playing on their own
func buildSides(participants models.Roster, kind models.ParticipantKind) []*models.Side {
	var sides []*models.Side
	if kind == models.KindTeam {
		for _, p := range participants {
			sides = append(sides, models.Single(p.ID))
		}
		return sides
	}
	for i := 0; i < len(participants); i += 2 {
		if i+1 < len(participants) {
			sides = append(sides, models.Pair(participants[i].ID, participants[i+1].ID))
		} else {
			sides = append(sides, models.Single(participants[i].ID))
		}
	}
	return sides
}

// fillOpenSlot puts side into team1 if it is free, otherwise team2
func fillOpenSlot(m *models.Match, side *models.Side) error {
	switch {
	case m.Team1 == nil:
		m.Team1 = side.Clone()
	case m.Team2 == nil:
		m.Team2 = side.Clone()
	default:
		return models.IllegalState("match %d already has both sides", m.ID)
	}
	return nil
}

func checkDistinct(participants models.Roster) error {
	seen := map[string]bool{}
	for _, p := range participants {
		if p.ID == "" {
			return models.Invalid("participants", "participant %q has no id", p.Name)
		}
		if seen[p.ID] {
			return models.Invalid("participants", "duplicate participant id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
