package tournament

import (
	"github.com/justinjudd/courtplay/models"
)

func checkRoundRobinSettings(settings models.Settings) error {
	if settings.Rounds < 1 {
		return models.Invalid("rounds", "at least one round is needed, got %d", settings.Rounds)
	}
	if settings.Courts < 1 {
		return models.Invalid("courts", "at least one court is needed, got %d", settings.Courts)
	}
	return nil
}

// teamFixtures returns every unordered pair of teams once
func teamFixtures(teams models.Roster) []fixture {
	var fixtures []fixture
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			fixtures = append(fixtures, newFixture(models.Single(teams[i].ID), models.Single(teams[j].ID)))
		}
	}
	return fixtures
}

// mixerFixtures returns, for every group of four players, the three ways of splitting them into two pairs
func mixerFixtures(players models.Roster) []fixture {
	var fixtures []fixture
	n := len(players)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					pa, pb, pc, pd := players[a].ID, players[b].ID, players[c].ID, players[d].ID
					fixtures = append(fixtures,
						newMixerFixture(models.Pair(pa, pb), models.Pair(pc, pd)),
						newMixerFixture(models.Pair(pa, pc), models.Pair(pb, pd)),
						newMixerFixture(models.Pair(pa, pd), models.Pair(pb, pc)),
					)
				}
			}
		}
	}
	return fixtures
}

// RoundRobinTeams schedules fixed teams against each other, spreading games evenly and avoiding
// rematches until every pairing has been used
func RoundRobinTeams(teams models.Roster, settings models.Settings, rng RandomSource) (Schedule, error) {
	if len(teams) < 2 {
		return Schedule{}, models.Invalid("participants", "round robin needs at least 2 teams, got %d", len(teams))
	}
	if err := checkRoundRobinSettings(settings); err != nil {
		return Schedule{}, err
	}

	shuffled := Shuffled(rng, teams)
	ids := &idSeq{next: 1}
	matches := scheduleFixtures(teamFixtures(shuffled), settings.Rounds, settings.Courts, rng, ids)
	return Schedule{Matches: matches, Phase: models.PhaseNone}, nil
}

// RoundRobinMixer schedules individuals into rotating doubles pairs
func RoundRobinMixer(players models.Roster, settings models.Settings, rng RandomSource) (Schedule, error) {
	if len(players) < 4 {
		return Schedule{}, models.Invalid("participants", "a doubles mixer needs at least 4 players, got %d", len(players))
	}
	if err := checkRoundRobinSettings(settings); err != nil {
		return Schedule{}, err
	}

	shuffled := Shuffled(rng, players)
	ids := &idSeq{next: 1}
	matches := scheduleFixtures(mixerFixtures(shuffled), settings.Rounds, settings.Courts, rng, ids)
	return Schedule{Matches: matches, Phase: models.PhaseNone}, nil
}
