package tournament

import (
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketTopology(t *testing.T) {
	assert.Equal(t, 8, NextPowerOfTwo(5))
	assert.Equal(t, 8, NextPowerOfTwo(8))
	assert.Equal(t, 3, ByesNeeded(5))
	assert.Equal(t, 0, ByesNeeded(16))
	assert.Equal(t, 3, SingleEliminationRounds(8))
	assert.Equal(t, 3, SingleEliminationRounds(5))
	assert.Equal(t, 4, LosersRounds(3))
	assert.Equal(t, 0, LosersRounds(1))

	// eight first round matches: 4, 4, 2, 2, 1, 1
	for r, want := range []int{4, 4, 2, 2, 1, 1} {
		assert.Equal(t, want, LosersRoundMatches(8, r+1), "losers round %d", r+1)
	}
}

func TestSingleEliminationFiveIndividuals(t *testing.T) {
	s, err := SingleElimination(testRoster(5, models.KindIndividual), models.KindIndividual, NewRandomSource(1))
	require.NoError(t, err)

	// five players make two pairs and one single side
	require.Len(t, s.Warnings, 1)
	assert.Equal(t, WarningByes, s.Warnings[0].Kind)
	assert.Equal(t, 1, s.Warnings[0].Count)

	round1 := countWhere(s.Matches, func(m models.Match) bool { return m.Round == 1 })
	round2 := countWhere(s.Matches, func(m models.Match) bool { return m.Round == 2 })
	assert.Equal(t, 2, round1)
	assert.Equal(t, 1, round2)

	bye := s.Matches[0]
	require.True(t, bye.IsBye)
	assert.True(t, bye.Completed)
	assert.True(t, bye.Winner.Equals(bye.Team1))
	assert.Nil(t, bye.Team2)

	final := s.Matches[2]
	assert.True(t, final.Team1.Equals(bye.Winner), "bye winner waits in the final")
	assert.Nil(t, final.Team2)
}

func TestSingleEliminationNeedsFour(t *testing.T) {
	_, err := SingleElimination(testRoster(3, models.KindTeam), models.KindTeam, NewRandomSource(1))
	assert.True(t, models.IsValidation(err))
}

func TestSingleEliminationPlaysToChampion(t *testing.T) {
	st := newTestState(t, models.FormatSingleElimination, models.KindTeam, 6, testSettings())
	st = playOut(t, st, team1Wins)

	require.True(t, st.Finished())
	final := st.Matches[len(st.Matches)-1]
	assert.True(t, st.Champion.Equals(final.Winner))

	// 6 teams play 5 matches
	wins := 0
	for _, p := range st.Participants {
		wins += p.Wins
	}
	assert.Equal(t, 5, wins)
}

func TestDoubleEliminationShape(t *testing.T) {
	s, err := DoubleElimination(testRoster(8, models.KindTeam), models.KindTeam, NewRandomSource(5))
	require.NoError(t, err)

	winners := countWhere(s.Matches, func(m models.Match) bool { return m.Bracket == models.BracketWinners })
	assert.Equal(t, 7, winners)

	losersRounds := 0
	for _, m := range s.Matches {
		if m.Bracket == models.BracketLosers && m.Round > losersRounds {
			losersRounds = m.Round
		}
	}
	assert.Equal(t, 4, losersRounds)
	assert.Equal(t, 6, countWhere(s.Matches, func(m models.Match) bool { return m.Bracket == models.BracketLosers }))
	assert.Equal(t, 1, countWhere(s.Matches, func(m models.Match) bool { return m.Bracket == models.BracketGrandFinal }))
	assert.Equal(t, 1, countWhere(s.Matches, func(m models.Match) bool { return m.IsReset }))
	assert.Empty(t, s.Warnings)
}

func TestLosersBracketNeverOverfills(t *testing.T) {
	s, err := DoubleElimination(testRoster(8, models.KindTeam), models.KindTeam, NewRandomSource(5))
	require.NoError(t, err)
	d := newDraw(s.Matches)

	for r, want := range []int{2, 2, 1, 1} {
		assert.Equal(t, want, d.roundSize(models.BracketLosers, r+1), "losers round %d", r+1)
	}

	// winners round r losers fall into the even losers round 2(r-1)
	drops := map[*models.Match]int{}
	for i := range s.Matches {
		m := &s.Matches[i]
		if m.Bracket != models.BracketWinners {
			continue
		}
		target := d.dropTarget(m)
		require.NotNil(t, target)
		if m.Round > 1 {
			assert.Equal(t, 2*(m.Round-1), target.Round)
		}
		drops[target]++
	}
	for target, n := range drops {
		// round 1 takes two drops, later rounds one drop plus a survivor
		if target.Round == 1 {
			assert.Equal(t, 2, n)
		} else {
			assert.Equal(t, 1, n)
		}
	}

	st := newTestState(t, models.FormatDoubleElimination, models.KindTeam, 8, testSettings())
	st = playOut(t, st, team1Wins)
	assert.True(t, st.Finished())
}

func TestDoubleEliminationSettlesLosersByes(t *testing.T) {
	s, err := DoubleElimination(testRoster(5, models.KindTeam), models.KindTeam, NewRandomSource(5))
	require.NoError(t, err)

	// three first round byes: the losers match fed by two of them can never be played
	var void *models.Match
	for i := range s.Matches {
		if m := &s.Matches[i]; m.Bracket == models.BracketLosers && models.IsVoid(m) {
			void = m
		}
	}
	require.NotNil(t, void)
	assert.Equal(t, 1, void.Round)
}

func TestDoubleEliminationWithReset(t *testing.T) {
	st := newTestState(t, models.FormatDoubleElimination, models.KindTeam, 4, testSettings())

	var reset bool
	st = playOut(t, st, func(m models.Match) (int, int) {
		if m.Bracket == models.BracketGrandFinal {
			return 5, 11
		}
		return 11, 5
	})
	for _, m := range st.Matches {
		if m.IsReset {
			reset = m.Completed
			assert.True(t, st.Champion.Equals(m.Winner))
		}
	}
	require.True(t, reset, "losers champion won the final so the reset is played")
	require.True(t, st.Finished())

	// everybody but the champion lost twice
	for _, p := range st.Participants {
		if st.Champion.Contains(p.ID) {
			assert.Equal(t, 1, p.Losses)
			continue
		}
		assert.Equal(t, 2, p.Losses, p.ID)
	}
}

func TestDoubleEliminationWithoutReset(t *testing.T) {
	st := newTestState(t, models.FormatDoubleElimination, models.KindTeam, 8, testSettings())
	st = playOut(t, st, team1Wins)

	require.True(t, st.Finished())
	var final, reset models.Match
	for _, m := range st.Matches {
		switch m.Bracket {
		case models.BracketGrandFinal:
			final = m
		case models.BracketReset:
			reset = m
		}
	}
	assert.True(t, st.Champion.Equals(final.Team1))
	assert.False(t, reset.Completed)
	assert.Nil(t, reset.Team1)
	assert.Equal(t, 0, st.Participants.Get(st.Champion.Players[0]).Losses)
}

func TestDoubleEliminationTwoSidesGoStraightToFinal(t *testing.T) {
	st := newTestState(t, models.FormatDoubleElimination, models.KindIndividual, 4, testSettings())
	first := st.Matches[0]
	require.Equal(t, models.BracketWinners, first.Bracket)

	u, err := CompleteMatch(st, first.ID, 11, 3)
	require.NoError(t, err)

	var final models.Match
	for _, m := range u.State.Matches {
		if m.Bracket == models.BracketGrandFinal {
			final = m
		}
	}
	assert.True(t, final.Team1.Equals(first.Team1))
	assert.True(t, final.Team2.Equals(first.Team2))
}
