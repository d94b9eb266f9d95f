package tournament

import (
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolPlaySchedule(t *testing.T) {
	settings := testSettings()
	s, err := PoolPlay(testRoster(8, models.KindTeam), models.KindTeam, settings, NewRandomSource(9))
	require.NoError(t, err)
	assert.Equal(t, models.PhasePools, s.Phase)
	require.Len(t, s.Matches, 12)

	perRound := map[int]int{}
	busy := map[int]map[string]bool{}
	for _, m := range s.Matches {
		assert.Equal(t, models.BracketPool, m.Bracket)
		assert.Contains(t, []int{1, 2}, m.Pool)
		perRound[m.Round]++
		if busy[m.Round] == nil {
			busy[m.Round] = map[string]bool{}
		}
		for _, id := range append(m.Team1.Members(), m.Team2.Members()...) {
			assert.False(t, busy[m.Round][id], "%s plays twice in round %d", id, m.Round)
			busy[m.Round][id] = true
		}
	}
	for r, n := range perRound {
		assert.LessOrEqual(t, n, settings.Courts, "round %d", r)
	}
}

func TestPoolPlayPairsIndividuals(t *testing.T) {
	s, err := PoolPlay(testRoster(8, models.KindIndividual), models.KindIndividual, models.Settings{
		NumPools: 1, PoolSize: 4, AdvanceCount: 2, Courts: 2, PointsToWin: 11,
	}, NewRandomSource(9))
	require.NoError(t, err)
	require.Len(t, s.Matches, 6)
	for _, m := range s.Matches {
		assert.Equal(t, models.SidePair, m.Team1.Kind)
	}
}

func TestPoolPlayValidation(t *testing.T) {
	base := testSettings()

	tooMany := base
	tooMany.PoolSize = 3
	_, err := PoolPlay(testRoster(8, models.KindTeam), models.KindTeam, tooMany, NewRandomSource(1))
	assert.True(t, models.IsValidation(err))

	advance := base
	advance.AdvanceCount = 5
	_, err = PoolPlay(testRoster(8, models.KindTeam), models.KindTeam, advance, NewRandomSource(1))
	assert.True(t, models.IsValidation(err))

	_, err = PoolPlay(testRoster(1, models.KindTeam), models.KindTeam, base, NewRandomSource(1))
	assert.True(t, models.IsValidation(err))
}

func TestPoolPlayWithAPoolOfOne(t *testing.T) {
	settings := models.Settings{NumPools: 2, PoolSize: 2, AdvanceCount: 1, Courts: 1, PointsToWin: 11, WinByTwo: true}
	st := newTestState(t, models.FormatPoolPlay, models.KindTeam, 3, settings)
	require.Len(t, st.Pools, 2)
	assert.Len(t, st.Pools[0], 2)
	assert.Len(t, st.Pools[1], 1)
	require.Len(t, st.Matches, 1)
	assert.Equal(t, 1, st.Matches[0].Pool)

	u, err := CompleteMatch(st, st.Matches[0].ID, 11, 7)
	require.NoError(t, err)
	st = u.State
	require.Equal(t, models.PhaseBracket, st.Phase)

	// the pool winner meets the side that had nobody to play
	final := countWhere(st.Matches, func(m models.Match) bool { return m.Bracket == models.BracketMain })
	require.Equal(t, 1, final)
	bracket := st.Matches[len(st.Matches)-1]
	assert.True(t, bracket.Team1.Equals(st.Matches[0].Winner) || bracket.Team2.Equals(st.Matches[0].Winner))
	lone := st.Pools[1][0]
	assert.True(t, bracket.Team1.Equals(lone) || bracket.Team2.Equals(lone))

	st = playOut(t, st, team1Wins)
	assert.True(t, st.Finished())
}

func TestPoolPlayWithoutPoolGamesStartsInTheBracket(t *testing.T) {
	settings := models.Settings{NumPools: 2, PoolSize: 2, AdvanceCount: 1, Courts: 1, PointsToWin: 11}
	st := newTestState(t, models.FormatPoolPlay, models.KindTeam, 2, settings)
	assert.Equal(t, models.PhaseBracket, st.Phase)
	require.Len(t, st.Matches, 1)
	assert.Equal(t, models.BracketMain, st.Matches[0].Bracket)
	assert.Len(t, Playable(st), 1)
}

func TestCrossSeedKeepsPoolMatesApart(t *testing.T) {
	for pools := 2; pools <= 5; pools++ {
		ranked := make([][]*models.Side, pools)
		poolOf := map[string]int{}
		for p := range ranked {
			for r := 0; r < 2; r++ {
				id := string(rune('A'+p)) + string(rune('1'+r))
				ranked[p] = append(ranked[p], models.Single(id))
				poolOf[id] = p
			}
		}

		seeded := crossSeed(ranked)
		require.Len(t, seeded, 2*pools)
		size := NextPowerOfTwo(len(seeded))
		for i := 0; i < size/2; i++ {
			j := size - 1 - i
			if j >= len(seeded) {
				continue
			}
			assert.NotEqual(t, poolOf[seeded[i].Players[0]], poolOf[seeded[j].Players[0]],
				"%d pools: %s meets %s in round one", pools, seeded[i].Key(), seeded[j].Key())
		}
	}
}

func TestCrossSeedTwoPools(t *testing.T) {
	a1, a2, b1, b2 := models.Single("a1"), models.Single("a2"), models.Single("b1"), models.Single("b2")
	seeded := crossSeed([][]*models.Side{{a1, a2}, {b1, b2}})
	assert.Equal(t, []*models.Side{a1, b1, a2, b2}, seeded)
}

func TestPoolPlayAdvancesToBracketOnce(t *testing.T) {
	st := newTestState(t, models.FormatPoolPlay, models.KindTeam, 8, testSettings())

	var generated int
	for _, m := range Playable(st) {
		u, err := CompleteMatch(st, m.ID, 11, 6)
		require.NoError(t, err)
		for _, e := range u.Events {
			if e.Kind == EventBracketGenerated {
				generated++
			}
		}
		st = u.State
	}
	require.Equal(t, 1, generated)
	assert.Equal(t, models.PhaseBracket, st.Phase)

	pools := poolSides(&st)
	poolOf := map[string]int{}
	for p, sides := range pools {
		for _, s := range sides {
			poolOf[s.Key()] = p
		}
	}
	var firstRound []models.Match
	for _, m := range st.Matches {
		if m.Bracket == models.BracketMain && m.Round == 1 {
			firstRound = append(firstRound, m)
		}
	}
	require.Len(t, firstRound, 2)
	for _, m := range firstRound {
		assert.NotEqual(t, poolOf[m.Team1.Key()], poolOf[m.Team2.Key()])
	}

	// pool results are frozen once the bracket exists
	_, err := CompleteMatch(st, st.Matches[0].ID, 6, 11)
	assert.ErrorIs(t, err, models.ErrMatchLocked)

	_, err = AdvanceToBracket(st)
	assert.ErrorIs(t, err, models.ErrIllegalState)

	st = playOut(t, st, team1Wins)
	assert.True(t, st.Finished())
}

func TestAdvanceToBracketNeedsFinishedPools(t *testing.T) {
	st := newTestState(t, models.FormatPoolPlay, models.KindTeam, 8, testSettings())
	_, err := AdvanceToBracket(st)
	assert.ErrorIs(t, err, models.ErrIllegalState)
}
