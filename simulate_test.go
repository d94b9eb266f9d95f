package courtplay

import (
	"context"
	"strings"
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomScoreAlwaysFinishesAGame(t *testing.T) {
	rng := tournament.NewRandomSource(99)
	for _, s := range []models.Settings{
		{PointsToWin: 11, WinByTwo: true},
		{PointsToWin: 15},
		{PointsToWin: 21, WinByTwo: true},
	} {
		for i := 0; i < 500; i++ {
			a, b := RandomScore(s, rng)
			assert.True(t, tournament.IsGameComplete(a, b, s), "%d-%d to %d", a, b, s.PointsToWin)
		}
	}
}

func simulated(t *testing.T, format models.Format, kind models.ParticipantKind, n int) models.State {
	t.Helper()
	r := make(models.Roster, n)
	for i := range r {
		r[i] = models.Participant{ID: string(rune('a' + i)), Name: strings.ToUpper(string(rune('a' + i)))}
	}
	st, _, err := tournament.NewState(format, kind, r, settings(), tournament.NewRandomSource(5))
	require.NoError(t, err)
	st, err = PlayOut(context.Background(), st, tournament.NewRandomSource(6))
	require.NoError(t, err)
	return st
}

func TestPlayOutEveryFormat(t *testing.T) {
	rr := simulated(t, models.FormatRoundRobin, models.KindIndividual, 8)
	for _, m := range rr.Matches {
		assert.True(t, m.Completed)
	}

	for f, n := range map[models.Format]int{
		models.FormatSingleElimination: 11,
		models.FormatDoubleElimination: 11,
		models.FormatPoolPlay:          8,
	} {
		st := simulated(t, f, models.KindTeam, n)
		assert.True(t, st.Finished(), f.String())
	}

	ladder := simulated(t, models.FormatLadder, models.KindIndividual, 12)
	assert.Equal(t, models.PhaseSessionResults, ladder.Phase)
}

func TestPlayLadder(t *testing.T) {
	r := make(models.Roster, 8)
	for i := range r {
		r[i] = models.Participant{ID: string(rune('a' + i))}
	}
	st, _, err := tournament.NewState(models.FormatLadder, models.KindIndividual, r, settings(), tournament.NewRandomSource(5))
	require.NoError(t, err)

	st, moves, err := PlayLadder(context.Background(), st, 3, tournament.NewRandomSource(8))
	require.NoError(t, err)
	assert.Len(t, moves, 3)
	assert.Equal(t, 3, st.Session)
	assert.Len(t, st.Matches, 36)
}

func TestPlayOutHonoursContext(t *testing.T) {
	r := models.Roster{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	st, _, err := tournament.NewState(models.FormatSingleElimination, models.KindTeam, r, settings(), tournament.NewRandomSource(5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = PlayOut(ctx, st, tournament.NewRandomSource(1))
	assert.ErrorIs(t, err, context.Canceled)
}
