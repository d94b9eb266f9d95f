package tournament

import (
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderSessionLayout(t *testing.T) {
	s, err := LadderSession(testRoster(8, models.KindIndividual), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePlaying, s.Phase)
	require.Len(t, s.Courts, 2)
	require.Len(t, s.Matches, 12)

	top := s.Courts.Get(2)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, top.Players)
	assert.Equal(t, []string{"p5", "p6", "p7", "p8"}, s.Courts.Get(1).Players)

	// on every court each player partners each of the other three exactly twice
	partners := map[string]int{}
	for _, m := range s.Matches {
		assert.Equal(t, 1, m.Session)
		assert.Equal(t, models.BracketLadder, m.Bracket)
		for _, side := range []*models.Side{m.Team1, m.Team2} {
			partners[side.Key()]++
		}
	}
	for key, n := range partners {
		assert.Equal(t, 2, n, key)
	}
	assert.Len(t, partners, 12)
}

func TestLadderNeedsMultipleOfFour(t *testing.T) {
	for _, n := range []int{0, 6, 10} {
		_, err := LadderSession(testRoster(n, models.KindIndividual), 1)
		assert.True(t, models.IsValidation(err), "%d players", n)
	}
}

func ladderScores(loser, winner string) func(m models.Match) (int, int) {
	return func(m models.Match) (int, int) {
		switch {
		case m.Team1.Contains(loser) || m.Team2.Contains(winner):
			return 5, 11
		default:
			return 11, 5
		}
	}
}

func TestLadderMovementSwapsAdjacentCourts(t *testing.T) {
	st := newTestState(t, models.FormatLadder, models.KindIndividual, 8, testSettings())
	// p1 loses every game on the top court, p8 wins every game on the bottom court
	st = playOut(t, st, ladderScores("p1", "p8"))
	require.Equal(t, models.PhaseSessionResults, st.Phase)

	mv := LadderMovement(st.Courts, st.Matches, 1)
	require.Len(t, mv.Courts, 2)
	assert.Equal(t, 2, mv.Courts[0].Court)
	assert.Equal(t, "p1", mv.Courts[0].MovesDown)
	assert.Empty(t, mv.Courts[0].MovesUp)
	assert.Equal(t, "p8", mv.Courts[1].MovesUp)
	assert.Empty(t, mv.Courts[1].MovesDown)
	assert.Equal(t, 66, mv.Courts[1].Ranking[0].Points)
	assert.Equal(t, []string{"p8", "p2", "p3", "p4", "p5", "p6", "p7", "p1"}, mv.NextOrder)

	next, applied, err := NextLadderSession(st)
	require.NoError(t, err)
	assert.Equal(t, mv, applied)
	assert.Equal(t, 2, next.Session)
	assert.Equal(t, models.PhasePlaying, next.Phase)
	assert.Equal(t, []string{"p8", "p2", "p3", "p4"}, next.Courts.Get(2).Players)
	assert.Len(t, next.Matches, 24)
	assert.Equal(t, 13, next.Matches[12].ID)

	// the finished session can no longer be edited
	_, err = CompleteMatch(next, st.Matches[0].ID, 5, 11)
	assert.ErrorIs(t, err, models.ErrMatchLocked)
}

func TestLadderMiddlePlayersStay(t *testing.T) {
	st := newTestState(t, models.FormatLadder, models.KindIndividual, 12, testSettings())
	st = playOut(t, st, team1Wins)

	mv := LadderMovement(st.Courts, st.Matches, 1)
	require.Len(t, mv.NextOrder, 12)
	moved := map[string]bool{}
	for _, c := range mv.Courts {
		moved[c.MovesUp] = true
		moved[c.MovesDown] = true
	}
	before := st.Courts
	for c := 1; c <= 3; c++ {
		for _, id := range before.Get(c).Players {
			if moved[id] {
				continue
			}
			start := (3 - c) * 4
			assert.Contains(t, mv.NextOrder[start:start+4], id, "%s left court %d", id, c)
		}
	}
}

func TestLadderSessionReopens(t *testing.T) {
	st := newTestState(t, models.FormatLadder, models.KindIndividual, 4, testSettings())
	st = playOut(t, st, team1Wins)
	require.Equal(t, models.PhaseSessionResults, st.Phase)

	u, err := HandleScoreChange(st, st.Matches[0].ID, FieldScore1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePlaying, u.State.Phase)
	assertHasEvent(t, u.Events, EventSessionReopened)

	_, _, err = NextLadderSession(u.State)
	assert.ErrorIs(t, err, models.ErrIllegalState)
}
