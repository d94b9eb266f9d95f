package tournament

import (
	"fmt"
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/stretchr/testify/require"
)

func testRoster(n int, kind models.ParticipantKind) models.Roster {
	r := make(models.Roster, n)
	for i := range r {
		r[i] = models.Participant{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1), Kind: kind}
	}
	return r
}

func testSettings() models.Settings {
	return models.Settings{Rounds: 3, Courts: 2, NumPools: 2, PoolSize: 4, AdvanceCount: 2, PointsToWin: 11, WinByTwo: true}
}

func newTestState(t *testing.T, format models.Format, kind models.ParticipantKind, n int, settings models.Settings) models.State {
	t.Helper()
	st, _, err := NewState(format, kind, testRoster(n, kind), settings, NewRandomSource(7))
	require.NoError(t, err)
	return st
}

// playOut scores playable matches one at a time until none are left. decide returns the score line
// for a match.
func playOut(t *testing.T, st models.State, decide func(m models.Match) (int, int)) models.State {
	t.Helper()
	for i := 0; i < 1000; i++ {
		open := Playable(st)
		if len(open) == 0 {
			return st
		}
		s1, s2 := decide(open[0])
		u, err := CompleteMatch(st, open[0].ID, s1, s2)
		require.NoError(t, err)
		require.True(t, u.Completed, "match %d should complete with %d-%d", open[0].ID, s1, s2)
		st = u.State
	}
	t.Fatal("tournament did not finish")
	return st
}

func team1Wins(models.Match) (int, int) { return 11, 5 }

func countWhere(matches []models.Match, keep func(m models.Match) bool) int {
	n := 0
	for _, m := range matches {
		if keep(m) {
			n++
		}
	}
	return n
}
