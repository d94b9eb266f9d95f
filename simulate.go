package courtplay

import (
	"context"

	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
)

// maxSimulatedMatches guards against a state that keeps offering the same match
const maxSimulatedMatches = 100000

// RandomScore returns a finished, legal score line for a game with a random winner. With win by two
// roughly one game in four goes to deuce.
func RandomScore(settings models.Settings, rng tournament.RandomSource) (int, int) {
	target := settings.PointsToWin
	win, lose := target, rng.Intn(target-1)
	if settings.WinByTwo && rng.Intn(4) == 0 {
		lose = target - 1 + rng.Intn(4)
		win = lose + 2
	}
	if rng.Intn(2) == 0 {
		return win, lose
	}
	return lose, win
}

// PlayOut scores every playable match with random results until nothing is left to play: a champion
// is crowned, a ladder session is finished, or a round robin is done
func PlayOut(ctx context.Context, st models.State, rng tournament.RandomSource) (models.State, error) {
	for i := 0; i < maxSimulatedMatches; i++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		open := tournament.Playable(st)
		if len(open) == 0 {
			return st, nil
		}
		s1, s2 := RandomScore(st.Settings, rng)
		u, err := tournament.CompleteMatch(st, open[0].ID, s1, s2)
		if err != nil {
			return st, err
		}
		st = u.State
	}
	return st, models.IllegalState("simulation did not settle after %d matches", maxSimulatedMatches)
}

// PlayLadder plays the given number of ladder sessions, moving players between sessions
func PlayLadder(ctx context.Context, st models.State, sessions int, rng tournament.RandomSource) (models.State, []tournament.Movement, error) {
	var moves []tournament.Movement
	for s := 0; s < sessions; s++ {
		var err error
		if st, err = PlayOut(ctx, st, rng); err != nil {
			return st, moves, err
		}
		if s == sessions-1 {
			moves = append(moves, tournament.LadderMovement(st.Courts, st.Matches, st.Session))
			break
		}
		var mv tournament.Movement
		if st, mv, err = tournament.NextLadderSession(st); err != nil {
			return st, moves, err
		}
		moves = append(moves, mv)
	}
	return st, moves, nil
}
