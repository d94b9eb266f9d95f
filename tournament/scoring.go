package tournament

import "github.com/justinjudd/courtplay/models"

// IsGameComplete reports whether a score line finishes a game. Without win by two the first side to
// reach the target wins. With it a game that reaches deuce goes on until one side leads by exactly two.
func IsGameComplete(score1, score2 int, settings models.Settings) bool {
	if score1 == score2 || score1 < 0 || score2 < 0 {
		return false
	}
	high, low := max(score1, score2), min(score1, score2)
	target := settings.PointsToWin
	if high < target {
		return false
	}
	if !settings.WinByTwo {
		return high == target
	}
	if low < target-1 {
		return high == target
	}
	return high == low+2
}

// ScoreCeiling is the highest score a side can reach given the opposing score
func ScoreCeiling(other int, settings models.Settings) int {
	if settings.WinByTwo && other+2 > settings.PointsToWin {
		return other + 2
	}
	return settings.PointsToWin
}

// CapScore clamps an entered score to the range a valid game allows against the opposing score
func CapScore(value, other int, settings models.Settings) int {
	if value < 0 {
		return 0
	}
	return min(value, ScoreCeiling(other, settings))
}
