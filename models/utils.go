package models

// IsByeSide determines if a side is a bye. A missing side or a side with no players both count
func IsByeSide(s *Side) bool {
	if s == nil {
		return true
	}
	if len(s.Players) == 0 {
		return true
	}
	return false
}

// IsVoid determines if a match is a bye that never had anyone in it
func IsVoid(m *Match) bool {
	return m.IsBye && m.Completed && m.Winner == nil
}

// IsPlayable reports whether a match can take a score: both sides assigned and not a bye
func IsPlayable(m *Match) bool {
	if m == nil || m.IsBye {
		return false
	}
	return !IsByeSide(m.Team1) && !IsByeSide(m.Team2)
}
