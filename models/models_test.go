package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideEquality(t *testing.T) {
	a := Pair("p1", "p2")
	b := Pair("p2", "p1")
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(Single("p1")))
	assert.True(t, (*Side)(nil).Equals(nil))
	assert.True(t, a.Contains("p2"))
	assert.False(t, a.Contains("p3"))
}

func TestSideDisplayName(t *testing.T) {
	roster := Roster{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "t", Kind: KindTeam, Name: "Carol", Partner: "Dan"},
	}
	assert.Equal(t, "Alice & Bob", Pair("a", "b").DisplayName(roster))
	assert.Equal(t, "Carol / Dan", Single("t").DisplayName(roster))
	assert.Equal(t, "TBD", (*Side)(nil).DisplayName(roster))
}

func TestMatchLoser(t *testing.T) {
	m := Match{Team1: Single("a"), Team2: Single("b"), Completed: true, Winner: Single("b")}
	assert.True(t, m.Loser().Equals(Single("a")))

	m.Completed = false
	assert.Nil(t, m.Loser())
}

func TestStateCloneIsDeep(t *testing.T) {
	s := State{
		Participants: Roster{{ID: "a"}, {ID: "b"}},
		Matches:      []Match{{ID: 1, Team1: Single("a"), Team2: Single("b"), Score1: IntPtr(3)}},
		Courts:       CourtAssignments{{Number: 1, Players: []string{"a", "b", "c", "d"}}},
	}
	c := s.Clone()
	c.Participants[0].Wins = 4
	*c.Matches[0].Score1 = 11
	c.Matches[0].Team1.Players[0] = "z"
	c.Courts[0].Players[0] = "z"

	assert.Equal(t, 0, s.Participants[0].Wins)
	assert.Equal(t, 3, *s.Matches[0].Score1)
	assert.Equal(t, "a", s.Matches[0].Team1.Players[0])
	assert.Equal(t, "a", s.Courts[0].Players[0])
}

func TestEnumsRoundTripAsText(t *testing.T) {
	in := struct {
		Format  Format  `json:"format"`
		Phase   Phase   `json:"phase"`
		Bracket Bracket `json:"bracket"`
	}{FormatDoubleElimination, PhaseSessionResults, BracketGrandFinal}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"double-elimination","phase":"session-results","bracket":"grand-final"}`, string(b))

	var f Format
	assert.Error(t, f.UnmarshalText([]byte("swiss")))
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, Settings{PointsToWin: 11}.Validate())
	err := Settings{PointsToWin: 12}.Validate()
	assert.True(t, IsValidation(err))
}
