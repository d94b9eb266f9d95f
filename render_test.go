package courtplay

import (
	"strings"
	"testing"

	"github.com/justinjudd/courtplay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTournamentHTML(t *testing.T) {
	st := simulated(t, models.FormatDoubleElimination, models.KindTeam, 6)
	tm := &models.Tournament{ID: "t1", Name: "Spring <Open>", State: st}

	out, err := GenerateTournamentHTML(tm)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<h1>Spring &lt;Open&gt;</h1>")
	assert.Contains(t, html, "Standings")
	assert.Contains(t, html, "Winners bracket")
	assert.Contains(t, html, "Losers bracket")
	assert.Contains(t, html, "Grand final")
	assert.Contains(t, html, "round-winner")
	assert.Contains(t, html, st.Champion.DisplayName(st.Participants))
}

func TestBracketsSplitLadderCourts(t *testing.T) {
	st := simulated(t, models.FormatLadder, models.KindIndividual, 8)
	sections := Brackets(&st)
	require.Len(t, sections, 2)
	assert.Equal(t, "Session 1, court 2", sections[0].Name)
	assert.Equal(t, "Session 1, court 1", sections[1].Name)
	assert.Len(t, sections[0].Rounds, 6)

	var table Table
	out, err := table.ToHTML()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "<table"))
}
