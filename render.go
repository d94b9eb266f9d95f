package courtplay

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"sort"

	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
)

// GenerateTournamentHTML renders the standings and every part of the draw of a tournament
func GenerateTournamentHTML(t *models.Tournament) ([]byte, error) {
	var out []byte
	out = append(out, []byte("<h1>"+template.HTMLEscapeString(t.Name)+"</h1>")...)

	table := Table{Name: "Standings", Rows: tournament.Calculate(t.Participants, t.Matches)}
	h, err := table.ToHTML()
	if err != nil {
		return nil, err
	}
	out = append(out, h...)

	for _, b := range Brackets(&t.State) {
		h, err := b.FancyHTML()
		if err != nil {
			return nil, err
		}
		out = append(out, h...)
	}
	return out, nil
}

type sectionKey struct {
	bracket models.Bracket
	pool    int
	session int
	court   int
}

func (k sectionKey) name() string {
	switch k.bracket {
	case models.BracketPool:
		return fmt.Sprintf("Pool %d", k.pool)
	case models.BracketLadder:
		return fmt.Sprintf("Session %d, court %d", k.session, k.court)
	case models.BracketNone:
		return "Schedule"
	case models.BracketMain:
		return "Bracket"
	case models.BracketWinners:
		return "Winners bracket"
	case models.BracketLosers:
		return "Losers bracket"
	case models.BracketGrandFinal:
		return "Grand final"
	case models.BracketReset:
		return "Reset"
	}
	return k.bracket.String()
}

// Brackets splits the matches of a state into displayable sections, each with its matches by round
func Brackets(st *models.State) []Bracket {
	sections := map[sectionKey]*Bracket{}
	var order []sectionKey
	for _, m := range st.Matches {
		if m.IsReset && !m.Ready() {
			continue
		}
		k := sectionKey{bracket: m.Bracket, pool: m.Pool}
		if m.Bracket == models.BracketLadder {
			k.session, k.court = m.Session, m.Court
		}
		b, ok := sections[k]
		if !ok {
			b = &Bracket{Name: k.name(), Roster: st.Participants}
			switch k.bracket {
			case models.BracketMain, models.BracketGrandFinal, models.BracketReset:
				b.FinalWinner = true
			}
			sections[k] = b
			order = append(order, k)
		}
		for len(b.Rounds) < m.Round {
			b.Rounds = append(b.Rounds, nil)
		}
		b.Rounds[m.Round-1] = append(b.Rounds[m.Round-1], m)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.session != b.session {
			return a.session > b.session
		}
		if a.bracket != b.bracket {
			return a.bracket < b.bracket
		}
		if a.court != b.court {
			return a.court > b.court
		}
		return a.pool < b.pool
	})

	out := make([]Bracket, 0, len(order))
	for _, k := range order {
		b := sections[k]
		// grand final and reset rounds are numbered after the winners bracket
		var rounds [][]models.Match
		for _, r := range b.Rounds {
			if len(r) > 0 {
				rounds = append(rounds, r)
			}
		}
		b.Rounds = rounds
		out = append(out, *b)
	}
	return out
}

// Table is a rendered standings table
type Table struct {
	Name string
	Rows []tournament.Standing
}

const tableHTML = `
<table class="standings">
<caption>{{.Name}}</caption>
<tr><th>#</th><th>Name</th><th>W</th><th>L</th><th>Pts</th><th>+/-</th><th>Win %</th></tr>
{{ range .Rows -}}
    <tr><td>{{.Rank}}</td><td>{{.Name}}</td><td>{{.Wins}}</td><td>{{.Losses}}</td><td>{{.Points}}</td><td>{{signed .PointDiff}}</td><td>{{percent .WinPercentage}}</td></tr>
{{ end }}</table>
`

func (t *Table) ToHTML() ([]byte, error) {
	funcMap := template.FuncMap{
		"signed": func(n int) string {
			if n > 0 {
				return fmt.Sprintf("+%d", n)
			}
			return fmt.Sprint(n)
		},
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
	}
	tmpl, err := template.New("table").Funcs(funcMap).Parse(tableHTML)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, t)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

const bracketHTML = `
<h4>{{.Name}}</h4>
<main class="bracket">
{{$winner := lastWinner}}
{{ range $i, $round := .Rounds }}
    <ul>
    {{ range $j, $game := $round -}}
        {{ range $k, $side := sides $game -}}
            <li class="game{{if eq $k 0}} game-top{{else}} game-bottom{{end}}{{if winner $game $side }} winner{{end}}">{{name $side}} <span>{{score $game $k}}</span></li>
        {{- end }}
        {{if last $j $round | not }}<li>&nbsp;</li> {{end}}
    {{ end -}}</ul>
{{ end }}{{if $winner}}<ul><li class="game round-winner">{{name $winner}} <span></span></li></ul>{{end}}
</main>
`

// Bracket is one displayable section of a draw
type Bracket struct {
	Name        string
	Rounds      [][]models.Match
	Roster      models.Roster
	FinalWinner bool
}

func (b Bracket) FancyHTML() ([]byte, error) {
	funcMap := template.FuncMap{
		"last": func(x int, a interface{}) bool {
			return x == reflect.ValueOf(a).Len()-1
		},
		"sides": func(m models.Match) []*models.Side {
			return []*models.Side{m.Team1, m.Team2}
		},
		"winner": func(m models.Match, side *models.Side) bool {
			return side != nil && m.Completed && m.Winner.Equals(side)
		},
		"name": func(side *models.Side) string {
			if side == nil {
				return "BYE"
			}
			return side.DisplayName(b.Roster)
		},
		"score": func(m models.Match, k int) string {
			s := m.Score1
			if k == 1 {
				s = m.Score2
			}
			if s == nil || m.IsBye {
				return ""
			}
			return fmt.Sprint(*s)
		},
		"lastWinner": func() *models.Side {
			if !b.FinalWinner || len(b.Rounds) == 0 {
				return nil
			}
			lastRound := b.Rounds[len(b.Rounds)-1]
			if len(lastRound) != 1 || !lastRound[0].Completed {
				return nil
			}
			return lastRound[0].Winner
		},
	}
	tmpl, err := template.New("bracket").Funcs(funcMap).Parse(bracketHTML)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, b)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
