package tournament

import (
	"fmt"

	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

// WarningByes is raised when a bracket has to be padded with byes
const WarningByes = "byes"

// Warning is a non fatal note about a generated schedule. The caller decides whether to go ahead with it
type Warning struct {
	Kind    string `json:"kind"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Schedule is the initial match list produced by a generator
type Schedule struct {
	Matches  []models.Match          `json:"matches"`
	Phase    models.Phase            `json:"phase"`
	Courts   models.CourtAssignments `json:"courts,omitempty"`
	Pools    [][]*models.Side        `json:"pools,omitempty"`
	Warnings []Warning               `json:"warnings,omitempty"`
}

func byeWarning(byes int) []Warning {
	if byes <= 0 {
		return nil
	}
	return []Warning{{
		Kind:    WarningByes,
		Count:   byes,
		Message: fmt.Sprintf("bracket needs %d bye(s) to reach a power of two", byes),
	}}
}

// Generate builds the initial schedule for the given format
func Generate(format models.Format, kind models.ParticipantKind, participants models.Roster, settings models.Settings, rng RandomSource) (Schedule, error) {
	if err := settings.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := checkDistinct(participants); err != nil {
		return Schedule{}, err
	}

	var (
		s   Schedule
		err error
	)
	switch format {
	case models.FormatRoundRobin:
		if kind == models.KindTeam {
			s, err = RoundRobinTeams(participants, settings, rng)
		} else {
			s, err = RoundRobinMixer(participants, settings, rng)
		}
	case models.FormatSingleElimination:
		s, err = SingleElimination(participants, kind, rng)
	case models.FormatDoubleElimination:
		s, err = DoubleElimination(participants, kind, rng)
	case models.FormatPoolPlay:
		s, err = PoolPlay(participants, kind, settings, rng)
	case models.FormatLadder:
		if kind != models.KindIndividual {
			return Schedule{}, models.Invalid("kind", "ladder leagues are played by individuals")
		}
		s, err = LadderSession(participants, 1)
	default:
		return Schedule{}, models.Invalid("format", "unsupported format %v", format)
	}
	if err != nil {
		return Schedule{}, err
	}

	log.Debug().
		Stringer("format", format).
		Int("participants", len(participants)).
		Int("matches", len(s.Matches)).
		Int("warnings", len(s.Warnings)).
		Msg("schedule generated")
	return s, nil
}

// NewState generates a schedule and wraps it, with a fresh copy of the roster, into an engine state
func NewState(format models.Format, kind models.ParticipantKind, participants models.Roster, settings models.Settings, rng RandomSource) (models.State, []Warning, error) {
	s, err := Generate(format, kind, participants, settings, rng)
	if err != nil {
		return models.State{}, nil, err
	}
	roster := append(models.Roster(nil), participants...)
	roster.Reset()
	for i := range roster {
		roster[i].Kind = kind
	}

	st := models.State{
		Format:       format,
		Kind:         kind,
		Settings:     settings,
		Participants: roster,
		Matches:      s.Matches,
		Phase:        s.Phase,
		Courts:       s.Courts,
		Pools:        s.Pools,
	}
	if format == models.FormatLadder {
		st.Session = 1
	}
	// pools holding a single side have nothing to play, with no pool games at all go straight to the bracket
	if format == models.FormatPoolPlay && len(s.Matches) == 0 {
		if _, err := advanceToBracket(&st); err != nil {
			return models.State{}, nil, err
		}
	}
	return st, s.Warnings, nil
}
