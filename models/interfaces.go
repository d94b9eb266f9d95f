package models

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Format is used to discern between the supported competition formats
type Format int32

const (
	FormatRoundRobin Format = iota
	FormatSingleElimination
	FormatDoubleElimination
	FormatPoolPlay
	FormatLadder
)

var formatNames = []string{"round-robin", "single-elimination", "double-elimination", "pool-play", "ladder"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("format(%d)", int32(f))
	}
	return formatNames[f]
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	i, err := parseEnum(string(b), formatNames)
	if err != nil {
		return fmt.Errorf("unknown format %q", b)
	}
	*f = Format(i)
	return nil
}

// ParticipantKind tells whether the roster is made of individual players or fixed doubles teams
type ParticipantKind int32

const (
	KindIndividual ParticipantKind = iota
	KindTeam
)

var kindNames = []string{"individual", "team"}

func (k ParticipantKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int32(k))
	}
	return kindNames[k]
}

func (k ParticipantKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ParticipantKind) UnmarshalText(b []byte) error {
	i, err := parseEnum(string(b), kindNames)
	if err != nil {
		return fmt.Errorf("unknown participant kind %q", b)
	}
	*k = ParticipantKind(i)
	return nil
}

// Phase is the tournament level stage. Only pool play and ladder formats move between phases
type Phase int32

const (
	PhaseNone Phase = iota
	PhasePools
	PhaseBracket
	PhasePlaying
	PhaseSessionResults
)

var phaseNames = []string{"none", "pools", "bracket", "playing", "session-results"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int32(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	i, err := parseEnum(string(b), phaseNames)
	if err != nil {
		return fmt.Errorf("unknown phase %q", b)
	}
	*p = Phase(i)
	return nil
}

// Bracket tags the part of the draw a match belongs to
type Bracket int32

const (
	BracketNone Bracket = iota
	BracketPool
	BracketMain
	BracketWinners
	BracketLosers
	BracketGrandFinal
	BracketReset
	BracketLadder
)

var bracketNames = []string{"none", "pool", "bracket", "winners", "losers", "grand-final", "reset", "ladder"}

func (b Bracket) String() string {
	if b < 0 || int(b) >= len(bracketNames) {
		return fmt.Sprintf("bracket(%d)", int32(b))
	}
	return bracketNames[b]
}

func (b Bracket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bracket) UnmarshalText(text []byte) error {
	i, err := parseEnum(string(text), bracketNames)
	if err != nil {
		return fmt.Errorf("unknown bracket %q", text)
	}
	*b = Bracket(i)
	return nil
}

func parseEnum(s string, names []string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// StorageEngine is a backing that keeps tournament state between engine calls
type StorageEngine interface {
	SaveTournament(ctx context.Context, t *Tournament) error
	GetTournament(ctx context.Context, id string) (*Tournament, error)
	ListTournaments(ctx context.Context, format *Format) ([]*Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
	// Backup writes a consistent snapshot of the whole store to w
	Backup(w io.Writer) (int64, error)
	Close() error
}
