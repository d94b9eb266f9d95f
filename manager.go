package courtplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// ErrByesNotAccepted is returned when a bracket needs byes and the caller has not agreed to them
var ErrByesNotAccepted = errors.New("bracket needs byes")

// ByesError carries the warnings a caller has to accept before the tournament is created
type ByesError struct {
	Warnings []tournament.Warning
}

func (e *ByesError) Error() string {
	if len(e.Warnings) == 0 {
		return ErrByesNotAccepted.Error()
	}
	return fmt.Sprintf("%s: %s", ErrByesNotAccepted, e.Warnings[0].Message)
}

func (e *ByesError) Unwrap() error { return ErrByesNotAccepted }

// Notifier is told about engine events once the change behind them has been stored
type Notifier interface {
	Publish(tournamentID string, events []tournament.Event)
}

// Archiver keeps the final results of a finished tournament somewhere outside the store
type Archiver interface {
	Archive(ctx context.Context, t *models.Tournament, standings []tournament.Standing) error
}

// Manager runs tournaments on top of a StorageEngine. Changes to one tournament are serialized,
// different tournaments proceed independently.
type Manager struct {
	store    models.StorageEngine
	notifier Notifier
	archiver Archiver
	seed     func() int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithArchiver(a Archiver) Option {
	return func(m *Manager) { m.archiver = a }
}

// WithSeed fixes the seed every schedule is generated from
func WithSeed(seed int64) Option {
	return func(m *Manager) { m.seed = func() int64 { return seed } }
}

func NewManager(store models.StorageEngine, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		seed:  func() int64 { return time.Now().UnixNano() },
		locks: map[string]*sync.Mutex{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// CreateRequest describes a new tournament
type CreateRequest struct {
	Name         string                 `json:"name"`
	Format       models.Format          `json:"format"`
	Kind         models.ParticipantKind `json:"kind"`
	Participants models.Roster          `json:"participants"`
	Settings     models.Settings        `json:"settings"`
	AcceptByes   bool                   `json:"acceptByes"`
}

// Create generates the schedule and stores the tournament. If the draw needs byes and the request did
// not accept them, nothing is stored and a *ByesError is returned with the warnings.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*models.Tournament, []tournament.Warning, error) {
	if req.Name == "" {
		return nil, nil, models.Invalid("name", "a tournament needs a name")
	}
	roster := append(models.Roster(nil), req.Participants...)
	for i := range roster {
		if roster[i].ID == "" {
			roster[i].ID = xid.New().String()
		}
	}

	st, warnings, err := tournament.NewState(req.Format, req.Kind, roster, req.Settings, tournament.NewRandomSource(m.seed()))
	if err != nil {
		return nil, nil, err
	}
	if len(warnings) > 0 && !req.AcceptByes {
		return nil, warnings, &ByesError{Warnings: warnings}
	}

	t := &models.Tournament{ID: xid.New().String(), Name: req.Name, State: st}
	if err := m.store.SaveTournament(ctx, t); err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("tournament", t.ID).
		Stringer("format", t.Format).
		Int("participants", len(t.Participants)).
		Int("matches", len(t.Matches)).
		Msg("tournament created")
	return t, warnings, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*models.Tournament, error) {
	return m.store.GetTournament(ctx, id)
}

func (m *Manager) List(ctx context.Context, format *models.Format) ([]*models.Tournament, error) {
	return m.store.ListTournaments(ctx, format)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()
	if err := m.store.DeleteTournament(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return nil
}

// transition loads a tournament, applies fn to its state and stores the result
func (m *Manager) transition(ctx context.Context, id string, fn func(models.State) (models.State, []tournament.Event, error)) (*models.Tournament, []tournament.Event, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.store.GetTournament(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	champion := t.Champion.Clone()

	next, events, err := fn(t.State)
	if err != nil {
		return nil, nil, err
	}
	t.State = next
	if err := m.store.SaveTournament(ctx, t); err != nil {
		return nil, nil, err
	}

	if m.notifier != nil && len(events) > 0 {
		m.notifier.Publish(t.ID, events)
	}
	// a corrected final that changes the champion is archived again
	if t.Finished() && !champion.Equals(t.Champion) {
		log.Info().Str("tournament", t.ID).Str("champion", t.Champion.DisplayName(t.Participants)).Msg("tournament finished")
		m.archive(ctx, t)
	}
	return t, events, nil
}

// archive failures are logged, the result itself is already stored
func (m *Manager) archive(ctx context.Context, t *models.Tournament) {
	if m.archiver == nil {
		return
	}
	if err := m.archiver.Archive(ctx, t, tournament.Calculate(t.Participants, t.Matches)); err != nil {
		log.Warn().Err(err).Str("tournament", t.ID).Msg("unable to archive finished tournament")
		return
	}
	t.Archived = true
	if err := m.store.SaveTournament(ctx, t); err != nil {
		log.Warn().Err(err).Str("tournament", t.ID).Msg("unable to mark tournament archived")
	}
}

// ScoreChange applies a single score field edit
func (m *Manager) ScoreChange(ctx context.Context, id string, matchID int, field tournament.ScoreField, value *int) (*models.Tournament, tournament.Update, error) {
	var u tournament.Update
	t, _, err := m.transition(ctx, id, func(st models.State) (models.State, []tournament.Event, error) {
		var err error
		u, err = tournament.HandleScoreChange(st, matchID, field, value)
		return u.State, u.Events, err
	})
	return t, u, err
}

// CompleteMatch records a full score line
func (m *Manager) CompleteMatch(ctx context.Context, id string, matchID, score1, score2 int) (*models.Tournament, tournament.Update, error) {
	var u tournament.Update
	t, _, err := m.transition(ctx, id, func(st models.State) (models.State, []tournament.Event, error) {
		var err error
		u, err = tournament.CompleteMatch(st, matchID, score1, score2)
		return u.State, u.Events, err
	})
	return t, u, err
}

// AdvanceToBracket generates the bracket of a pool play tournament whose pools are all complete.
// Completing the last pool match does this already, this is for retrying after a failure.
func (m *Manager) AdvanceToBracket(ctx context.Context, id string) (*models.Tournament, error) {
	t, _, err := m.transition(ctx, id, func(st models.State) (models.State, []tournament.Event, error) {
		next, err := tournament.AdvanceToBracket(st)
		if err != nil {
			return st, nil, err
		}
		return next, []tournament.Event{{Kind: tournament.EventBracketGenerated}}, nil
	})
	return t, err
}

// Standings ranks the participants of a tournament
func (m *Manager) Standings(ctx context.Context, id string, opts ...tournament.Option) ([]tournament.Standing, error) {
	t, err := m.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	return tournament.Calculate(t.Participants, t.Matches, opts...), nil
}

// LadderMovement previews the court changes of the current ladder session
func (m *Manager) LadderMovement(ctx context.Context, id string) (tournament.Movement, error) {
	t, err := m.store.GetTournament(ctx, id)
	if err != nil {
		return tournament.Movement{}, err
	}
	if t.Format != models.FormatLadder {
		return tournament.Movement{}, models.IllegalState("%v tournaments have no ladder movement", t.Format)
	}
	return tournament.LadderMovement(t.Courts, t.Matches, t.Session), nil
}

// NextLadderSession moves players between courts and schedules the next session
func (m *Manager) NextLadderSession(ctx context.Context, id string) (*models.Tournament, tournament.Movement, error) {
	var mv tournament.Movement
	t, _, err := m.transition(ctx, id, func(st models.State) (models.State, []tournament.Event, error) {
		next, applied, err := tournament.NextLadderSession(st)
		mv = applied
		return next, nil, err
	})
	return t, mv, err
}

// Playable lists the matches of a tournament that can be scored now
func (m *Manager) Playable(ctx context.Context, id string) ([]models.Match, error) {
	t, err := m.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	return tournament.Playable(t.State), nil
}

// Backup writes a snapshot of the whole store to w
func (m *Manager) Backup(w io.Writer) (int64, error) {
	return m.store.Backup(w)
}
