package storm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/justinjudd/courtplay/models"

	"github.com/asdine/storm"
	"github.com/asdine/storm/codec/msgpack"
	"github.com/asdine/storm/q"
	bolt "go.etcd.io/bbolt"
)

// openTimeout bounds how long opening waits for the file lock held by another process
const openTimeout = 2 * time.Second

type engine struct {
	*storm.DB
}

// NewStorageEngine creates and returns a StorageEngine meeting the engine interface, using a storm db backend
func NewStorageEngine(path string) (models.StorageEngine, error) {
	db, err := storm.Open(path,
		storm.Codec(msgpack.Codec),
		storm.BoltOptions(0600, &bolt.Options{Timeout: openTimeout}),
	)
	//db, err := storm.Open(path) // Use this for debug or if you want JSON stored in the database
	if err != nil {
		return nil, fmt.Errorf("unable to open storage engine: %w", err)
	}
	if err := db.Init(&models.Tournament{}); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialise tournament bucket: %w", err)
	}

	return &engine{db}, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, storm.ErrNotFound) {
		return fmt.Errorf("%w: tournament %s", models.ErrNotFound, id)
	}
	return err
}

func (e *engine) SaveTournament(ctx context.Context, t *models.Tournament) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.ID == "" {
		return models.Invalid("id", "tournament has no id")
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := e.Save(t); err != nil {
		return fmt.Errorf("error saving tournament %s: %w", t.ID, err)
	}
	return nil
}

func (e *engine) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var t models.Tournament
	if err := e.One("ID", id, &t); err != nil {
		return nil, notFound(err, id)
	}
	return &t, nil
}

// ListTournaments returns stored tournaments, oldest first, optionally only those of one format
func (e *engine) ListTournaments(ctx context.Context, format *models.Format) ([]*models.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var matchers []q.Matcher
	if format != nil {
		matchers = append(matchers, q.Eq("Format", *format))
	}

	var found []models.Tournament
	err := e.Select(matchers...).Find(&found)
	if err != nil && !errors.Is(err, storm.ErrNotFound) {
		return nil, fmt.Errorf("error listing tournaments: %w", err)
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})

	out := make([]*models.Tournament, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (e *engine) DeleteTournament(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return notFound(e.DeleteStruct(&models.Tournament{ID: id}), id)
}

func (e *engine) Backup(w io.Writer) (int64, error) {
	var n int64
	err := e.Bolt.View(func(tx *bolt.Tx) error {
		var err error
		n, err = tx.WriteTo(w)
		return err
	})
	return n, err
}

func (e *engine) Close() error {
	return e.DB.Close()
}
