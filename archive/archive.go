// Package archive stores the final results of finished tournaments in an S3 bucket
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	StandingsObject = "standings.json"
	StateObject     = "state.json"
)

// ObjectStore is the part of the S3 client the archiver uses
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Summary is the standings document written for a finished tournament
type Summary struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Format     models.Format         `json:"format"`
	Champion   string                `json:"champion,omitempty"`
	FinishedAt time.Time             `json:"finishedAt"`
	Standings  []tournament.Standing `json:"standings"`
}

// S3Archiver writes a standings summary and the full final state of a tournament under
// tournaments/<id>/ in a bucket, gzipped if asked to
type S3Archiver struct {
	client ObjectStore
	bucket string
	gzip   bool
}

func New(client ObjectStore, bucket string, gzip bool) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, gzip: gzip}
}

// NewFromEnvironment builds an archiver on an S3 client configured from the default AWS sources
func NewFromEnvironment(ctx context.Context, bucket string, gzip bool) (*S3Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, gzip), nil
}

func (a *S3Archiver) key(id, name string) string {
	k := path.Join("tournaments", id, name)
	if a.gzip {
		k += ".gz"
	}
	return k
}

// Archive uploads both documents of a tournament concurrently
func (a *S3Archiver) Archive(ctx context.Context, t *models.Tournament, standings []tournament.Standing) error {
	summary := Summary{
		ID:         t.ID,
		Name:       t.Name,
		Format:     t.Format,
		FinishedAt: t.UpdatedAt,
		Standings:  standings,
	}
	if t.Champion != nil {
		summary.Champion = t.Champion.DisplayName(t.Participants)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.put(ctx, a.key(t.ID, StandingsObject), summary) })
	g.Go(func() error { return a.put(ctx, a.key(t.ID, StateObject), t) })
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Str("tournament", t.ID).Str("bucket", a.bucket).Msg("tournament archived")
	return nil
}

func (a *S3Archiver) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", key, err)
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/json"),
	}
	if a.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("failed to gzip %s: %w", key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer for %s: %w", key, err)
		}
		data = buf.Bytes()
		input.ContentEncoding = aws.String("gzip")
	}
	input.Body = bytes.NewReader(data)

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// Summary reads back the standings document of an archived tournament
func (a *S3Archiver) Summary(ctx context.Context, id string) (*Summary, error) {
	key := a.key(id, StandingsObject)
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, fmt.Errorf("%w: archived tournament %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get object %s/%s: %w", a.bucket, key, err)
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if a.gzip {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed object %s: %w", key, err)
		}
		defer gr.Close()
		rdr = gr
	}

	var s Summary
	if err := json.NewDecoder(rdr).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &s, nil
}
