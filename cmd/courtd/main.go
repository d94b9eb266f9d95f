// Command courtd serves the courtplay tournament API
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinjudd/courtplay"
	"github.com/justinjudd/courtplay/archive"
	"github.com/justinjudd/courtplay/config"
	"github.com/justinjudd/courtplay/models/storm"
	"github.com/justinjudd/courtplay/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("courtd stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storm.NewStorageEngine(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()
	log.Info().Str("path", cfg.DBPath).Msg("storage opened")

	hub := server.NewHub()
	opts := []courtplay.Option{courtplay.WithNotifier(hub)}
	if cfg.ArchiveBucket != "" {
		archiver, err := archive.NewFromEnvironment(ctx, cfg.ArchiveBucket, cfg.ArchiveGzip)
		if err != nil {
			return err
		}
		opts = append(opts, courtplay.WithArchiver(archiver))
		log.Info().Str("bucket", cfg.ArchiveBucket).Bool("gzip", cfg.ArchiveGzip).Msg("archiving finished tournaments")
	}
	manager := courtplay.NewManager(store, opts...)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(manager, hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gCtx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
