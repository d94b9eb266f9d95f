package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every setting the courtplay service reads from its environment
type Config struct {
	DBPath        string
	ListenAddr    string
	LogLevel      zerolog.Level
	ArchiveBucket string
	ArchiveGzip   bool
}

// Load reads the configuration from environment variables, after loading a .env file if one exists
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, os.Getenv outside of tests
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBPath:        getenv("COURTPLAY_DB_PATH"),
		ListenAddr:    getenv("COURTPLAY_LISTEN_ADDR"),
		ArchiveBucket: getenv("COURTPLAY_ARCHIVE_BUCKET"),
		LogLevel:      zerolog.InfoLevel,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "courtplay.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if lvl := getenv("COURTPLAY_LOG_LEVEL"); lvl != "" {
		parsed, err := zerolog.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid COURTPLAY_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = parsed
	}

	if gz := getenv("COURTPLAY_ARCHIVE_GZIP"); gz != "" {
		v, err := strconv.ParseBool(gz)
		if err != nil {
			return nil, fmt.Errorf("invalid COURTPLAY_ARCHIVE_GZIP environment variable: %w", err)
		}
		cfg.ArchiveGzip = v
	}

	return cfg, nil
}
