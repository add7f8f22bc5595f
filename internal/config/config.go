// Package config loads nemhist settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nemhist/internal/archive"
	"github.com/roach88/nemhist/internal/snapshot"
)

// Config is the full settings document.
type Config struct {
	Database string        `yaml:"database"`
	Catalog  string        `yaml:"catalog"` // optional CUE file replacing the embedded catalog
	Archive  ArchiveConfig `yaml:"archive"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Log      LogConfig     `yaml:"log"`
}

// ArchiveConfig configures archive downloads.
type ArchiveConfig struct {
	URLTemplate string        `yaml:"url_template"`
	MaxRetries  uint64        `yaml:"max_retries"`
	Timeout     time.Duration `yaml:"timeout"`
}

// IngestConfig configures ingestion.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Database: "nemhist.db",
		Archive: ArchiveConfig{
			URLTemplate: archive.DefaultURLTemplate,
			MaxRetries:  archive.DefaultMaxRetries,
			Timeout:     archive.DefaultTimeout,
		},
		Ingest: IngestConfig{Concurrency: snapshot.DefaultConcurrency},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
// A missing file is an error; an empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database: must not be empty")
	}
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency: must be at least 1, got %d", c.Ingest.Concurrency)
	}
	if c.Archive.Timeout < 0 {
		return fmt.Errorf("archive.timeout: must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
