package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/nemhist/internal/archive"
	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/config"
	"github.com/roach88/nemhist/internal/snapshot"
	"github.com/roach88/nemhist/internal/store"
)

// session is everything a database command needs, built from settings
// and flags.
type session struct {
	config  config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
	store   *store.Store
	manager *snapshot.Manager
}

// openSession loads settings, opens the database and builds the manager.
// dbFlag overrides the configured database path. When mustExist is set a
// missing database file is a command error instead of being created.
//
// All failures are returned as ExitErrors with ExitCommandError.
func openSession(opts *RootOptions, cmd *cobra.Command, dbFlag string, mustExist bool) (*session, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if dbFlag != "" {
		cfg.Database = dbFlag
	}

	logger, err := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	if mustExist {
		if _, err := os.Stat(cfg.Database); errors.Is(err, fs.ErrNotExist) {
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("database %s not found (run nemhist init first)", cfg.Database))
		}
	}

	logger.Debug("opening database", zap.String("path", cfg.Database))
	st, err := store.Open(cfg.Database, store.WithLogger(logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = archive.NewHTTPFetcher(cat,
			archive.WithURLTemplate(cfg.Archive.URLTemplate),
			archive.WithMaxRetries(cfg.Archive.MaxRetries),
			archive.WithTimeout(cfg.Archive.Timeout),
			archive.WithLogger(logger),
		)
	}

	mgr, err := snapshot.NewManager(st, cat, fetcher, snapshot.DefaultRegistry(),
		snapshot.WithLogger(logger),
		snapshot.WithConcurrency(cfg.Ingest.Concurrency),
	)
	if err != nil {
		// The manager error is the one worth reporting.
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create manager", err)
	}

	return &session{
		config:  cfg,
		logger:  logger,
		catalog: cat,
		store:   st,
		manager: mgr,
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// Close releases the database and flushes the logger.
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}
