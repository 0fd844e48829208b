package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/blucap/ssrnbib/internal/config"
	"github.com/blucap/ssrnbib/internal/ssrn"
	"github.com/blucap/ssrnbib/internal/storage"
)

// mustLoadConfig loads the global configuration, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.RetryPolicy().Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid retry settings: %v", err)
	}
	return cfg
}

// newResolver wires the fetcher and extractor from configuration.
func newResolver(cfg *config.GlobalConfig) *ssrn.Resolver {
	client := ssrn.NewClient(
		ssrn.WithHTTPClient(&http.Client{Timeout: cfg.Timeout.Duration}),
		ssrn.WithUserAgent(cfg.UserAgent),
		ssrn.WithRetryPolicy(cfg.RetryPolicy()),
		ssrn.WithRateLimit(cfg.RateLimit),
		ssrn.WithLogger(logger),
	)
	extractor := ssrn.NewExtractor(ssrn.WithVenue(cfg.Journal, cfg.Publisher))
	return ssrn.NewResolver(client, extractor)
}

// openLibrary opens the SQLite index under dir, building it from
// library.jsonl when the database does not exist yet.
func openLibrary(dir string) (*storage.DB, error) {
	if err := os.MkdirAll(config.CachePath(dir), 0755); err != nil {
		return nil, err
	}

	dbPath := config.DBPath(dir)
	_, statErr := os.Stat(dbPath)

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	if errors.Is(statErr, os.ErrNotExist) {
		if _, err := db.RebuildFromJSONL(config.LibraryPath(dir)); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// mustOpenLibrary opens the library index, exits on error.
func mustOpenLibrary(cfg *config.GlobalConfig) *storage.DB {
	db, err := openLibrary(cfg.LibraryDir)
	if err != nil {
		exitWithError(ExitError, "opening library: %v", err)
	}
	return db
}

// rebuildLibrary refreshes the index from library.jsonl.
func rebuildLibrary(dir string) (int, error) {
	db, err := openLibrary(dir)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.RebuildFromJSONL(config.LibraryPath(dir))
}
