package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/config"
	"github.com/Veraticus/decision-queue/internal/engine"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/Veraticus/decision-queue/internal/source"
	"github.com/Veraticus/decision-queue/internal/storage"
)

// sourceRetry retries a busy database a few times before giving up.
var sourceRetry = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     500 * time.Millisecond,
	Multiplier:   2,
}

// loadSettings resolves settings from the global viper instance.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens and migrates the database.
func initStorage(ctx context.Context, settings config.Settings) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newEngine builds an engine with the configured rollup policies.
func newEngine(settings config.Settings) (*engine.Engine, error) {
	registry, err := settings.Registry()
	if err != nil {
		return nil, common.NewUserError("invalid rollup configuration", err)
	}
	return engine.NewWithConfig(engine.Config{
		Registry: registry,
		Logger:   slog.Default(),
	}), nil
}

// pipeline runs the engine over the given item files, plus the stored items
// when useDB is set or no files are given. A non-nil storage is returned
// open for the caller to close.
func pipeline(ctx context.Context, settings config.Settings, files []string, useDB bool) (engine.Result, service.Storage, error) {
	eng, err := newEngine(settings)
	if err != nil {
		return engine.Result{}, nil, err
	}

	var (
		sources []source.Source
		store   service.Storage
	)
	for _, f := range files {
		sources = append(sources, source.NewFileSource(config.ExpandPath(f)))
	}
	if useDB || len(files) == 0 {
		store, err = initStorage(ctx, settings)
		if err != nil {
			return engine.Result{}, nil, err
		}
		sources = append(sources, source.Retrying{Source: store, Options: sourceRetry})
	}

	result, err := eng.Run(ctx, settings.Now, sources...)
	if err != nil {
		if store != nil {
			if cerr := store.Close(); cerr != nil {
				common.LogError(cerr, "Failed to close database", common.Fields{"path": settings.DatabasePath})
			}
		}
		return engine.Result{}, nil, fmt.Errorf("failed to collect items: %w", err)
	}
	return result, store, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warningStrings renders engine warnings for JSON output.
func warningStrings(warnings []error) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
