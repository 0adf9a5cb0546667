// Package testutil provides builders and database helpers for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/Veraticus/decision-queue/internal/storage"
)

// TestDB is a migrated in-memory database for one test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with items.
// It handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewItem(t, "idea-1").Capital().Build(),
//	)
func SetupTestDB(t *testing.T, items ...model.DecisionItem) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Items: items})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Source         string
	Items          []model.DecisionItem
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Items) > 0 {
		src := opts.Source
		if src == "" {
			src = "testutil"
		}
		if err := store.SaveItems(ctx, src, opts.Items); err != nil {
			t.Fatalf("failed to seed items: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustListItems returns every stored item or fails the test.
func (db *TestDB) MustListItems() []model.DecisionItem {
	db.t.Helper()
	items, err := db.Storage.ListItems(context.Background(), service.ItemFilter{})
	if err != nil {
		db.t.Fatalf("failed to list items: %v", err)
	}
	return items
}
