// Package testutil provides test databases seeded with ledger fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/checkbook/internal/storage"
)

// TestDB is an in-memory database scoped to a single test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Fixture Fixture
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup      func(context.Context, *storage.SQLiteStorage) error
	Fixture          Fixture
	StrictReferences bool
}

// SetupTestDB creates a migrated in-memory database seeded with fixture.
// The database is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.BasicLedger())
//	names, err := db.Storage.GetAllAccountNames(ctx)
func SetupTestDB(t *testing.T, fixture Fixture) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Fixture: fixture})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	ctx := context.Background()
	store, err := storage.Open(ctx, ":memory:", storage.Options{StrictReferences: opts.StrictReferences})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := opts.Fixture.Seed(ctx, store); err != nil {
		t.Fatalf("failed to seed fixture: %v", err)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Fixture: opts.Fixture,
		t:       t,
	}
}

// MustAccountNames returns every account name or fails the test.
func (db *TestDB) MustAccountNames() []string {
	db.t.Helper()
	names, err := db.Storage.GetAllAccountNames(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list accounts: %v", err)
	}
	return names
}
