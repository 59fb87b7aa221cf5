package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultDatabasePath is the database file used when nothing else is configured.
// It is resolved relative to the process working directory.
const DefaultDatabasePath = "mydatabase.db"

// Options tunes the behavior of a SQLiteStorage.
type Options struct {
	// StrictReferences rejects transactions and scheduled transactions whose
	// account or transaction type does not exist. When false, names are stored
	// as given and may dangle.
	StrictReferences bool
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	opts   Options
	closed atomic.Bool
}

// NewSQLiteStorage opens (creating if absent) the database file at dbPath.
// The schema is not touched; call Migrate, or use Open which does both.
func NewSQLiteStorage(dbPath string, opts Options) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, newError("open", fmt.Errorf("failed to create database directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, newError("open", fmt.Errorf("failed to open database: %w", err))
	}

	// One connection: operations are issued one at a time and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, newError("open", fmt.Errorf("failed to ping database: %w", err))
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		opts:   opts,
	}, nil
}

// Open opens the database at dbPath and brings its schema up to date.
// The returned storage must be closed by the caller.
func Open(ctx context.Context, dbPath string, opts Options) (*SQLiteStorage, error) {
	store, err := NewSQLiteStorage(dbPath, opts)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	slog.Debug("opened database", "path", dbPath, "strict_references", opts.StrictReferences)
	return store, nil
}

// Path returns the database file path the storage was opened with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection. Operations issued afterwards fail
// with a storage-unavailable error. Closing twice is a no-op.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// ready reports a storage-unavailable error once the handle has been closed.
func (s *SQLiteStorage) ready(ctx context.Context, op string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s.closed.Load() {
		return newError(op, errClosed)
	}
	return nil
}

// count runs a COUNT(*) style query returning a single integer.
func (s *SQLiteStorage) count(ctx context.Context, op, query string, args ...any) (int, error) {
	if err := s.ready(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, newError(op, err)
	}
	return n, nil
}

// exists wraps count with the fail-closed contract of the *Exists operations:
// a failed lookup is logged and reported as false.
func (s *SQLiteStorage) exists(ctx context.Context, op, query, name string) bool {
	n, err := s.count(ctx, op, query, name)
	if err != nil {
		slog.Error("existence check failed", "op", op, "name", name, "error", err)
		return false
	}
	return n > 0
}

// queryNames returns the single text column of every row of query.
func (s *SQLiteStorage) queryNames(ctx context.Context, op, query string) ([]string, error) {
	if err := s.ready(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError(op, fmt.Errorf("failed to query: %w", err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, newError(op, fmt.Errorf("failed to scan name: %w", err))
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, newError(op, fmt.Errorf("error iterating rows: %w", err))
	}

	return names, nil
}

// insert executes a single INSERT statement and returns the number of rows written.
func (s *SQLiteStorage) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	if err := s.ready(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, newError(op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, newError(op, fmt.Errorf("failed to read affected rows: %w", err))
	}
	return n, nil
}
