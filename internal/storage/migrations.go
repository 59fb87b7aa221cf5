package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// Tables are created in insertion-dependency order. No foreign keys are
// declared today; keep the order if that changes.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					opening_date DATE NOT NULL,
					opening_balance REAL NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_name TEXT NOT NULL,
					transaction_type TEXT NOT NULL,
					transaction_date DATE NOT NULL,
					description TEXT,
					payment_amount REAL,
					deposit_amount REAL
				)`,
				`CREATE TABLE IF NOT EXISTS transaction_types (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE
				)`,
				`CREATE TABLE IF NOT EXISTS schedules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE
				)`,
				`CREATE TABLE IF NOT EXISTS scheduled_transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					schedule_name TEXT NOT NULL,
					account_name TEXT NOT NULL,
					transaction_type TEXT NOT NULL,
					frequency TEXT NOT NULL,
					due_date REAL,
					payment_amount REAL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add name lookup indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_accounts_name ON accounts(name)`,
				`CREATE INDEX IF NOT EXISTS idx_accounts_opening_date ON accounts(opening_date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_name)`,
				`CREATE INDEX IF NOT EXISTS idx_scheduled_transactions_name ON scheduled_transactions(schedule_name)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Rewrite millisecond timestamp dates as YYYY-MM-DD",
		Up: func(tx *sql.Tx) error {
			// Earlier releases stored local midnight as epoch milliseconds.
			// SQLite orders every INTEGER below every TEXT, so mixed columns
			// would sort legacy rows after all new ones.
			queries := []string{
				`UPDATE accounts
					SET opening_date = date(opening_date / 1000, 'unixepoch', 'localtime')
					WHERE typeof(opening_date) = 'integer'`,
				`UPDATE transactions
					SET transaction_date = date(transaction_date / 1000, 'unixepoch', 'localtime')
					WHERE typeof(transaction_date) = 'integer'`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion reports the schema version recorded in the database file.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.ready(ctx, "schema version"); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, newError("schema version", fmt.Errorf("failed to get schema version: %w", err))
	}
	return version, nil
}

// Migrate applies all pending database migrations. It is safe to call on
// every startup: an up-to-date database is left untouched, and tables that a
// previous version of the application created without a recorded version are
// reused as they are.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return newError("migrate", fmt.Errorf("failed to begin transaction: %w", txErr))
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return newError("migrate", fmt.Errorf("migration %d failed: %w", migration.Version, upErr))
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return newError("migrate", fmt.Errorf("failed to update schema version: %w", execErr))
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return newError("migrate", fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr))
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return newError("migrate", fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion))
	}

	return nil
}
