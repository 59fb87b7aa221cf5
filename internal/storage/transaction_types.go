package storage

import (
	"context"
	"log/slog"
)

// AddTransactionType inserts a new transaction type. The UNIQUE constraint on
// the name column rejects duplicates with common.ErrDuplicateEntry.
func (s *SQLiteStorage) AddTransactionType(ctx context.Context, name string) error {
	if _, err := s.insert(ctx, "add transaction type", `INSERT INTO transaction_types (name) VALUES (?)`, name); err != nil {
		if KindOf(err) == KindDuplicate {
			slog.Warn("transaction type already exists", "name", name)
		} else {
			slog.Error("failed to add transaction type", "name", name, "error", err)
		}
		return err
	}

	slog.Info("added transaction type", "name", name)
	return nil
}

// TransactionTypeExists reports whether a transaction type with exactly this
// name exists. A failed lookup is logged and reported as false.
func (s *SQLiteStorage) TransactionTypeExists(ctx context.Context, name string) bool {
	return s.exists(ctx, "transaction type exists", `SELECT COUNT(*) FROM transaction_types WHERE name = ?`, name)
}

// GetAllTransactionTypes returns every transaction type name in insertion order.
func (s *SQLiteStorage) GetAllTransactionTypes(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, "list transaction types", `SELECT name FROM transaction_types ORDER BY id`)
}
