package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
)

// CreateAccount inserts a new account. The insert is a single statement that
// only writes when no account with the same name exists, so a duplicate name
// fails with common.ErrDuplicateEntry and leaves the table unchanged.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, openingDate time.Time, openingBalance decimal.Decimal) error {
	const op = "create account"

	query := `
		INSERT INTO accounts (name, opening_date, opening_balance)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM accounts WHERE name = ?)`

	n, err := s.insert(ctx, op, query, name, dateArg(openingDate), openingBalance, name)
	if err != nil {
		slog.Error("failed to create account", "name", name, "error", err)
		return err
	}
	if n == 0 {
		return newError(op, fmt.Errorf("%w: account %q", common.ErrDuplicateEntry, name))
	}

	slog.Info("created account", "name", name)
	return nil
}

// AccountExists reports whether an account with exactly this name exists.
// A failed lookup is logged and reported as false.
func (s *SQLiteStorage) AccountExists(ctx context.Context, name string) bool {
	return s.exists(ctx, "account exists", `SELECT COUNT(*) FROM accounts WHERE name = ?`, name)
}

// GetAllAccountNames returns every account name in insertion order.
func (s *SQLiteStorage) GetAllAccountNames(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, "list account names", `SELECT name FROM accounts ORDER BY id`)
}

// GetAllAccountDetails returns every account, most recent opening date first.
func (s *SQLiteStorage) GetAllAccountDetails(ctx context.Context) ([]model.Account, error) {
	const op = "list accounts"
	if err := s.ready(ctx, op); err != nil {
		return nil, err
	}

	query := `
		SELECT name, opening_date, opening_balance
		FROM accounts
		ORDER BY opening_date DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError(op, fmt.Errorf("failed to query accounts: %w", err))
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var (
			acct    model.Account
			opened  time.Time
			balance decimal.NullDecimal
		)
		if err := rows.Scan(&acct.Name, &opened, &balance); err != nil {
			return nil, newError(op, fmt.Errorf("failed to scan account: %w", err))
		}
		acct.OpeningDate = model.DateOnly(opened)
		acct.OpeningBalance = balance.Decimal
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, newError(op, fmt.Errorf("error iterating accounts: %w", err))
	}

	slog.Debug("retrieved accounts", "count", len(accounts))
	return accounts, nil
}

// dateArg binds a calendar date as YYYY-MM-DD text, or NULL for the zero time
// so NOT NULL columns reject it.
func dateArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return model.FormatDate(model.DateOnly(t))
}
