package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/model"
)

// SaveTransaction inserts a transaction. Account and transaction type are
// stored by name; unless StrictReferences is set, names that match no record
// are accepted as they are.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn model.Transaction) error {
	const op = "save transaction"

	args := []any{
		txn.AccountName,
		txn.TransactionType,
		dateArg(txn.Date),
		nullableString(txn.Description),
		txn.PaymentAmount,
		txn.DepositAmount,
	}

	query := `
		INSERT INTO transactions (account_name, transaction_type, transaction_date,
			description, payment_amount, deposit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	if s.opts.StrictReferences {
		query = `
			INSERT INTO transactions (account_name, transaction_type, transaction_date,
				description, payment_amount, deposit_amount)
			SELECT ?, ?, ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM accounts WHERE name = ?)
			  AND EXISTS (SELECT 1 FROM transaction_types WHERE name = ?)`
		args = append(args, txn.AccountName, txn.TransactionType)
	}

	n, err := s.insert(ctx, op, query, args...)
	if err != nil {
		slog.Error("failed to save transaction", "account", txn.AccountName, "error", err)
		return err
	}
	if n == 0 {
		return s.referenceError(ctx, op, txn.AccountName, txn.TransactionType)
	}

	slog.Debug("saved transaction",
		"account", txn.AccountName,
		"type", txn.TransactionType,
		"date", model.FormatDate(txn.Date))
	return nil
}

// GetTransactions returns every transaction in insertion order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	const op = "list transactions"
	if err := s.ready(ctx, op); err != nil {
		return nil, err
	}

	query := `
		SELECT account_name, transaction_type, transaction_date,
			description, payment_amount, deposit_amount
		FROM transactions
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError(op, fmt.Errorf("failed to query transactions: %w", err))
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var (
			txn         model.Transaction
			date        time.Time
			description sql.NullString
			payment     decimal.NullDecimal
			deposit     decimal.NullDecimal
		)
		if err := rows.Scan(&txn.AccountName, &txn.TransactionType, &date,
			&description, &payment, &deposit); err != nil {
			return nil, newError(op, fmt.Errorf("failed to scan transaction: %w", err))
		}
		txn.Date = model.DateOnly(date)
		txn.Description = description.String
		txn.PaymentAmount = payment.Decimal
		txn.DepositAmount = deposit.Decimal
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, newError(op, fmt.Errorf("error iterating transactions: %w", err))
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// referenceError explains why a strict-mode insert wrote nothing.
func (s *SQLiteStorage) referenceError(ctx context.Context, op, accountName, transactionType string) error {
	if !s.AccountExists(ctx, accountName) {
		return newError(op, fmt.Errorf("%w %q", ErrUnknownAccount, accountName))
	}
	if !s.TransactionTypeExists(ctx, transactionType) {
		return newError(op, fmt.Errorf("%w %q", ErrUnknownTransactionType, transactionType))
	}
	return newError(op, errNoRowWritten)
}

var errNoRowWritten = errors.New("no row written")

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
