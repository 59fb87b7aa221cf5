package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
)

// ScheduleNameExists reports whether a scheduled transaction already uses
// this schedule name. Matching is case-sensitive. A failed lookup is logged
// and reported as false.
func (s *SQLiteStorage) ScheduleNameExists(ctx context.Context, name string) bool {
	return s.exists(ctx, "schedule name exists",
		`SELECT COUNT(*) FROM scheduled_transactions WHERE schedule_name = ?`, name)
}

// SaveScheduledTransaction stores a recurring transaction definition. Schedule
// names are unique: the single-statement insert writes nothing when the name
// is taken and the call fails with common.ErrDuplicateEntry. The due date is
// kept as a Julian day number.
func (s *SQLiteStorage) SaveScheduledTransaction(ctx context.Context, st model.ScheduledTransaction) error {
	const op = "save scheduled transaction"

	args := []any{
		st.ScheduleName,
		st.AccountName,
		st.TransactionType,
		nullableString(string(st.Frequency)),
		dateArg(st.DueDate),
		st.PaymentAmount,
		st.ScheduleName,
	}

	query := `
		INSERT INTO scheduled_transactions (schedule_name, account_name, transaction_type,
			frequency, due_date, payment_amount)
		SELECT ?, ?, ?, ?, julianday(?), ?
		WHERE NOT EXISTS (SELECT 1 FROM scheduled_transactions WHERE schedule_name = ?)`

	if s.opts.StrictReferences {
		query += `
		  AND EXISTS (SELECT 1 FROM accounts WHERE name = ?)
		  AND EXISTS (SELECT 1 FROM transaction_types WHERE name = ?)`
		args = append(args, st.AccountName, st.TransactionType)
	}

	n, err := s.insert(ctx, op, query, args...)
	if err != nil {
		slog.Error("failed to save scheduled transaction", "schedule", st.ScheduleName, "error", err)
		return err
	}
	if n == 0 {
		if s.ScheduleNameExists(ctx, st.ScheduleName) {
			return newError(op, fmt.Errorf("%w: schedule %q", common.ErrDuplicateEntry, st.ScheduleName))
		}
		return s.referenceError(ctx, op, st.AccountName, st.TransactionType)
	}

	slog.Info("saved scheduled transaction",
		"schedule", st.ScheduleName,
		"frequency", st.Frequency,
		"due", model.FormatDate(st.DueDate))
	return nil
}

// GetScheduledTransactions returns every scheduled transaction in insertion order.
func (s *SQLiteStorage) GetScheduledTransactions(ctx context.Context) ([]model.ScheduledTransaction, error) {
	const op = "list scheduled transactions"
	if err := s.ready(ctx, op); err != nil {
		return nil, err
	}

	query := `
		SELECT schedule_name, account_name, transaction_type, frequency,
			date(due_date), payment_amount
		FROM scheduled_transactions
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError(op, fmt.Errorf("failed to query scheduled transactions: %w", err))
	}
	defer rows.Close()

	scheduled := []model.ScheduledTransaction{}
	for rows.Next() {
		var (
			st        model.ScheduledTransaction
			frequency string
			due       sql.NullString
			payment   decimal.NullDecimal
		)
		if err := rows.Scan(&st.ScheduleName, &st.AccountName, &st.TransactionType,
			&frequency, &due, &payment); err != nil {
			return nil, newError(op, fmt.Errorf("failed to scan scheduled transaction: %w", err))
		}
		st.Frequency = model.Frequency(frequency)
		st.PaymentAmount = payment.Decimal
		if due.Valid {
			if st.DueDate, err = time.Parse(model.DateLayout, due.String); err != nil {
				return nil, newError(op, fmt.Errorf("failed to parse due date %q: %w", due.String, err))
			}
		}
		scheduled = append(scheduled, st)
	}

	if err := rows.Err(); err != nil {
		return nil, newError(op, fmt.Errorf("error iterating scheduled transactions: %w", err))
	}

	slog.Debug("retrieved scheduled transactions", "count", len(scheduled))
	return scheduled, nil
}
