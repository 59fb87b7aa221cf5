// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/model"
)

// Storage defines the contract for our persistence layer.
//
// Write operations return nil on success. Failures carry a kind that callers
// can test with errors.Is against common.ErrDuplicateEntry,
// common.ErrStorageUnavailable and common.ErrMissingReference.
// The *Exists operations never fail: a lookup error reads as false.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, name string, openingDate time.Time, openingBalance decimal.Decimal) error
	AccountExists(ctx context.Context, name string) bool
	GetAllAccountNames(ctx context.Context) ([]string, error)
	GetAllAccountDetails(ctx context.Context) ([]model.Account, error)

	// Transaction type operations
	AddTransactionType(ctx context.Context, name string) error
	TransactionTypeExists(ctx context.Context, name string) bool
	GetAllTransactionTypes(ctx context.Context) ([]string, error)

	// Transaction operations
	SaveTransaction(ctx context.Context, txn model.Transaction) error
	GetTransactions(ctx context.Context) ([]model.Transaction, error)

	// Scheduled transaction operations
	ScheduleNameExists(ctx context.Context, name string) bool
	SaveScheduledTransaction(ctx context.Context, st model.ScheduledTransaction) error
	GetScheduledTransactions(ctx context.Context) ([]model.ScheduledTransaction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
