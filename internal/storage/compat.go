package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
)

// Compat exposes a Storage through success flags instead of errors, for
// callers that only need to know whether a write went through. Failures are
// logged; read failures yield empty slices.
type Compat struct {
	store service.Storage
	ctx   context.Context
}

// NewCompat wraps store. All calls run under ctx.
func NewCompat(ctx context.Context, store service.Storage) *Compat {
	return &Compat{store: store, ctx: ctx}
}

func (c *Compat) ok(err error, op string) bool {
	res := ResultOf(err)
	if !res.OK {
		common.LogError(err, "storage operation failed", common.Fields{"op": op, "kind": res.Kind.String()})
	}
	return res.OK
}

// CreateAccount reports whether the account was inserted.
func (c *Compat) CreateAccount(name string, openingDate time.Time, openingBalance decimal.Decimal) bool {
	return c.ok(c.store.CreateAccount(c.ctx, name, openingDate, openingBalance), "create account")
}

// AccountExists reports whether the account exists.
func (c *Compat) AccountExists(name string) bool {
	return c.store.AccountExists(c.ctx, name)
}

// GetAllAccountNames returns every account name.
func (c *Compat) GetAllAccountNames() []string {
	names, err := c.store.GetAllAccountNames(c.ctx)
	if !c.ok(err, "list account names") {
		return []string{}
	}
	return names
}

// GetAllAccountDetails returns every account, most recent opening date first.
func (c *Compat) GetAllAccountDetails() []model.Account {
	accounts, err := c.store.GetAllAccountDetails(c.ctx)
	if !c.ok(err, "list accounts") {
		return []model.Account{}
	}
	return accounts
}

// AddTransactionType reports whether the type was inserted.
func (c *Compat) AddTransactionType(name string) bool {
	return c.ok(c.store.AddTransactionType(c.ctx, name), "add transaction type")
}

// TransactionTypeExists reports whether the type exists.
func (c *Compat) TransactionTypeExists(name string) bool {
	return c.store.TransactionTypeExists(c.ctx, name)
}

// GetAllTransactionTypes returns every transaction type name.
func (c *Compat) GetAllTransactionTypes() []string {
	types, err := c.store.GetAllTransactionTypes(c.ctx)
	if !c.ok(err, "list transaction types") {
		return []string{}
	}
	return types
}

// SaveTransaction reports whether the transaction was inserted.
func (c *Compat) SaveTransaction(accountName, transactionType string, date time.Time,
	description string, paymentAmount, depositAmount decimal.Decimal,
) bool {
	return c.ok(c.store.SaveTransaction(c.ctx, model.Transaction{
		AccountName:     accountName,
		TransactionType: transactionType,
		Date:            date,
		Description:     description,
		PaymentAmount:   paymentAmount,
		DepositAmount:   depositAmount,
	}), "save transaction")
}

// GetTransactions returns every transaction.
func (c *Compat) GetTransactions() []model.Transaction {
	txns, err := c.store.GetTransactions(c.ctx)
	if !c.ok(err, "list transactions") {
		return []model.Transaction{}
	}
	return txns
}

// ScheduleNameExists reports whether the schedule name is taken.
func (c *Compat) ScheduleNameExists(name string) bool {
	return c.store.ScheduleNameExists(c.ctx, name)
}

// SaveScheduledTransaction reports whether the scheduled transaction was inserted.
func (c *Compat) SaveScheduledTransaction(scheduleName, accountName, transactionType, frequency string,
	dueDate time.Time, paymentAmount decimal.Decimal,
) bool {
	return c.ok(c.store.SaveScheduledTransaction(c.ctx, model.ScheduledTransaction{
		ScheduleName:    scheduleName,
		AccountName:     accountName,
		TransactionType: transactionType,
		Frequency:       model.Frequency(frequency),
		DueDate:         dueDate,
		PaymentAmount:   paymentAmount,
	}), "save scheduled transaction")
}

// GetScheduledTransactions returns every scheduled transaction.
func (c *Compat) GetScheduledTransactions() []model.ScheduledTransaction {
	scheduled, err := c.store.GetScheduledTransactions(c.ctx)
	if !c.ok(err, "list scheduled transactions") {
		return []model.ScheduledTransaction{}
	}
	return scheduled
}

var _ service.Storage = (*SQLiteStorage)(nil)
