package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
)

// Fixture is a set of records written to a test database in dependency
// order: accounts, transaction types, transactions, then schedules.
type Fixture struct {
	Accounts     []model.Account
	Types        []string
	Transactions []model.Transaction
	Schedules    []model.ScheduledTransaction
}

// Seed writes every record of f to store.
func (f Fixture) Seed(ctx context.Context, store service.Storage) error {
	for _, acct := range f.Accounts {
		if err := store.CreateAccount(ctx, acct.Name, acct.OpeningDate, acct.OpeningBalance); err != nil {
			return fmt.Errorf("account %q: %w", acct.Name, err)
		}
	}
	for _, name := range f.Types {
		if err := store.AddTransactionType(ctx, name); err != nil {
			return fmt.Errorf("transaction type %q: %w", name, err)
		}
	}
	for _, txn := range f.Transactions {
		if err := store.SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("transaction %q: %w", txn.Description, err)
		}
	}
	for _, st := range f.Schedules {
		if err := store.SaveScheduledTransaction(ctx, st); err != nil {
			return fmt.Errorf("schedule %q: %w", st.ScheduleName, err)
		}
	}
	return nil
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Amount parses a decimal literal and panics on malformed input.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// BasicLedger is a small, consistent ledger: two accounts, three types,
// three transactions and one monthly schedule.
func BasicLedger() Fixture {
	return Fixture{
		Accounts: []model.Account{
			{Name: "Checking", OpeningDate: Date(2024, time.January, 1), OpeningBalance: Amount("1000.00")},
			{Name: "Savings", OpeningDate: Date(2024, time.February, 1), OpeningBalance: Amount("5000.00")},
		},
		Types: []string{"Groceries", "Salary", "Housing"},
		Transactions: []model.Transaction{
			{
				Date:            Date(2024, time.January, 15),
				AccountName:     "Checking",
				TransactionType: "Groceries",
				Description:     "Milk",
				PaymentAmount:   Amount("4.50"),
			},
			{
				Date:            Date(2024, time.January, 31),
				AccountName:     "Checking",
				TransactionType: "Salary",
				Description:     "January pay",
				DepositAmount:   Amount("2500.00"),
			},
			{
				Date:            Date(2024, time.February, 1),
				AccountName:     "Checking",
				TransactionType: "Housing",
				Description:     "Rent",
				PaymentAmount:   Amount("1200.00"),
			},
		},
		Schedules: []model.ScheduledTransaction{
			{
				ScheduleName:    "Rent",
				AccountName:     "Checking",
				TransactionType: "Housing",
				Frequency:       model.FrequencyMonthly,
				DueDate:         Date(2024, time.March, 1),
				PaymentAmount:   Amount("1200.00"),
			},
		},
	}
}
