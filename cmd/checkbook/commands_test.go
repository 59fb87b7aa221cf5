package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/forms"
	"github.com/Veraticus/checkbook/internal/storage"
	"github.com/Veraticus/checkbook/internal/testutil"
)

func prompter(input string) (*cli.Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return cli.NewPrompter(strings.NewReader(input), &out), &out
}

func TestAddAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("from flags", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.Fixture{})
		p, out := prompter("")

		err := addAccount(ctx, db.Storage, p, out, forms.AccountForm{
			Name:           "Checking",
			OpeningDate:    "2024-01-15",
			OpeningBalance: "1,000",
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), `Created account "Checking" (opened 2024-01-15, balance 1000.00)`)
		assert.True(t, db.Storage.AccountExists(ctx, "Checking"))
	})

	t.Run("prompts for missing fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.Fixture{})
		p, out := prompter("Savings\n2024-02-01\n250.75\n")

		require.NoError(t, addAccount(ctx, db.Storage, p, out, forms.AccountForm{}))

		accounts, err := db.Storage.GetAllAccountDetails(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "Savings", accounts[0].Name)
		assert.Equal(t, testutil.Date(2024, 2, 1), accounts[0].OpeningDate)
		assert.True(t, testutil.Amount("250.75").Equal(accounts[0].OpeningBalance))
	})

	t.Run("duplicate name", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("")

		err := addAccount(ctx, db.Storage, p, out, forms.AccountForm{
			Name: "Checking", OpeningDate: "2024-01-15", OpeningBalance: "1",
		})
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
		assert.Equal(t, "Account name already exists.", common.UserMessage(err))
		assert.Equal(t, []string{"Checking", "Savings"}, db.MustAccountNames())
	})

	t.Run("invalid balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.Fixture{})
		p, out := prompter("")

		err := addAccount(ctx, db.Storage, p, out, forms.AccountForm{
			Name: "Checking", OpeningDate: "2024-01-15", OpeningBalance: "lots",
		})
		assert.ErrorIs(t, err, forms.ErrInvalidAmount)
		assert.Empty(t, db.MustAccountNames())
	})

	t.Run("storage unavailable", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.Fixture{})
		require.NoError(t, db.Storage.Close())
		p, out := prompter("")

		err := addAccount(ctx, db.Storage, p, out, forms.AccountForm{
			Name: "Checking", OpeningDate: "2024-01-15", OpeningBalance: "1",
		})
		assert.ErrorIs(t, err, common.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, common.ErrDuplicateEntry)
		assert.Equal(t, "The database is unavailable. Check that the file exists and is writable.", common.UserMessage(err))
	})
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicLedger())

	var out bytes.Buffer
	require.NoError(t, listAccounts(ctx, db.Storage, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Savings")
	assert.Contains(t, lines[2], "5000.00")
	assert.Contains(t, lines[3], "Checking")
}

func TestListAccounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.Fixture{})

	var out bytes.Buffer
	require.NoError(t, listAccounts(context.Background(), db.Storage, &out))
	assert.Contains(t, out.String(), "No accounts found.")
}

func TestAddTransactionType(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicLedger())

	p, out := prompter("  Utilities \n")
	require.NoError(t, addTransactionType(ctx, db.Storage, p, out, forms.TransactionTypeForm{}))
	assert.True(t, db.Storage.TransactionTypeExists(ctx, "Utilities"))

	p, out = prompter("")
	err := addTransactionType(ctx, db.Storage, p, out, forms.TransactionTypeForm{Name: "Groceries"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.Equal(t, "Transaction type already exists.", common.UserMessage(err))

	var list bytes.Buffer
	require.NoError(t, listTransactionTypes(ctx, db.Storage, &list))
	assert.Contains(t, list.String(), "Utilities")
}

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("choose existing account and type", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("1\n1\n2024-03-05\nBread\n3.25\n")

		require.NoError(t, addTransaction(ctx, db.Storage, p, out, forms.TransactionForm{}))
		assert.Contains(t, out.String(), "[2] Savings")
		assert.NotContains(t, out.String(), "does not exist")

		txns, err := db.Storage.GetTransactions(ctx)
		require.NoError(t, err)
		last := txns[len(txns)-1]
		assert.Equal(t, "Checking", last.AccountName)
		assert.Equal(t, "Groceries", last.TransactionType)
		assert.Equal(t, "Bread", last.Description)
		assert.Equal(t, testutil.Date(2024, 3, 5), last.Date)
		assert.True(t, testutil.Amount("3.25").Equal(last.PaymentAmount))
		assert.True(t, last.DepositAmount.IsZero())
	})

	t.Run("deposit prompt when payment is blank", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("\n40\n")

		err := addTransaction(ctx, db.Storage, p, out, forms.TransactionForm{
			AccountName: "Savings", TransactionType: "Salary", Date: "2024-03-01", Description: "Refund",
		})
		require.NoError(t, err)

		txns, err := db.Storage.GetTransactions(ctx)
		require.NoError(t, err)
		assert.True(t, testutil.Amount("40").Equal(txns[len(txns)-1].DepositAmount))
	})

	t.Run("unknown account is saved with a warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("")

		err := addTransaction(ctx, db.Storage, p, out, forms.TransactionForm{
			AccountName: "Brokerage", TransactionType: "Groceries", Date: "2024-03-01",
			Description: "Snacks", Payment: "2",
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), `Account "Brokerage" does not exist.`)
	})

	t.Run("unknown account rejected in strict mode", func(t *testing.T) {
		db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
			Fixture:          testutil.BasicLedger(),
			StrictReferences: true,
		})
		p, out := prompter("")

		err := addTransaction(ctx, db.Storage, p, out, forms.TransactionForm{
			AccountName: "Brokerage", TransactionType: "Groceries", Date: "2024-03-01",
			Description: "Snacks", Payment: "2",
		})
		assert.ErrorIs(t, err, common.ErrMissingReference)
		assert.Equal(t, "The transaction names an account or transaction type that does not exist.", common.UserMessage(err))
	})
}

func TestListTransactions_FilterByAccount(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.BasicLedger()
	txn := fixture.Transactions[0]
	txn.AccountName = "Savings"
	txn.Description = "Interest"
	fixture.Transactions = append(fixture.Transactions, txn)
	db := testutil.SetupTestDB(t, fixture)

	var out bytes.Buffer
	require.NoError(t, listTransactions(ctx, db.Storage, &out, "Savings"))
	assert.Contains(t, out.String(), "Interest")
	assert.NotContains(t, out.String(), "Milk")

	out.Reset()
	require.NoError(t, listTransactions(ctx, db.Storage, &out, "Wallet"))
	assert.Contains(t, out.String(), "No transactions found.")
}

func TestAddSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate schedule name", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("")

		err := addSchedule(ctx, db.Storage, p, out, forms.ScheduleForm{
			ScheduleName: "Rent", AccountName: "Checking", TransactionType: "Housing",
			Frequency: "monthly", DueDate: "2024-04-01", Amount: "1200",
		})
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
		assert.Equal(t, "Schedule name already exists.", common.UserMessage(err))
	})

	t.Run("schedule names are case sensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("")

		err := addSchedule(ctx, db.Storage, p, out, forms.ScheduleForm{
			ScheduleName: "rent", AccountName: "Checking", TransactionType: "Housing",
			Frequency: "monthly", DueDate: "2024-04-01", Amount: "1200",
		})
		require.NoError(t, err)
		assert.True(t, db.Storage.ScheduleNameExists(ctx, "rent"))
	})

	t.Run("prompts with frequency choice", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("Gym\n1\n2\n2\n2024-03-10\n45\n")

		require.NoError(t, addSchedule(ctx, db.Storage, p, out, forms.ScheduleForm{}))
		assert.Contains(t, out.String(), "[4] monthly")

		schedules, err := db.Storage.GetScheduledTransactions(ctx)
		require.NoError(t, err)
		last := schedules[len(schedules)-1]
		assert.Equal(t, "Gym", last.ScheduleName)
		assert.Equal(t, "Checking", last.AccountName)
		assert.Equal(t, "Salary", last.TransactionType)
		assert.Equal(t, "weekly", string(last.Frequency))
		assert.Equal(t, testutil.Date(2024, 3, 10), last.DueDate)
	})

	t.Run("free text frequency warns", func(t *testing.T) {
		db := testutil.SetupTestDB(t, testutil.BasicLedger())
		p, out := prompter("")

		err := addSchedule(ctx, db.Storage, p, out, forms.ScheduleForm{
			ScheduleName: "Water", AccountName: "Checking", TransactionType: "Housing",
			Frequency: "Every Other Month", DueDate: "2024-04-01", Amount: "60",
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), `Frequency "every other month" is not a standard frequency`)
	})

	var list bytes.Buffer
	db := testutil.SetupTestDB(t, testutil.BasicLedger())
	require.NoError(t, listSchedules(ctx, db.Storage, &list))
	assert.Contains(t, list.String(), "Rent")
	assert.Contains(t, list.String(), "2024-03-01")
	assert.Contains(t, list.String(), "1200.00")
}

func TestReportExists(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, reportExists(&out, "Account", "Checking", true))
	assert.Contains(t, out.String(), `Account "Checking" exists.`)

	err := reportExists(&out, "Schedule", "rent", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, `Schedule "rent" not found.`, common.UserMessage(err))
}

func TestDescribeWriteError(t *testing.T) {
	tests := []struct {
		err     error
		name    string
		wantMsg string
	}{
		{
			name:    "duplicate",
			err:     &storage.Error{Op: "create account", Kind: storage.KindDuplicate, Err: errors.New("exists")},
			wantMsg: "Account already exists.",
		},
		{
			name:    "unavailable",
			err:     &storage.Error{Op: "create account", Kind: storage.KindStorageUnavailable, Err: errors.New("disk")},
			wantMsg: "The database is unavailable. Check that the file exists and is writable.",
		},
		{
			name:    "missing reference",
			err:     &storage.Error{Op: "create account", Kind: storage.KindMissingReference, Err: errors.New("ref")},
			wantMsg: "The account names an account or transaction type that does not exist.",
		},
		{
			name:    "unknown",
			err:     errors.New("boom"),
			wantMsg: "Failed to save account.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := describeWriteError(tt.err, "account")
			assert.Equal(t, tt.wantMsg, common.UserMessage(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRootCommandTree(t *testing.T) {
	want := map[string][]string{
		"accounts":     {"add", "exists", "list"},
		"types":        {"add", "list"},
		"transactions": {"add", "list"},
		"schedules":    {"add", "exists", "list"},
	}

	for parent, children := range want {
		cmd, _, err := rootCmd.Find([]string{parent})
		require.NoError(t, err, parent)
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		assert.ElementsMatch(t, children, names, parent)
	}

	for _, name := range []string{"import-ofx", "browse", "migrate", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "db", "log-level", "log-format", "strict-references"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)
	assert.Equal(t, "checkbook dev\n", out.String())
}
