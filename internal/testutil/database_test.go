package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/storage"
)

func TestSetupTestDB_Empty(t *testing.T) {
	db := SetupTestDB(t, Fixture{})

	assert.Empty(t, db.MustAccountNames())
}

func TestSetupTestDB_BasicLedger(t *testing.T) {
	ctx := context.Background()
	db := SetupTestDB(t, BasicLedger())

	assert.Equal(t, []string{"Checking", "Savings"}, db.MustAccountNames())

	types, err := db.Storage.GetAllTransactionTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Salary", "Housing"}, types)

	txns, err := db.Storage.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "Milk", txns[0].Description)

	assert.True(t, db.Storage.ScheduleNameExists(ctx, "Rent"))
}

func TestSetupTestDB_StrictReferences(t *testing.T) {
	db := SetupTestDBWithOptions(t, TestDBOptions{
		Fixture:          BasicLedger(),
		StrictReferences: true,
	})

	txn := BasicLedger().Transactions[0]
	txn.AccountName = "Brokerage"
	err := db.Storage.SaveTransaction(context.Background(), txn)
	assert.ErrorIs(t, err, common.ErrMissingReference)
}

func TestSetupTestDB_CustomSetup(t *testing.T) {
	called := false
	db := SetupTestDBWithOptions(t, TestDBOptions{
		CustomSetup: func(ctx context.Context, store *storage.SQLiteStorage) error {
			called = true
			return store.CreateAccount(ctx, "Wallet", Date(2024, time.March, 3), Amount("20"))
		},
	})

	assert.True(t, called)
	assert.Equal(t, []string{"Wallet"}, db.MustAccountNames())
}

func TestFixtureSeed_Duplicate(t *testing.T) {
	db := SetupTestDB(t, BasicLedger())

	err := Fixture{Accounts: BasicLedger().Accounts[:1]}.Seed(context.Background(), db.Storage)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}
