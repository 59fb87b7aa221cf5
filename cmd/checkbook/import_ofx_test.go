package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/ofx"
	"github.com/Veraticus/checkbook/internal/storage"
	"github.com/Veraticus/checkbook/internal/testutil"
)

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024011001
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func writeStatement(t *testing.T) string {
	t.Helper()
	return writeStatementAs(t, "checking.ofx", statementOFX)
}

func writeStatementAs(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportOFX_DryRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	path := writeStatement(t)

	var out bytes.Buffer
	summary, err := importOFX(ctx, db.Storage, &out, []string{path}, importOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Parsed)
	assert.Zero(t, summary.Saved)
	assert.Contains(t, out.String(), "Dry run: 2 transactions would be imported.")
	assert.Contains(t, out.String(), "STARBUCKS STORE #1234")
	assert.Contains(t, out.String(), "Statement accounts: 1234567890")
	assert.Equal(t, []string{"1234567890"}, summary.StatementAccounts)

	txns, err := db.Storage.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.Empty(t, db.MustAccountNames())
}

func TestImportOFX_RequiresAccount(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	path := writeStatement(t)

	var out bytes.Buffer
	_, err := importOFX(context.Background(), db.Storage, &out, []string{path}, importOptions{Account: "Checking"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, common.UserMessage(err), `Account "Checking" does not exist.`)
	assert.Contains(t, common.UserMessage(err), "The statements are for account IDs: 1234567890.")
}

func TestImportOFX_CreatesAccountAndTypes(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	path := writeStatement(t)

	var out bytes.Buffer
	summary, err := importOFX(ctx, db.Storage, &out, []string{path}, importOptions{
		Account:       "Checking",
		CreateAccount: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, []string{"Checking"}, summary.CreatedAccounts)
	assert.Equal(t, []string{ofx.TypeCheck, ofx.TypeUncategorized}, summary.CreatedTypes)
	assert.Contains(t, out.String(), "Imported 2 transactions from 1 files.")

	accounts, err := db.Storage.GetAllAccountDetails(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, testutil.Date(2024, 1, 10), accounts[0].OpeningDate)
	assert.True(t, accounts[0].OpeningBalance.IsZero())

	txns, err := db.Storage.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "STARBUCKS STORE #1234", txns[0].Description)
	assert.True(t, testutil.Amount("25.50").Equal(txns[0].PaymentAmount))
	assert.Equal(t, ofx.TypeCheck, txns[1].TransactionType)
}

func TestImportOFX_ExistingTypeOverride(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicLedger())
	path := writeStatement(t)

	var out bytes.Buffer
	summary, err := importOFX(ctx, db.Storage, &out, []string{path}, importOptions{
		Account:         "Checking",
		TransactionType: "Groceries",
	})
	require.NoError(t, err)
	assert.Empty(t, summary.CreatedAccounts)
	assert.Empty(t, summary.CreatedTypes)
	assert.Equal(t, 2, summary.Saved)
}

func TestImportOFX_SkipsOverlappingLines(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	first := writeStatementAs(t, "jan.qfx", statementOFX)
	second := writeStatementAs(t, "jan-again.qfx", statementOFX)

	var out bytes.Buffer
	summary, err := importOFX(ctx, db.Storage, &out, []string{first, second}, importOptions{
		Account:       "Checking",
		CreateAccount: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Parsed)
	assert.Equal(t, 2, summary.Duplicates)
	assert.Equal(t, 2, summary.Saved)
	assert.Contains(t, out.String(), "Skipped 2 duplicate lines.")

	txns, err := db.Storage.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestRequireAccount(t *testing.T) {
	named := ofx.Entry{Transaction: model.Transaction{AccountName: "Checking"}}
	assert.NoError(t, requireAccount("jan.ofx", named))

	for _, name := range []string{"", "   "} {
		err := requireAccount("/tmp/jan.ofx", ofx.Entry{Transaction: model.Transaction{AccountName: name}})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMissingReference)
		assert.Equal(t, "jan.ofx has no account ID. Choose an account with --account.", common.UserMessage(err))
	}
}

func TestImportOFX_UnreadableFile(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.Fixture{})
	path := filepath.Join(t.TempDir(), "broken.ofx")
	require.NoError(t, os.WriteFile(path, []byte("not an ofx file"), 0o600))

	var out bytes.Buffer
	_, err := importOFX(context.Background(), db.Storage, &out, []string{path}, importOptions{})
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "as an OFX statement")
}

func TestImportOFX_Cancelled(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BasicLedger())
	path := writeStatement(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := importOFX(ctx, db.Storage, &out, []string{path}, importOptions{Account: "Checking"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.qfx", "b.qfx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx")})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = expandFiles([]string{filepath.Join(dir, "*.ofx")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	var out bytes.Buffer
	require.NoError(t, runMigrate(ctx, &out, path, true))
	assert.Contains(t, out.String(), "Current version: 0")

	out.Reset()
	require.NoError(t, runMigrate(ctx, &out, path, false))
	assert.Contains(t, out.String(), "Database is at schema version 3.")

	out.Reset()
	require.NoError(t, runMigrate(ctx, &out, path, true))
	assert.Contains(t, out.String(), "Current version: 3")

	store, err := storage.Open(ctx, path, storage.Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, version)
}
