package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/ofx"
	"github.com/Veraticus/checkbook/internal/service"
)

// importOptions are the import-ofx flags.
type importOptions struct {
	Account         string
	TransactionType string
	DryRun          bool
	CreateAccount   bool
}

// importSummary reports what an import did.
type importSummary struct {
	StatementAccounts []string
	CreatedAccounts   []string
	CreatedTypes      []string
	Files             int
	Parsed            int
	Duplicates        int
	Saved             int
}

func importOFXCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Debits become payments and credits become deposits. Without --type each line's
transaction type is derived from its OFX transaction kind; missing types are created.

Examples:
  # Preview a statement
  checkbook import-ofx --dry-run ~/Downloads/checking_jan_2024.qfx

  # Import into an existing account
  checkbook import-ofx --account Checking ~/Downloads/checking_*.qfx

  # Import and create the account if needed
  checkbook import-ofx --account Visa --create-account ~/Downloads/visa.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				ctx = handler.HandleInterrupts(ctx)
				_, err := importOFX(ctx, store, cmd.OutOrStdout(), files, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Account, "account", "a", "", "Account to import into (default: the statement's account ID)")
	cmd.Flags().StringVarP(&opts.TransactionType, "type", "t", "", "Transaction type for every imported line")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "d", false, "Preview import without saving")
	cmd.Flags().BoolVar(&opts.CreateAccount, "create-account", false, "Create the account when it does not exist")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import.", common.ErrNotFound)
	}
	return files, nil
}

func importOFX(ctx context.Context, store service.Storage, out io.Writer, files []string, opts importOptions) (importSummary, error) {
	summary := importSummary{Files: len(files)}

	parser := ofx.NewParser()
	parseOpts := ofx.Options{AccountName: opts.Account, TransactionType: opts.TransactionType}

	// Exports with overlapping date ranges repeat lines; keep the first.
	seen := make(map[string]bool)
	statementAccounts := make(map[string]bool)
	var txns []model.Transaction
	for _, path := range files {
		parsed, accounts, err := parseOFXFile(ctx, parser, path, parseOpts)
		if err != nil {
			return summary, err
		}
		for _, acct := range accounts {
			statementAccounts[acct] = true
		}
		slog.Info("Parsed OFX file", "file", filepath.Base(path), "transactions", len(parsed), "accounts", accounts)

		for _, entry := range parsed {
			summary.Parsed++
			if err := requireAccount(path, entry); err != nil {
				return summary, err
			}
			key := entry.Key()
			if seen[key] {
				summary.Duplicates++
				slog.Debug("Skipping duplicate OFX transaction", "file", filepath.Base(path), "fitid", entry.FITID)
				continue
			}
			seen[key] = true
			txns = append(txns, entry.Transaction)
		}
	}
	summary.StatementAccounts = sortedKeys(statementAccounts)

	if len(txns) == 0 {
		printEmpty(out, "No transactions found in the given files.")
		return summary, nil
	}

	if opts.DryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported.", len(txns))))
		if len(summary.StatementAccounts) > 0 {
			fmt.Fprintln(out, cli.SubtleStyle.Render("Statement accounts: "+strings.Join(summary.StatementAccounts, ", ")))
		}
		if summary.Duplicates > 0 {
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d duplicate lines skipped.", summary.Duplicates)))
		}
		return summary, printImportPreview(out, txns)
	}

	created, err := ensureAccounts(ctx, store, txns, opts.CreateAccount, summary.StatementAccounts)
	summary.CreatedAccounts = created
	if err != nil {
		return summary, err
	}

	summary.CreatedTypes, err = ensureTypes(ctx, store, txns)
	if err != nil {
		return summary, err
	}

	bar := cli.NewProgressBar(out, len(txns), "Importing transactions")
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("import stopped after %d transactions: %w", summary.Saved, err)
		}
		if err := store.SaveTransaction(ctx, txn); err != nil {
			return summary, describeWriteError(err, "transaction")
		}
		summary.Saved++
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions from %d files.", summary.Saved, summary.Files)))
	if summary.Duplicates > 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d duplicate lines.", summary.Duplicates)))
	}
	return summary, nil
}

// requireAccount rejects a line that resolved to no account, which happens
// when the statement carries no account ID and --account was not given.
func requireAccount(path string, entry ofx.Entry) error {
	if strings.TrimSpace(entry.AccountName) != "" {
		return nil
	}
	return common.NewUserError(
		fmt.Sprintf("%s has no account ID. Choose an account with --account.", filepath.Base(path)),
		common.ErrMissingReference)
}

// parseOFXFile returns the file's statement lines and the account IDs its
// statements are for.
func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string, opts ofx.Options) ([]ofx.Entry, []string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("Could not open %s.", path), err)
	}

	accounts, err := parser.GetAccounts(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("Could not read %s as an OFX statement.", path), err)
	}

	entries, err := parser.ParseEntries(ctx, bytes.NewReader(data), opts)
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("Could not read %s as an OFX statement.", path), err)
	}
	return entries, accounts, nil
}

// ensureAccounts checks every account the transactions name. Missing
// accounts are created, opened on their earliest transaction date with a zero
// balance, when create is set.
func ensureAccounts(ctx context.Context, store service.Storage, txns []model.Transaction, create bool, statementAccounts []string) ([]string, error) {
	earliest := make(map[string]time.Time)
	for _, t := range txns {
		if d, ok := earliest[t.AccountName]; !ok || t.Date.Before(d) {
			earliest[t.AccountName] = t.Date
		}
	}

	var created []string
	for _, name := range sortedKeys(earliest) {
		if store.AccountExists(ctx, name) {
			continue
		}
		if !create {
			msg := fmt.Sprintf("Account %q does not exist. Pass --create-account or choose an account with --account.", name)
			if len(statementAccounts) > 0 {
				msg += fmt.Sprintf(" The statements are for account IDs: %s.", strings.Join(statementAccounts, ", "))
			}
			return created, common.NewUserError(msg, common.ErrNotFound)
		}
		if err := store.CreateAccount(ctx, name, earliest[name], decimal.Zero); err != nil {
			return created, describeWriteError(err, "account")
		}
		slog.Info("Created account for import", "account", name)
		created = append(created, name)
	}
	return created, nil
}

// ensureTypes adds every transaction type the transactions use that is not
// stored yet.
func ensureTypes(ctx context.Context, store service.Storage, txns []model.Transaction) ([]string, error) {
	seen := make(map[string]bool)
	for _, t := range txns {
		seen[t.TransactionType] = true
	}

	var created []string
	for _, name := range sortedKeys(seen) {
		if store.TransactionTypeExists(ctx, name) {
			continue
		}
		if err := store.AddTransactionType(ctx, name); err != nil {
			if errors.Is(err, common.ErrDuplicateEntry) {
				continue
			}
			return created, describeWriteError(err, "transaction type")
		}
		created = append(created, name)
	}
	return created, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printImportPreview(out io.Writer, txns []model.Transaction) error {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			model.FormatDate(t.Date),
			t.AccountName,
			t.TransactionType,
			t.Description,
			money(t.PaymentAmount),
			money(t.DepositAmount),
		})
	}
	return printTable(out, []string{"Date", "Account", "Type", "Description", "Payment", "Deposit"}, rows)
}
