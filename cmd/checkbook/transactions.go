package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/forms"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and list transactions",
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var form forms.TransactionForm

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a payment or deposit against an account. Fields not given as flags
are prompted for; existing accounts and types are offered as choices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return addTransaction(ctx, store, newPrompter(cmd), cmd.OutOrStdout(), form)
			})
		},
	}

	cmd.Flags().StringVar(&form.AccountName, "account", "", "Account name")
	cmd.Flags().StringVar(&form.TransactionType, "type", "", "Transaction type")
	cmd.Flags().StringVar(&form.Date, "date", "", "Transaction date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Description, "description", "", "Description")
	cmd.Flags().StringVar(&form.Payment, "payment", "", "Payment amount")
	cmd.Flags().StringVar(&form.Deposit, "deposit", "", "Deposit amount")

	return cmd
}

func addTransaction(ctx context.Context, store service.Storage, p *cli.Prompter, out io.Writer, form forms.TransactionForm) error {
	if err := promptTransaction(ctx, store, p, &form); err != nil {
		return err
	}

	txn, err := form.Validate()
	if err != nil {
		return err
	}

	warnUnknownReferences(ctx, store, out, txn.AccountName, txn.TransactionType)

	if err := store.SaveTransaction(ctx, txn); err != nil {
		return describeWriteError(err, "transaction")
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %s %q on %s (%s)",
		txn.TransactionType, txn.Description, txn.AccountName, model.FormatDate(txn.Date))))
	return nil
}

func promptTransaction(ctx context.Context, store service.Storage, p *cli.Prompter, form *forms.TransactionForm) error {
	var err error
	if form.AccountName == "" {
		names, listErr := store.GetAllAccountNames(ctx)
		if listErr != nil {
			slog.Warn("Failed to list accounts for prompt", "error", listErr)
		}
		if form.AccountName, err = chooseOrAsk(ctx, p, "Account", names); err != nil {
			return err
		}
	}
	if form.TransactionType == "" {
		types, listErr := store.GetAllTransactionTypes(ctx)
		if listErr != nil {
			slog.Warn("Failed to list transaction types for prompt", "error", listErr)
		}
		if form.TransactionType, err = chooseOrAsk(ctx, p, "Transaction type", types); err != nil {
			return err
		}
	}
	if form.Date == "" {
		if form.Date, err = p.Ask(ctx, "Date", today()); err != nil {
			return err
		}
	}
	if form.Description == "" {
		if form.Description, err = p.AskRequired(ctx, "Description"); err != nil {
			return err
		}
	}
	if form.Payment == "" && form.Deposit == "" {
		if form.Payment, err = p.Ask(ctx, "Payment amount", ""); err != nil {
			return err
		}
		if form.Payment == "" {
			if form.Deposit, err = p.Ask(ctx, "Deposit amount", ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// warnUnknownReferences points out names that do not match a stored account
// or type. The write still goes ahead unless strict references are enabled.
func warnUnknownReferences(ctx context.Context, store service.Storage, out io.Writer, account, txType string) {
	if !store.AccountExists(ctx, account) {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Account %q does not exist.", account)))
	}
	if !store.TransactionTypeExists(ctx, txType) {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Transaction type %q does not exist.", txType)))
	}
}

func listTransactionsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded transactions",
		Long:  `Display transactions in the order they were recorded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listTransactions(ctx, store, cmd.OutOrStdout(), account)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Only show transactions for this account")

	return cmd
}

func listTransactions(ctx context.Context, store service.Storage, out io.Writer, account string) error {
	txns, err := store.GetTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transactions: %w", err)
	}

	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		if account != "" && t.AccountName != account {
			continue
		}
		rows = append(rows, []string{
			model.FormatDate(t.Date),
			t.AccountName,
			t.TransactionType,
			t.Description,
			money(t.PaymentAmount),
			money(t.DepositAmount),
		})
	}

	if len(rows) == 0 {
		printEmpty(out, "No transactions found. Use 'checkbook transactions add' to record one.")
		return nil
	}
	return printTable(out, []string{"Date", "Account", "Type", "Description", "Payment", "Deposit"}, rows)
}
