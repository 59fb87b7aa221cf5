package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/forms"
	"github.com/Veraticus/checkbook/internal/service"
)

func typesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "types",
		Aliases: []string{"transaction-types"},
		Short:   "Manage transaction types",
		Long:    `Add and list the labels used to classify transactions, such as "Groceries" or "Salary".`,
	}

	cmd.AddCommand(addTypeCmd())
	cmd.AddCommand(listTypesCmd())

	return cmd
}

func addTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Add a transaction type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form forms.TransactionTypeForm
			if len(args) == 1 {
				form.Name = args[0]
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return addTransactionType(ctx, store, newPrompter(cmd), cmd.OutOrStdout(), form)
			})
		},
	}
}

func addTransactionType(ctx context.Context, store service.Storage, p *cli.Prompter, out io.Writer, form forms.TransactionTypeForm) error {
	if form.Name == "" {
		name, err := p.AskRequired(ctx, "Transaction type")
		if err != nil {
			return err
		}
		form.Name = name
	}

	txType, err := form.Validate()
	if err != nil {
		return err
	}

	if store.TransactionTypeExists(ctx, txType.Name) {
		return common.NewUserError("Transaction type already exists.", common.ErrDuplicateEntry)
	}

	if err := store.AddTransactionType(ctx, txType.Name); err != nil {
		return describeWriteError(err, "transaction type")
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added transaction type %q", txType.Name)))
	return nil
}

func listTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all transaction types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listTransactionTypes(ctx, store, cmd.OutOrStdout())
			})
		},
	}
}

func listTransactionTypes(ctx context.Context, store service.Storage, out io.Writer) error {
	types, err := store.GetAllTransactionTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transaction types: %w", err)
	}

	if len(types) == 0 {
		printEmpty(out, "No transaction types found. Use 'checkbook types add' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(types))
	for _, name := range types {
		rows = append(rows, []string{name})
	}
	return printTable(out, []string{"Transaction Type"}, rows)
}
