package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/forms"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `Create accounts, list them with their opening balances, and check whether a name is taken.`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(accountExistsCmd())

	return cmd
}

func addAccountCmd() *cobra.Command {
	var form forms.AccountForm

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new account",
		Long: `Create an account with an opening date and balance. Fields not given as
flags are prompted for.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				form.Name = args[0]
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return addAccount(ctx, store, newPrompter(cmd), cmd.OutOrStdout(), form)
			})
		},
	}

	cmd.Flags().StringVar(&form.OpeningDate, "opening-date", "", "Opening date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.OpeningBalance, "opening-balance", "", "Opening balance")

	return cmd
}

func addAccount(ctx context.Context, store service.Storage, p *cli.Prompter, out io.Writer, form forms.AccountForm) error {
	var err error
	if form.Name == "" {
		if form.Name, err = p.AskRequired(ctx, "Account name"); err != nil {
			return err
		}
	}
	if form.OpeningDate == "" {
		if form.OpeningDate, err = p.Ask(ctx, "Opening date", today()); err != nil {
			return err
		}
	}
	if form.OpeningBalance == "" {
		if form.OpeningBalance, err = p.Ask(ctx, "Opening balance", "0.00"); err != nil {
			return err
		}
	}

	acct, err := form.Validate()
	if err != nil {
		return err
	}

	if store.AccountExists(ctx, acct.Name) {
		return common.NewUserError("Account name already exists.", common.ErrDuplicateEntry)
	}

	if err := store.CreateAccount(ctx, acct.Name, acct.OpeningDate, acct.OpeningBalance); err != nil {
		return describeWriteError(err, "account")
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created account %q (opened %s, balance %s)",
		acct.Name, model.FormatDate(acct.OpeningDate), money(acct.OpeningBalance))))
	return nil
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Long:  `Display every account, most recently opened first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listAccounts(ctx, store, cmd.OutOrStdout())
			})
		},
	}
}

func listAccounts(ctx context.Context, store service.Storage, out io.Writer) error {
	accounts, err := store.GetAllAccountDetails(ctx)
	if err != nil {
		return fmt.Errorf("failed to get accounts: %w", err)
	}

	if len(accounts) == 0 {
		printEmpty(out, "No accounts found. Use 'checkbook accounts add' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.Name, model.FormatDate(a.OpeningDate), money(a.OpeningBalance)})
	}
	return printTable(out, []string{"Name", "Opened", "Opening Balance"}, rows)
}

func accountExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether an account exists",
		Long:  `Exit with status 0 when an account with exactly this name exists, 1 otherwise.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return reportExists(cmd.OutOrStdout(), "Account", args[0], store.AccountExists(ctx, args[0]))
			})
		},
	}
}

// reportExists prints the outcome of an existence check and returns
// common.ErrNotFound when the name is absent.
func reportExists(out io.Writer, kind, name string, found bool) error {
	if !found {
		return common.NewUserError(fmt.Sprintf("%s %q not found.", kind, name), common.ErrNotFound)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %q exists.", kind, name)))
	return nil
}
