package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/forms"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
)

func schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage scheduled transactions",
		Long: `Store definitions of recurring payments. Schedules are records only;
nothing is posted automatically.`,
	}

	cmd.AddCommand(addScheduleCmd())
	cmd.AddCommand(listSchedulesCmd())
	cmd.AddCommand(scheduleExistsCmd())

	return cmd
}

func addScheduleCmd() *cobra.Command {
	var form forms.ScheduleForm

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a scheduled transaction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				form.ScheduleName = args[0]
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return addSchedule(ctx, store, newPrompter(cmd), cmd.OutOrStdout(), form)
			})
		},
	}

	cmd.Flags().StringVar(&form.AccountName, "account", "", "Account name")
	cmd.Flags().StringVar(&form.TransactionType, "type", "", "Transaction type")
	cmd.Flags().StringVar(&form.Frequency, "frequency", "", "How often it recurs (daily, weekly, biweekly, monthly, quarterly, yearly)")
	cmd.Flags().StringVar(&form.DueDate, "due-date", "", "Next due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Amount, "amount", "", "Payment amount")

	return cmd
}

func addSchedule(ctx context.Context, store service.Storage, p *cli.Prompter, out io.Writer, form forms.ScheduleForm) error {
	if err := promptSchedule(ctx, store, p, &form); err != nil {
		return err
	}

	st, err := form.Validate()
	if err != nil {
		return err
	}

	if store.ScheduleNameExists(ctx, st.ScheduleName) {
		return common.NewUserError("Schedule name already exists.", common.ErrDuplicateEntry)
	}
	if !st.Frequency.IsKnown() {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Frequency %q is not a standard frequency; storing it as written.", st.Frequency)))
	}
	warnUnknownReferences(ctx, store, out, st.AccountName, st.TransactionType)

	if err := store.SaveScheduledTransaction(ctx, st); err != nil {
		return describeWriteError(err, "schedule")
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Scheduled %q: %s %s from %s, next due %s",
		st.ScheduleName, st.Frequency, money(st.PaymentAmount), st.AccountName, model.FormatDate(st.DueDate))))
	return nil
}

func promptSchedule(ctx context.Context, store service.Storage, p *cli.Prompter, form *forms.ScheduleForm) error {
	var err error
	if form.ScheduleName == "" {
		if form.ScheduleName, err = p.AskRequired(ctx, "Schedule name"); err != nil {
			return err
		}
	}
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
	if form.Frequency == "" {
		options := make([]string, len(model.KnownFrequencies))
		for i, f := range model.KnownFrequencies {
			options[i] = string(f)
		}
		if form.Frequency, err = p.Choose(ctx, "Frequency", options, string(model.FrequencyMonthly)); err != nil {
			return err
		}
	}
	if form.DueDate == "" {
		if form.DueDate, err = p.Ask(ctx, "Next due date", today()); err != nil {
			return err
		}
	}
	if form.Amount == "" {
		if form.Amount, err = p.AskRequired(ctx, "Payment amount"); err != nil {
			return err
		}
	}
	return nil
}

func listSchedulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listSchedules(ctx, store, cmd.OutOrStdout())
			})
		},
	}
}

func listSchedules(ctx context.Context, store service.Storage, out io.Writer) error {
	schedules, err := store.GetScheduledTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get scheduled transactions: %w", err)
	}

	if len(schedules) == 0 {
		printEmpty(out, "No scheduled transactions found. Use 'checkbook schedules add' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, []string{
			s.ScheduleName,
			s.AccountName,
			s.TransactionType,
			string(s.Frequency),
			model.FormatDate(s.DueDate),
			money(s.PaymentAmount),
		})
	}
	return printTable(out, []string{"Schedule", "Account", "Type", "Frequency", "Due", "Amount"}, rows)
}

func scheduleExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether a schedule name is taken",
		Long:  `Exit with status 0 when a scheduled transaction with exactly this name exists, 1 otherwise.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return reportExists(cmd.OutOrStdout(), "Schedule", args[0], store.ScheduleNameExists(ctx, args[0]))
			})
		},
	}
}
