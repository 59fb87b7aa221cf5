package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/model"
	"github.com/Veraticus/checkbook/internal/service"
	"github.com/Veraticus/checkbook/internal/storage"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
	}

	store, err := storage.Open(ctx, appConfig.Database.Path, storage.Options{
		StrictReferences: appConfig.Database.StrictReferences,
	})
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("Could not open the database at %s.", appConfig.Database.Path), err)
	}
	return store, nil
}

// withStorage runs fn against the configured database and closes it afterwards.
func withStorage(cmd *cobra.Command, fn func(ctx context.Context, store service.Storage) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, store)
}

func newPrompter(cmd *cobra.Command) *cli.Prompter {
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// describeWriteError turns a failed write into a message that says whether
// the record was a duplicate, referenced something missing, or could not be
// stored at all.
func describeWriteError(err error, what string) error {
	switch {
	case errors.Is(err, common.ErrDuplicateEntry):
		return common.NewUserError(fmt.Sprintf("%s already exists.", capitalize(what)), err)
	case errors.Is(err, common.ErrMissingReference):
		return common.NewUserError(
			fmt.Sprintf("The %s names an account or transaction type that does not exist.", what), err)
	case errors.Is(err, common.ErrStorageUnavailable):
		return common.NewUserError(
			"The database is unavailable. Check that the file exists and is writable.", err)
	default:
		return common.NewUserError(fmt.Sprintf("Failed to save %s.", what), err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func today() string {
	return model.FormatDate(time.Now())
}

// chooseOrAsk offers existing names as numbered choices, falling back to a
// free-text prompt when there are none.
func chooseOrAsk(ctx context.Context, p *cli.Prompter, label string, options []string) (string, error) {
	if len(options) == 0 {
		return p.AskRequired(ctx, label)
	}
	return p.Choose(ctx, label, options, "")
}

// printTable writes an aligned table with a styled header row.
func printTable(out io.Writer, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func printEmpty(out io.Writer, message string) {
	fmt.Fprintln(out, cli.InfoStyle.Render(message))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
