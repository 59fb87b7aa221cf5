package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/storage"
)

func backupCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, restore and delete database backups",
		Long: `Backups are full copies of the database file, written next to it in a
"backups" directory unless --dir says otherwise. Restore one before a risky
import goes wrong, or to undo a batch of mistaken entries.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "backups directory (default: <database dir>/backups)")

	var description string
	create := &cobra.Command{
		Use:   "create [tag]",
		Short: "Back up the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}
			return withBackups(cmd, dir, func(ctx context.Context, b *storage.Backups) error {
				return createBackup(ctx, b, cmd.OutOrStdout(), tag, description)
			})
		},
	}
	create.Flags().StringVarP(&description, "description", "m", "", "note stored with the backup")

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, dir, func(_ context.Context, b *storage.Backups) error {
				return listBackups(b, cmd.OutOrStdout())
			})
		},
	}

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <tag>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, dir, func(ctx context.Context, b *storage.Backups) error {
				return restoreBackup(ctx, b, newPrompter(cmd), cmd.OutOrStdout(), args[0], yes)
			})
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	del := &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, dir, func(_ context.Context, b *storage.Backups) error {
				return deleteBackup(b, cmd.OutOrStdout(), args[0])
			})
		},
	}

	cmd.AddCommand(create, list, restore, del)
	return cmd
}

// withBackups opens the configured database for the duration of fn.
func withBackups(cmd *cobra.Command, dir string, fn func(context.Context, *storage.Backups) error) error {
	if appConfig == nil {
		return fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.Open(ctx, appConfig.Database.Path, storage.Options{})
	if err != nil {
		return common.NewUserError(
			fmt.Sprintf("Could not open the database at %s.", appConfig.Database.Path), err)
	}
	defer func() { _ = store.Close() }()

	backups, err := storage.NewBackups(store, dir)
	if err != nil {
		return describeBackupError(err, "")
	}
	return fn(ctx, backups)
}

func createBackup(ctx context.Context, b *storage.Backups, out io.Writer, tag, description string) error {
	info, err := b.Create(ctx, tag, description)
	if err != nil {
		return describeBackupError(err, tag)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created backup %q (%s).", info.Tag, formatSize(info.FileSize))))
	fmt.Fprintln(out, cli.SubtleStyle.Render(summarizeCounts(info.RowCounts)))
	return nil
}

func listBackups(b *storage.Backups, out io.Writer) error {
	backups, err := b.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		printEmpty(out, "No backups in "+b.Dir()+".")
		return nil
	}

	rows := make([][]string, 0, len(backups))
	for _, info := range backups {
		rows = append(rows, []string{
			info.Tag,
			info.CreatedAt.Local().Format("2006-01-02 15:04"),
			formatSize(info.FileSize),
			strconv.Itoa(info.RowCounts["accounts"]),
			strconv.Itoa(info.RowCounts["transactions"]),
			info.Description,
		})
	}
	return printTable(out, []string{"Tag", "Created", "Size", "Accounts", "Transactions", "Description"}, rows)
}

func restoreBackup(ctx context.Context, b *storage.Backups, p *cli.Prompter, out io.Writer, tag string, yes bool) error {
	info, err := b.Get(tag)
	if err != nil {
		return describeBackupError(err, tag)
	}

	if !yes {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
			"Restoring %q replaces the current database with the copy taken %s.",
			info.Tag, info.CreatedAt.Local().Format("2006-01-02 15:04"))))
		ok, err := p.Confirm(ctx, "Continue?", false)
		if err != nil {
			return err
		}
		if !ok {
			printEmpty(out, "Restore cancelled.")
			return nil
		}
	}

	if err := b.Restore(ctx, tag); err != nil {
		return describeBackupError(err, tag)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored backup %q.", tag)))
	return nil
}

func deleteBackup(b *storage.Backups, out io.Writer, tag string) error {
	if err := b.Delete(tag); err != nil {
		return describeBackupError(err, tag)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted backup %q.", tag)))
	return nil
}

func describeBackupError(err error, tag string) error {
	switch {
	case errors.Is(err, storage.ErrBackupNotFound):
		return common.NewUserError(fmt.Sprintf("Backup %q not found.", tag), err)
	case errors.Is(err, storage.ErrBackupExists):
		return common.NewUserError(fmt.Sprintf("Backup %q already exists.", tag), err)
	case errors.Is(err, storage.ErrInvalidBackupTag):
		return common.NewUserError("Backup tags cannot contain path separators or start with a dot.", err)
	case errors.Is(err, storage.ErrBackupCorrupted):
		return common.NewUserError(fmt.Sprintf("Backup %q is damaged and was not restored.", tag), err)
	case errors.Is(err, storage.ErrInMemoryDatabase):
		return common.NewUserError("An in-memory database cannot be backed up without --dir.", err)
	case errors.Is(err, common.ErrStorageUnavailable):
		return common.NewUserError(
			"The database is unavailable. Check that the file exists and is writable.", err)
	default:
		return err
	}
}

func summarizeCounts(counts map[string]int) string {
	return fmt.Sprintf("%d accounts, %d transaction types, %d transactions, %d scheduled transactions",
		counts["accounts"], counts["transaction_types"], counts["transactions"], counts["scheduled_transactions"])
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
