package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/cli"
	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/storage"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates on startup; this command does it explicitly and can
report the schema version without changing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if appConfig == nil {
				return fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runMigrate(ctx, cmd.OutOrStdout(), appConfig.Database.Path, status)
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, dbPath string, statusOnly bool) error {
	store, err := storage.NewSQLiteStorage(dbPath, storage.Options{})
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Could not open the database at %s.", dbPath), err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if statusOnly {
		fmt.Fprintln(out, cli.RenderBox("Database Migration Status", fmt.Sprintf(
			"Database: %s\nCurrent version: %d\nLatest version: %d",
			dbPath, current, storage.ExpectedSchemaVersion)))
		return nil
	}

	slog.Info("Running database migrations", "database", dbPath, "from_version", current)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d.", storage.ExpectedSchemaVersion)))
	return nil
}
