package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/service"
	"github.com/Veraticus/checkbook/internal/tui"
	"github.com/Veraticus/checkbook/internal/tui/themes"
)

func browseCmd() *cobra.Command {
	var themeName string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the register in a terminal UI",
		Long: `Open a read-only view of accounts, transactions, transaction types and schedules.

Keys: Tab/Shift+Tab switch views, r reloads, ? toggles help, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			theme, ok := themes.ByName(themeName)
			if !ok {
				return common.NewUserError("Unknown theme "+themeName+"; use default or mocha.", common.ErrInvalidConfig)
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return tui.Run(ctx, tui.WithStorage(store), tui.WithTheme(theme))
			})
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", "default", "Color theme (default, mocha)")

	return cmd
}
