package main

import (
	"context"
	"time"

	"github.com/smallbiznis/glazier/internal/config"
	"github.com/smallbiznis/glazier/internal/migration"
	"github.com/smallbiznis/glazier/internal/observability"
	"github.com/smallbiznis/glazier/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		// Migrations run while the graph is built; starting and stopping the
		// app only releases the connection again.
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			migration.Module,
			fx.NopLogger,
		)
		if err := app.Err(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		return app.Stop(ctx)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Duration("timeout", time.Minute, "Time allowed for connecting and migrating")
}
