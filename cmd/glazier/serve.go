package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/config"
	"github.com/smallbiznis/glazier/internal/migration"
	"github.com/smallbiznis/glazier/internal/observability"
	"github.com/smallbiznis/glazier/internal/server"
	"github.com/smallbiznis/glazier/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Configuration is read from the environment and an
optional .env file; pricing settings come from pricing.yml.`,
	Example: `  # Local development on SQLite
  DATABASE_TYPE=sqlite DATABASE_NAME=glazier.db DEFAULT_ORG=1 glazier serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: log.Named("fx")}
			}),
			fx.Provide(RegisterSnowflake),
			db.Module,
			clock.Module,
			migration.Module,
			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
