package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/internal/config"
	"github.com/smallbiznis/glazier/internal/migration"
	"github.com/smallbiznis/glazier/internal/observability"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/internal/seed"
	"github.com/smallbiznis/glazier/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Create the starter glass catalog for an organization",
	Example: `  glazier seed --org 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rawOrg, _ := cmd.Flags().GetString("org")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		var (
			conn *gorm.DB
			node *snowflake.Node
			cfg  config.Config
		)
		app := fx.New(
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			migration.Module,
			fx.Populate(&conn, &node, &cfg),
			fx.NopLogger,
		)
		if err := app.Err(); err != nil {
			return err
		}

		orgID, ok := orgcontext.Parse(rawOrg)
		if !ok {
			if rawOrg != "" || cfg.DefaultOrgID <= 0 {
				return errors.New("an organization id is required (--org or DEFAULT_ORG)")
			}
			orgID = snowflake.ID(cfg.DefaultOrgID)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(ctx)

		created, err := seed.EnsureStarterCatalog(ctx, conn, node, orgID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d catalog items for organization %s\n",
			created, len(seed.StarterCodes()), orgID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("org", "", "Organization id (defaults to DEFAULT_ORG)")
	seedCmd.Flags().Duration("timeout", time.Minute, "Time allowed for connecting and seeding")
}
