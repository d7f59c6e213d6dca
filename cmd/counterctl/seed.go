package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/counterreport/internal/clock"
	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/migration"
	"github.com/smallbiznis/counterreport/internal/observability"
	"github.com/smallbiznis/counterreport/internal/seed"
	"github.com/smallbiznis/counterreport/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo institutions, titles and usage for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				conn *gorm.DB
				node *snowflake.Node
				clk  clock.Clock
				cfg  config.Config
			)
			app := fx.New(
				fx.NopLogger,
				config.Module,
				observability.Module,
				fx.Provide(func() (*snowflake.Node, error) { return snowflake.NewNode(2) }),
				db.Module,
				migration.Module,
				clock.Module,
				fx.Populate(&conn, &node, &clk, &cfg),
			)
			if err := app.Err(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				_ = app.Stop(context.Background())
			}()

			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed demo data in production")
			}
			written, err := seed.EnsureDemoData(ctx, conn, node, clk.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d usage events for press %q, institution %q\n",
				written, seed.DemoPress, seed.DemoInstitutionIdentifier)
			return nil
		},
	}
}
