// Command counterctl builds COUNTER and royalty usage reports from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/counterreport/internal/catalog"
	"github.com/smallbiznis/counterreport/internal/clock"
	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/counter"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/delivery"
	"github.com/smallbiznis/counterreport/internal/migration"
	"github.com/smallbiznis/counterreport/internal/observability"
	"github.com/smallbiznis/counterreport/internal/royalty"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"github.com/smallbiznis/counterreport/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// Build-time variables set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "counterctl",
		Short: "Build COUNTER 5 and royalty usage reports",
		Long: `counterctl assembles COUNTER 5 platform (PR_P1) and title (TR_B1)
reports and per-rightsholder royalty usage reports from the usage event store.

Database, redis and delivery settings are read from the same environment
and delivery.yml as the counterreport service.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newReportCmd(),
		newRoyaltyCmd(),
		newSeedCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "counterctl %s (%s) %s/%s\n", Version, Commit, runtime.GOOS, runtime.GOARCH)
		},
	}
}

// services is what the commands pull out of the fx graph.
type services struct {
	Assembler counterdomain.Assembler
	Royalty   royaltydomain.Service
}

// withServices starts the reporting graph without the HTTP server or the
// scheduler, runs fn and stops it again.
func withServices(ctx context.Context, fn func(context.Context, services) error) error {
	var svc services
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) { return snowflake.NewNode(2) }),
		db.Module,
		migration.Module,
		clock.Module,
		catalog.Module,
		counter.Module,
		delivery.Module,
		royalty.Module,
		fx.Populate(&svc.Assembler, &svc.Royalty),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()
	return fn(ctx, svc)
}
