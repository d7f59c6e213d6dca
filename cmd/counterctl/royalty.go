package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/smallbiznis/counterreport/internal/delivery"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"github.com/spf13/cobra"
)

type royaltyOptions struct {
	press   string
	start   string
	end     string
	deliver bool
	outDir  string
}

func newRoyaltyCmd() *cobra.Command {
	var opts royaltyOptions

	cmd := &cobra.Command{
		Use:   "royalty",
		Short: "Build per-rightsholder royalty usage reports",
		Long: `Build one usage report per copyright holder plus a combined report
for a press. With --deliver the files are pushed to the configured delivery
destination, otherwise they are written to --out-dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				return runRoyalty(ctx, svc.Royalty, delivery.NewLocal(), opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.press, "press", "", "Press subdomain (required)")
	cmd.Flags().StringVar(&opts.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.deliver, "deliver", false, "Push reports to the delivery destination")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", ".", "Directory for report files when not delivering")
	_ = cmd.MarkFlagRequired("press")

	return cmd
}

func runRoyalty(ctx context.Context, svc royaltydomain.Service, local delivery.Transport, opts royaltyOptions, w io.Writer) error {
	start, err := report.ParseDate(opts.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := report.ParseEndDate(opts.end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	req := royaltydomain.UsageRequest{Press: opts.press, StartDate: start, EndDate: end}

	if opts.deliver {
		out, err := svc.DeliverUsageReports(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "delivered %d reports for %s (%s)\n", len(out.Reports), opts.press, out.Period.Label())
		return nil
	}

	out, err := svc.UsageReports(ctx, req)
	if err != nil {
		return err
	}
	if err := local.Mkdir(ctx, opts.outDir); err != nil && !errors.Is(err, delivery.ErrDirectoryExists) {
		return err
	}

	names := make([]string, 0, len(out.Reports))
	for name := range out.Reports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := report.Serialize(out.Reports[name])
		if err != nil {
			return fmt.Errorf("serialize %s: %w", name, err)
		}
		target := path.Join(opts.outDir, name)
		if err := local.Put(ctx, target, data); err != nil {
			return err
		}
		fmt.Fprintln(w, target)
	}
	fmt.Fprintf(w, "total hits: %d\n", out.TotalHits)
	return nil
}
