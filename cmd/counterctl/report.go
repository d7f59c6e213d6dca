package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/report"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	institution string
	press       string
	start       string
	end         string
	out         string
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:       "report <pr_p1|tr_b1>",
		Short:     "Build a COUNTER 5 report as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"pr_p1", "tr_b1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				if opts.out == "" || opts.out == "-" {
					return runReport(ctx, svc.Assembler, args[0], opts, cmd.OutOrStdout())
				}
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.out, err)
				}
				if err := runReport(ctx, svc.Assembler, args[0], opts, f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}

	cmd.Flags().StringVar(&opts.institution, "institution", "", "Institution identifier")
	cmd.Flags().StringVar(&opts.press, "press", "", "Press subdomain")
	cmd.Flags().StringVar(&opts.start, "start", "", "Start date (YYYY-MM-DD), defaults to the first recorded event")
	cmd.Flags().StringVar(&opts.end, "end", "", "End date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write CSV to this file instead of stdout")

	return cmd
}

func runReport(ctx context.Context, assembler counterdomain.Assembler, reportID string, opts reportOptions, w io.Writer) error {
	start, err := report.ParseDate(opts.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := report.ParseEndDate(opts.end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	rep, err := assembler.Assemble(ctx, counterdomain.ReportRequest{
		ReportID:    strings.ToUpper(strings.TrimSpace(reportID)),
		StartDate:   start,
		EndDate:     end,
		Institution: strings.TrimSpace(opts.institution),
		Press:       strings.TrimSpace(opts.press),
	})
	if err != nil {
		return err
	}
	return report.Write(w, rep)
}
