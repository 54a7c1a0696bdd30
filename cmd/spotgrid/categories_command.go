package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spotgrid/internal/categories"
	"spotgrid/internal/roadblocks"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var skipRoadblocks bool

	cmd := &cobra.Command{
		Use:   "categories <yyyy>",
		Short: "Print the reconciled revenue category breakdown for a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				settings, err := categories.SettingsFromConfig(s.cfg.Categories)
				if err != nil {
					return err
				}
				svc := categories.NewService(s.store, settings, roadblocks.FromConfig(s.cfg, s.store),
					categories.WithLogger(s.logger),
					categories.WithMetrics(s.metrics),
					categories.WithTracer(s.tracing.Tracer()),
				)
				report, err := svc.Breakdown(runCtx, year, categories.Options{SkipRoadblocks: skipRoadblocks})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				printReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&skipRoadblocks, "skip-roadblocks", false, "Partition without roadblock data when the source is unavailable")
	return cmd
}

func printReport(cmd *cobra.Command, report *categories.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	label := "all years"
	if report.Year != 0 {
		label = fmt.Sprintf("%d", report.Year)
	}
	for _, line := range renderSectionHeader("Revenue categories, "+label, colorize) {
		fmt.Fprintln(out, line)
	}

	rows := make([][]string, 0, len(report.Categories))
	for _, c := range report.Categories {
		rows = append(rows, []string{
			c.Name,
			formatMoney(c.Revenue),
			formatPercent(c.Percent),
			formatCount(c.Spots),
			formatCount(c.PaidSpots),
			formatCount(c.BonusSpots),
		})
	}
	footer := []string{
		"Total",
		formatMoney(report.Base.Revenue),
		formatPercent(100),
		formatCount(report.Base.Spots),
		formatCount(report.Base.PaidSpots),
		formatCount(report.Base.BonusSpots),
	}
	if report.Base.Revenue == 0 {
		footer[2] = formatPercent(0)
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Category", "Revenue", "Share", "Spots", "Paid", "Bonus"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	rec := report.Reconciliation
	fmt.Fprintln(out, renderStatusLine("Reconciliation", statusOK,
		fmt.Sprintf("%s across %s spots, delta %s", formatMoney(rec.CategoryRevenue), formatCount(rec.CategorySpots), formatMoney(rec.RevenueDelta)),
		colorize))
	for _, w := range report.Warnings {
		fmt.Fprintln(out, renderStatusLine(w.Code, statusWarn, w.Message, colorize))
	}
}
