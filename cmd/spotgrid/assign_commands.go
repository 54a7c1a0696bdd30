package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spotgrid/internal/assignment"
	"spotgrid/internal/spots"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	assignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign spots to programming-grid language blocks",
	}

	assignCmd.AddCommand(newAssignSpotCommand(ctx))
	assignCmd.AddCommand(newAssignBatchCommand(ctx))
	assignCmd.AddCommand(newAssignYearCommand(ctx))

	return assignCmd
}

func newAssignSpotCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "spot <id>",
		Short: "Assign a single spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid spot id %q", args[0])
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				svc := newAssignmentService(s)
				a, err := svc.AssignSpot(runCtx, id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, a)
				}
				printAssignment(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newAssignBatchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assign spots that have no assignment yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if err := s.requirePreflight(runCtx); err != nil {
					return err
				}
				result, err := newAssignmentService(s).AssignUnassigned(runCtx, limit)
				return reportBatch(cmd, result, err, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum spots to assign (default assignment.batch_limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newAssignYearCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "year <yyyy>",
		Short: "Reassign every spot aired in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if err := s.requirePreflight(runCtx); err != nil {
					return err
				}
				result, err := newAssignmentService(s).AssignAll(runCtx, year)
				return reportBatch(cmd, result, err, jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newAssignmentService(s *session) *assignment.Service {
	return assignment.NewService(s.cfg, s.store,
		assignment.WithLogger(s.logger),
		assignment.WithMetrics(s.metrics),
		assignment.WithTracer(s.tracing.Tracer()),
	)
}

// reportBatch prints the batch result. A cancelled run still prints what was
// done before returning the cancellation error.
func reportBatch(cmd *cobra.Command, result assignment.Result, runErr error, jsonOutput bool) error {
	if result.RunID == "" && runErr != nil {
		return runErr
	}
	if jsonOutput {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
		return runErr
	}
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Processed", formatCount(result.Processed)},
		{"Assigned", formatCount(result.Assigned)},
		{"No grid coverage", formatCount(result.NoCoverage)},
		{"Skipped (invalid)", formatCount(result.SkippedInvalid)},
		{"Errors", formatCount(result.Errors)},
		{"Grid issues", formatCount(result.GridIssues)},
		{"Elapsed", result.Duration.Round(1e6).String()},
	}
	fmt.Fprintf(out, "Run %s\n", result.RunID)
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Spots"}, rows, nil, []columnAlignment{alignLeft, alignRight}))
	if len(result.Failures) > 0 {
		failRows := make([][]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			failRows = append(failRows, []string{strconv.FormatInt(f.SpotID, 10), f.Stage, f.Message})
		}
		fmt.Fprintln(out, renderTable([]string{"Spot", "Stage", "Error"}, failRows, nil, []columnAlignment{alignRight}))
	}
	if result.Cancelled {
		fmt.Fprintln(out, "Run was cancelled; rerun to assign the remaining spots")
	}
	return runErr
}

func printAssignment(out io.Writer, a spots.Assignment) {
	rows := [][]string{
		{"Spot", strconv.FormatInt(a.SpotID, 10)},
		{"Intent", string(a.Intent)},
		{"Schedule", formatOptionalID(a.ScheduleID)},
		{"Block", formatOptionalID(a.BlockID)},
		{"Primary block", formatOptionalID(a.PrimaryBlockID)},
		{"Spans multiple", yesNo(a.SpansMultiple)},
		{"Requires attention", yesNo(a.RequiresAttention)},
		{"Reason", a.Reason},
	}
	if len(a.SpannedBlockIDs) > 0 {
		ids := make([]string, 0, len(a.SpannedBlockIDs))
		for _, id := range a.SpannedBlockIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		rows = append(rows, []string{"Spanned blocks", strings.Join(ids, ", ")})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, nil))
}

func parseYear(value string) (int, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return 0, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q (use yyyy or \"all\")", value)
	}
	return year, nil
}
