package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"spotgrid/internal/spots"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show assignment coverage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				stats, err := s.store.AssignmentStats(runCtx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}

				rows := [][]string{
					{"Spots", formatCount(stats.Spots)},
					{"Assigned", formatCount(stats.Assigned)},
					{"Unassigned", formatCount(stats.Unassigned())},
					{"Requires attention", formatCount(stats.RequiresAttention)},
					{"Spans multiple blocks", formatCount(stats.SpansMultiple)},
					{"Fallback grid", formatCount(stats.Degraded)},
				}
				intents := make([]spots.Intent, 0, len(stats.ByIntent))
				for intent := range stats.ByIntent {
					intents = append(intents, intent)
				}
				sort.Slice(intents, func(i, j int) bool { return intents[i] < intents[j] })
				for _, intent := range intents {
					rows = append(rows, []string{"Intent " + string(intent), formatCount(stats.ByIntent[intent])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Count"}, rows, nil, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}
