package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spotgrid/internal/preflight"
	"spotgrid/internal/services"
)

func newGridCommand(ctx *commandContext) *cobra.Command {
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "Programming grid utilities",
	}
	gridCmd.AddCommand(newGridCheckCommand(ctx))
	return gridCmd
}

func newGridCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run readiness checks and report programming grid issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				results := preflight.RunAll(runCtx, s.cfg, s.store)
				for _, line := range renderSectionHeader("Readiness", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, preflightKind(r), r.Detail, colorize))
				}
				if blocking := preflight.Blocking(results); len(blocking) > 0 {
					return services.Wrap(services.ErrConfiguration, "preflight", "",
						fmt.Sprintf("%d blocking checks failed", len(blocking)), nil)
				}
				return nil
			})
		},
	}
}
