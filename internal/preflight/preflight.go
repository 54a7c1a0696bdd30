package preflight

import (
	"context"

	"spotgrid/internal/config"
	"spotgrid/internal/roadblocks"
	"spotgrid/internal/store"
)

// Result reports the outcome of a single preflight check. Advisory results
// are printed but do not fail the run.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// RunAll executes every preflight check for cfg against st.
func RunAll(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if st == nil {
		return results
	}
	results = append(results, CheckDatabase(ctx, st))
	results = append(results, CheckGrid(ctx, st))
	results = append(results, CheckRoadblocks(ctx, roadblocks.FromConfig(cfg, st)))
	return results
}

// Blocking returns the failed checks that should stop a run.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			out = append(out, r)
		}
	}
	return out
}
