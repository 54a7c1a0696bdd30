package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"spotgrid/internal/roadblocks"
	"spotgrid/internal/store"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase runs the store health check.
func CheckDatabase(ctx context.Context, st *store.Store) Result {
	const name = "Database"

	health, err := st.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", health.DBPath, err)}
	}
	if !health.Healthy() {
		var problems []string
		if !health.DatabaseExists {
			problems = append(problems, "missing")
		}
		if len(health.MissingTables) > 0 {
			problems = append(problems, "missing tables "+strings.Join(health.MissingTables, ", "))
		}
		if !health.IntegrityCheck {
			problems = append(problems, "integrity check failed")
		}
		if len(problems) == 0 {
			problems = append(problems, fmt.Sprintf("schema version %d", health.SchemaVersion))
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", health.DBPath, strings.Join(problems, "; "))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d spots, schema v%d)", health.DBPath, health.TotalSpots, health.SchemaVersion)}
}

// CheckGrid loads the programming grid and reports well-formedness issues.
// Issues are advisory.
func CheckGrid(ctx context.Context, st *store.Store) Result {
	const name = "Programming grid"

	snap, loadIssues, err := st.LoadGrid(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("load failed: %v", err)}
	}
	issues := append(loadIssues, snap.Validate()...)
	schedules, bindings, blocks := snap.Counts()
	summary := fmt.Sprintf("%d schedules, %d bindings, %d blocks", schedules, bindings, blocks)
	if schedules == 0 {
		return Result{Name: name, Advisory: true, Detail: summary + " (every spot will be no_grid_coverage)"}
	}
	if len(issues) > 0 {
		lines := make([]string, 0, len(issues))
		for _, issue := range issues {
			lines = append(lines, issue.String())
		}
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s; %d issues: %s", summary, len(issues), strings.Join(lines, "; "))}
	}
	return Result{Name: name, Passed: true, Detail: summary}
}

// CheckRoadblocks confirms the roadblock source answers for the current year.
// An unavailable source is advisory because breakdowns can opt out of it.
func CheckRoadblocks(ctx context.Context, source roadblocks.Source) Result {
	const name = "Roadblock source"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	year := time.Now().Year()
	ids, err := source.SpotIDs(checkCtx, year)
	switch {
	case errors.Is(err, roadblocks.ErrUnavailable):
		return Result{Name: name, Advisory: true, Detail: "unavailable (breakdowns need --skip-roadblocks)"}
	case err != nil:
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d roadblock spots for %d", len(ids), year)}
}
