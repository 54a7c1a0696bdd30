package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spotgrid/internal/grid"
	"spotgrid/internal/preflight"
	"spotgrid/internal/roadblocks"
	"spotgrid/internal/spots"
	"spotgrid/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDatabase_Healthy(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1))

	result := preflight.CheckDatabase(context.Background(), st)
	if !result.Passed {
		t.Fatalf("expected healthy database, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "1 spots") {
		t.Fatalf("detail %q missing spot count", result.Detail)
	}
}

func TestCheckGrid_EmptyIsAdvisory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	result := preflight.CheckGrid(context.Background(), st)
	if result.Passed || !result.Advisory {
		t.Fatalf("expected advisory failure for empty grid, got %+v", result)
	}
}

func TestCheckGrid_StandardGridPasses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStandardGrid(t, st)

	result := preflight.CheckGrid(context.Background(), st)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "5 blocks") {
		t.Fatalf("detail %q missing block count", result.Detail)
	}
}

func TestCheckGrid_ReportsOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStandardGrid(t, st)
	_, err := st.AddBlock(context.Background(), grid.Block{
		ID:         900,
		ScheduleID: testsupport.StandardScheduleID,
		Day:        time.Monday,
		Start:      spots.MustClock("08:00"),
		End:        spots.MustClock("10:00"),
		Language:   "Hmong",
		Name:       "Hmong overlap",
		DayPart:    "morning",
	})
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	result := preflight.CheckGrid(context.Background(), st)
	if result.Passed {
		t.Fatal("expected overlap to be reported")
	}
	if !result.Advisory {
		t.Fatal("grid issues must not block runs")
	}
	if blocking := preflight.Blocking([]preflight.Result{result}); len(blocking) != 0 {
		t.Fatalf("expected no blocking results, got %d", len(blocking))
	}
}

func TestCheckRoadblocks(t *testing.T) {
	result := preflight.CheckRoadblocks(context.Background(), roadblocks.Unavailable{})
	if result.Passed || !result.Advisory {
		t.Fatalf("expected advisory failure, got %+v", result)
	}

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	result = preflight.CheckRoadblocks(context.Background(), roadblocks.StoreSource{Store: st})
	if !result.Passed {
		t.Fatalf("expected store source to pass, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := preflight.RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_WithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 directory results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_SeededStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStandardGrid(t, st)

	results := preflight.RunAll(context.Background(), cfg, st)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if blocking := preflight.Blocking(results); len(blocking) != 0 {
		t.Fatalf("unexpected blocking results: %+v", blocking)
	}
}
