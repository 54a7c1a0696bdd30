package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spotgrid/internal/categories"
	"spotgrid/internal/config"
	"spotgrid/internal/roadblocks"
	"spotgrid/internal/spots"
	"spotgrid/internal/store"
	"spotgrid/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, roadblockSource string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n\n[roadblocks]\nsource = %q\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		roadblockSource,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	testsupport.SeedStandardGrid(t, st)
	testsupport.MustUpsertSpots(t, st,
		testsupport.NewSpot(1, testsupport.Language("V"), testsupport.Rate(1_250_00)),
		testsupport.NewSpot(2, testsupport.At("Monday", "19:30:00", "20:30:00")),
		testsupport.NewSpot(3, testsupport.Market(999)),
		testsupport.NewSpot(4, testsupport.RevenueType("Trade")),
	)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestAssignYearThenStats(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)

	out, err := env.run(t, "assign", "year", "2024")
	if err != nil {
		t.Fatalf("assign year: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No grid coverage") {
		t.Fatalf("expected outcome table, got:\n%s", out)
	}

	out, err = env.run(t, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats store.AssignmentStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Spots != 4 || stats.Assigned != 4 {
		t.Fatalf("expected 4 spots all assigned, got %+v", stats)
	}
	if stats.ByIntent[spots.IntentNoGridCoverage] != 1 {
		t.Fatalf("expected one no-coverage sentinel, got %+v", stats.ByIntent)
	}
}

func TestAssignSpotPrintsAssignment(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)

	out, err := env.run(t, "assign", "spot", "1", "--json")
	if err != nil {
		t.Fatalf("assign spot: %v\n%s", err, out)
	}
	var a spots.Assignment
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode assignment: %v\n%s", err, out)
	}
	if a.Intent != spots.IntentLanguageSpecific || a.BlockID == nil || *a.BlockID != testsupport.BlockVietnameseLate {
		t.Fatalf("unexpected assignment %+v", a)
	}

	if _, err := env.run(t, "assign", "spot", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestAssignBatchRespectsLimit(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)

	out, err := env.run(t, "assign", "batch", "--limit", "2", "--json")
	if err != nil {
		t.Fatalf("assign batch: %v\n%s", err, out)
	}
	var result struct {
		Processed int `json:"processed"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
}

func TestCategoriesJSONReconciles(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)
	if out, err := env.run(t, "assign", "year", "2024"); err != nil {
		t.Fatalf("assign year: %v\n%s", err, out)
	}

	out, err := env.run(t, "categories", "2024", "--json")
	if err != nil {
		t.Fatalf("categories: %v\n%s", err, out)
	}
	var report categories.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !report.Reconciliation.OK() {
		t.Fatalf("expected reconciled report, got %+v", report.Reconciliation)
	}
	if report.Base.Spots != 3 {
		t.Fatalf("expected 3 base spots, got %d", report.Base.Spots)
	}
	if report.Base.Revenue != spots.Cents(1_450_00) {
		t.Fatalf("unexpected base revenue %s", report.Base.Revenue)
	}
}

func TestCategoriesTable(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)
	if out, err := env.run(t, "assign", "year", "2024"); err != nil {
		t.Fatalf("assign year: %v\n%s", err, out)
	}

	out, err := env.run(t, "categories", "2024")
	if err != nil {
		t.Fatalf("categories: %v\n%s", err, out)
	}
	for _, want := range []string{"Individual Language Blocks", "$1,250.00", "$1,450.00", "Reconciliation"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCategoriesRequiresRoadblocks(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksNone)

	_, err := env.run(t, "categories", "2024")
	if !errors.Is(err, roadblocks.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	out, err := env.run(t, "categories", "2024", "--skip-roadblocks")
	if err != nil {
		t.Fatalf("categories --skip-roadblocks: %v\n%s", err, out)
	}
	if !strings.Contains(out, categories.WarningRoadblocksSkipped) {
		t.Fatalf("expected skip warning in output:\n%s", out)
	}
}

func TestGridCheck(t *testing.T) {
	env := setupCLITestEnv(t, config.RoadblocksStore)

	out, err := env.run(t, "grid", "check")
	if err != nil {
		t.Fatalf("grid check: %v\n%s", err, out)
	}
	for _, want := range []string{"Data directory", "Database", "Programming grid", "[OK]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "spotgrid.toml")

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	again := newRootCommand()
	again.SetOut(&buf)
	again.SetArgs([]string{"config", "init", "--path", target})
	if err := again.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
