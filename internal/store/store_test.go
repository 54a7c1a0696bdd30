package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotgrid/internal/spots"
	"spotgrid/internal/store"
	"spotgrid/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Healthy() {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if health.DBPath != cfg.DatabasePath() {
		t.Fatalf("unexpected db path %q", health.DBPath)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1))
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	spot, err := reopened.GetSpot(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetSpot failed: %v", err)
	}
	if spot == nil {
		t.Fatal("expected spot to survive reopen")
	}
}

func TestUpsertSpotRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	in := testsupport.NewSpot(42,
		testsupport.Language("M"),
		testsupport.BillCode("WL-100"),
		testsupport.Rate(12345),
		testsupport.Type(spots.SpotTypeBonus),
	)
	testsupport.MustUpsertSpots(t, st, in)

	got, err := st.GetSpot(ctx, 42)
	if err != nil || got == nil {
		t.Fatalf("GetSpot: %v %#v", err, got)
	}
	if got.Language != "M" || got.BillCode != "WL-100" || got.SpotType != spots.SpotTypeBonus {
		t.Fatalf("unexpected spot fields: %#v", got)
	}
	if got.GrossRate == nil || *got.GrossRate != 12345 {
		t.Fatalf("unexpected gross rate: %v", got.GrossRate)
	}
	if !got.AirDate.Equal(testsupport.FixtureMonday) {
		t.Fatalf("unexpected air date: %v", got.AirDate)
	}

	in.GrossRate = nil
	in.Customer = "Changed"
	testsupport.MustUpsertSpots(t, st, in)
	got, _ = st.GetSpot(ctx, 42)
	if got.GrossRate != nil || got.Customer != "Changed" {
		t.Fatalf("expected upsert to overwrite fields, got %#v", got)
	}

	missing, err := st.GetSpot(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing spot, got %#v err=%v", missing, err)
	}
}

func TestReplaceAssignmentKeepsSingleRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(7))

	first := spots.Assignment{
		SpotID:          7,
		ScheduleID:      spots.ID(1),
		PrimaryBlockID:  spots.ID(101),
		Intent:          spots.IntentIndifferent,
		SpansMultiple:   true,
		SpannedBlockIDs: []int64{101, 103},
		Reason:          "spans 2 blocks",
		Method:          "auto_computed",
	}
	second := spots.Assignment{
		SpotID:         7,
		ScheduleID:     spots.ID(1),
		BlockID:        spots.ID(102),
		PrimaryBlockID: spots.ID(102),
		Intent:         spots.IntentLanguageSpecific,
		Method:         "auto_computed",
	}
	for i := 0; i < 3; i++ {
		if err := st.ReplaceAssignment(ctx, first); err != nil {
			t.Fatalf("ReplaceAssignment first: %v", err)
		}
		if err := st.ReplaceAssignment(ctx, second); err != nil {
			t.Fatalf("ReplaceAssignment second: %v", err)
		}
	}

	n, err := st.CountAssignmentRows(ctx, 7)
	if err != nil {
		t.Fatalf("CountAssignmentRows: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one assignment row, got %d", n)
	}
	got, err := st.GetAssignment(ctx, 7)
	if err != nil || got == nil {
		t.Fatalf("GetAssignment: %v %#v", err, got)
	}
	if !got.Equivalent(second) {
		t.Fatalf("stored assignment differs: %#v", got)
	}
	if got.AssignedAt.IsZero() {
		t.Fatal("expected assigned_at to be recorded")
	}
}

func TestReplaceAssignmentPersistsSentinel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(8))

	sentinel := spots.Assignment{SpotID: 8, Intent: spots.IntentNoGridCoverage, Reason: "no programming grid for this market"}
	if err := st.ReplaceAssignment(ctx, sentinel); err != nil {
		t.Fatalf("ReplaceAssignment: %v", err)
	}
	got, err := st.GetAssignment(ctx, 8)
	if err != nil || got == nil {
		t.Fatalf("GetAssignment: %v %#v", err, got)
	}
	if got.ScheduleID != nil || got.BlockID != nil || got.Intent != spots.IntentNoGridCoverage {
		t.Fatalf("unexpected sentinel: %#v", got)
	}

	unassigned, err := st.UnassignedSpots(ctx, 0)
	if err != nil {
		t.Fatalf("UnassignedSpots: %v", err)
	}
	if len(unassigned) != 0 {
		t.Fatalf("sentinel spot should not be unassigned, got %d", len(unassigned))
	}
}

func TestReplaceAssignmentRejectsUnknownIntent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(9))

	err := st.ReplaceAssignment(context.Background(), spots.Assignment{SpotID: 9, Intent: "guess"})
	if err == nil {
		t.Fatal("expected error for unknown intent")
	}
}

func TestUnassignedSpotsHonorsLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	for id := int64(1); id <= 5; id++ {
		testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(id))
	}
	if err := st.ReplaceAssignment(ctx, spots.Assignment{SpotID: 2, Intent: spots.IntentNoGridCoverage}); err != nil {
		t.Fatalf("ReplaceAssignment: %v", err)
	}

	got, err := st.UnassignedSpots(ctx, 3)
	if err != nil {
		t.Fatalf("UnassignedSpots: %v", err)
	}
	if len(got) != 3 || got[0].ID != 1 || got[1].ID != 3 || got[2].ID != 4 {
		t.Fatalf("unexpected unassigned spots: %#v", got)
	}

	after, err := st.UnassignedSpotsAfter(ctx, 3, 0)
	if err != nil {
		t.Fatalf("UnassignedSpotsAfter: %v", err)
	}
	if len(after) != 2 || after[0].ID != 4 || after[1].ID != 5 {
		t.Fatalf("unexpected spots after id 3: %#v", after)
	}
}

func TestSpotsAndAssignmentsForYear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustUpsertSpots(t, st,
		testsupport.NewSpot(1),
		testsupport.NewSpot(2, testsupport.OnDate(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))),
		testsupport.NewSpot(3, testsupport.OnDate(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))),
	)
	for _, id := range []int64{1, 2} {
		if err := st.ReplaceAssignment(ctx, spots.Assignment{SpotID: id, Intent: spots.IntentNoGridCoverage}); err != nil {
			t.Fatalf("ReplaceAssignment: %v", err)
		}
	}

	list, err := st.SpotsForYear(ctx, 2024)
	if err != nil {
		t.Fatalf("SpotsForYear: %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 3 {
		t.Fatalf("unexpected 2024 spots: %#v", list)
	}
	all, err := st.SpotsForYear(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all spots, got %d err=%v", len(all), err)
	}

	assignments, err := st.AssignmentsForYear(ctx, 2024)
	if err != nil {
		t.Fatalf("AssignmentsForYear: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("expected one 2024 assignment, got %d", len(assignments))
	}
	if _, ok := assignments[1]; !ok {
		t.Fatal("expected spot 1 assignment")
	}
}

func TestSpotsForYearKeepsUnreadableAirDate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1), testsupport.NewSpot(2))
	if err := st.SetRawAirDate(ctx, 2, "2024-02-30"); err != nil {
		t.Fatalf("SetRawAirDate: %v", err)
	}

	list, err := st.SpotsForYear(ctx, 2024)
	if err != nil {
		t.Fatalf("SpotsForYear: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected both spots, got %d", len(list))
	}
	if !list[1].AirDate.IsZero() {
		t.Fatalf("expected zero air date for unparseable value, got %v", list[1].AirDate)
	}
}

func TestLoadGridBuildsSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedStandardGrid(t, st)
	if err := st.SetBlockActive(ctx, testsupport.BlockTagalog, false); err != nil {
		t.Fatalf("SetBlockActive: %v", err)
	}

	snap, issues, err := st.LoadGrid(ctx)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	schedules, bindings, blocks := snap.Counts()
	if schedules != 1 || bindings != 1 || blocks != 4 {
		t.Fatalf("unexpected counts: %d %d %d", schedules, bindings, blocks)
	}

	res, ok := snap.Resolve(testsupport.FixtureMarket, testsupport.FixtureMonday)
	if !ok || res.ScheduleID != testsupport.StandardScheduleID || res.Degraded {
		t.Fatalf("unexpected resolution: %#v ok=%v", res, ok)
	}
	matched, err := snap.Match(res.ScheduleID, "MON", spots.MustClock("19:30"), spots.MustClock("23:59:59"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(matched) != 2 || matched[0].ID != testsupport.BlockMandarin || matched[1].ID != testsupport.BlockKorean {
		t.Fatalf("unexpected matches: %#v", matched)
	}
}

func TestRoadblocks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.AddRoadblocks(ctx, 2024, 5, 6, 6); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}
	if err := st.AddRoadblocks(ctx, 2023, 7); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}
	ids, err := st.RoadblockSpotIDs(ctx, 2024)
	if err != nil {
		t.Fatalf("RoadblockSpotIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected two roadblocks, got %v", ids)
	}
	if _, ok := ids[7]; ok {
		t.Fatal("2023 roadblock leaked into 2024")
	}
}

func TestAssignmentStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	for id := int64(1); id <= 4; id++ {
		testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(id))
	}
	writes := []spots.Assignment{
		{SpotID: 1, Intent: spots.IntentLanguageSpecific, BlockID: spots.ID(1)},
		{SpotID: 2, Intent: spots.IntentIndifferent, SpansMultiple: true, SpannedBlockIDs: []int64{1, 2}, RequiresAttention: true},
		{SpotID: 3, Intent: spots.IntentNoGridCoverage, Degraded: true},
	}
	for _, a := range writes {
		if err := st.ReplaceAssignment(ctx, a); err != nil {
			t.Fatalf("ReplaceAssignment: %v", err)
		}
	}

	stats, err := st.AssignmentStats(ctx)
	if err != nil {
		t.Fatalf("AssignmentStats: %v", err)
	}
	if stats.Spots != 4 || stats.Assigned != 3 || stats.Unassigned() != 1 {
		t.Fatalf("unexpected totals: %#v", stats)
	}
	if stats.ByIntent[spots.IntentIndifferent] != 1 || stats.RequiresAttention != 1 || stats.SpansMultiple != 1 || stats.Degraded != 1 {
		t.Fatalf("unexpected flag counts: %#v", stats)
	}
}

func TestSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.ForceSchemaVersion(context.Background(), 99); err != nil {
		t.Fatalf("ForceSchemaVersion: %v", err)
	}
	st.Close()

	_, err := store.Open(cfg)
	if !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
