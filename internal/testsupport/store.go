package testsupport

import (
	"context"
	"testing"
	"time"

	"spotgrid/internal/config"
	"spotgrid/internal/grid"
	"spotgrid/internal/spots"
	"spotgrid/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustUpsertSpots stores each spot or fails the test.
func MustUpsertSpots(t testing.TB, st *store.Store, list ...spots.Spot) {
	t.Helper()

	for _, spot := range list {
		if err := st.UpsertSpot(context.Background(), spot); err != nil {
			t.Fatalf("UpsertSpot(%d): %v", spot.ID, err)
		}
	}
}

// Fixture block ids seeded by SeedStandardGrid. All blocks air on Monday
// under schedule StandardScheduleID, bound to FixtureMarket.
const (
	StandardScheduleID int64 = 1
	FixtureMarket      int64 = 10

	BlockVietnameseEarly int64 = 101 // 06:00-09:00 Vietnamese, morning
	BlockVietnameseLate  int64 = 102 // 09:00-12:00 Vietnamese, morning
	BlockTagalog         int64 = 103 // 12:00-18:00 Tagalog, afternoon
	BlockMandarin        int64 = 104 // 18:00-20:00 Mandarin, prime
	BlockKorean          int64 = 105 // 20:00-23:59 Korean, prime
)

// StandardBlocks returns the Monday blocks seeded by SeedStandardGrid.
func StandardBlocks() []grid.Block {
	mk := func(id int64, start, end, language, dayPart string) grid.Block {
		return grid.Block{
			ID:         id,
			ScheduleID: StandardScheduleID,
			Day:        time.Monday,
			Start:      spots.MustClock(start),
			End:        spots.MustClock(end),
			Language:   language,
			Name:       language + " " + dayPart,
			BlockType:  "language",
			DayPart:    dayPart,
		}
	}
	return []grid.Block{
		mk(BlockVietnameseEarly, "06:00", "09:00", "Vietnamese", "morning"),
		mk(BlockVietnameseLate, "09:00", "12:00", "Vietnamese", "morning"),
		mk(BlockTagalog, "12:00", "18:00", "Tagalog", "afternoon"),
		mk(BlockMandarin, "18:00", "20:00", "Mandarin", "prime"),
		mk(BlockKorean, "20:00", "23:59:59", "Korean", "prime"),
	}
}

// SeedStandardGrid creates the standard schedule, binds it to FixtureMarket
// from 2024-01-01, and adds StandardBlocks.
func SeedStandardGrid(t testing.TB, st *store.Store) {
	t.Helper()

	ctx := context.Background()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if _, err := st.CreateSchedule(ctx, grid.Schedule{ID: StandardScheduleID, Name: "Standard Grid", EffectiveStart: start, Active: true}); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if err := st.BindSchedule(ctx, grid.Binding{ScheduleID: StandardScheduleID, MarketID: FixtureMarket, EffectiveStart: start}); err != nil {
		t.Fatalf("BindSchedule: %v", err)
	}
	for _, b := range StandardBlocks() {
		if _, err := st.AddBlock(ctx, b); err != nil {
			t.Fatalf("AddBlock(%d): %v", b.ID, err)
		}
	}
}
