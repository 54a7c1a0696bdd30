package assignment_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotgrid/internal/assignment"
	"spotgrid/internal/config"
	"spotgrid/internal/metrics"
	"spotgrid/internal/services"
	"spotgrid/internal/spots"
	"spotgrid/internal/store"
	"spotgrid/internal/testsupport"
)

func newFixture(t *testing.T, opts ...assignment.Option) (*config.Config, *store.Store, *assignment.Service) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStandardGrid(t, st)
	return cfg, st, assignment.NewService(cfg, st, opts...)
}

func TestAssignSpotSingleBlock(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1, testsupport.Language("V")))

	a, err := svc.AssignSpot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, spots.IntentLanguageSpecific, a.Intent)
	require.NotNil(t, a.BlockID)
	assert.Equal(t, testsupport.BlockVietnameseLate, *a.BlockID)
	assert.Equal(t, "auto_computed", a.Method)

	stored, err := st.GetAssignment(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Equivalent(a))
}

func TestAssignSpotSpanningSameLanguage(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(2, testsupport.At("monday", "08:30:00", "09:30:00")))

	a, err := svc.AssignSpot(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, spots.IntentTimeSpecific, a.Intent)
	assert.True(t, a.SpansMultiple)
	assert.Nil(t, a.BlockID)
	assert.Equal(t, []int64{testsupport.BlockVietnameseEarly, testsupport.BlockVietnameseLate}, a.SpannedBlockIDs)
}

func TestAssignSpotWithoutGridWritesSentinel(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(3, testsupport.Market(999)))

	a, err := svc.AssignSpot(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, spots.IntentNoGridCoverage, a.Intent)
	assert.Nil(t, a.ScheduleID)

	n, err := st.CountAssignmentRows(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAssignSpotOutsideEveryBlock(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(4, testsupport.At("Mon", "02:00", "03:00")))

	a, err := svc.AssignSpot(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, spots.IntentNoGridCoverage, a.Intent)
	require.NotNil(t, a.ScheduleID)
	assert.Equal(t, testsupport.StandardScheduleID, *a.ScheduleID)
}

func TestAssignSpotInvalidIsNotWritten(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(5, testsupport.At("Funday", "10:00", "10:30")))

	_, err := svc.AssignSpot(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "DayOfWeek")

	stored, err := st.GetAssignment(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAssignSpotMissing(t *testing.T) {
	_, _, svc := newFixture(t)
	_, err := svc.AssignSpot(context.Background(), 404)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAssignUnassignedIsolatesFailures(t *testing.T) {
	rec := metrics.New()
	cfg, st, svc := newFixture(t, assignment.WithMetrics(rec))
	testsupport.MustUpsertSpots(t, st,
		testsupport.NewSpot(1, testsupport.Language("V")),
		testsupport.NewSpot(2, testsupport.At("monday", "19:30", "20:30")),
		testsupport.NewSpot(3, testsupport.Market(999)),
		testsupport.NewSpot(4, testsupport.At("monday", "25:00", "26:00")),
		testsupport.NewSpot(5, testsupport.Language("Mandarin"), testsupport.At("monday", "18:15", "18:45")),
	)

	result, err := svc.AssignUnassigned(context.Background(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 5, result.Processed)
	assert.Equal(t, 3, result.Assigned)
	assert.Equal(t, 1, result.NoCoverage)
	assert.Equal(t, 1, result.SkippedInvalid)
	assert.Equal(t, 0, result.Errors)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, int64(4), result.Failures[0].SpotID)
	assert.Equal(t, assignment.StageValidate, result.Failures[0].Stage)

	again, err := svc.AssignUnassigned(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Processed, "only the invalid spot remains unassigned")

	require.NoError(t, rec.WriteTextfile(cfg.Metrics.TextfilePath))
	data, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `spotgrid_assignment_spots_total{outcome="assigned"} 3`)
}

func TestAssignUnassignedHonorsLimit(t *testing.T) {
	_, st, svc := newFixture(t)
	for id := int64(1); id <= 6; id++ {
		testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(id))
	}
	result, err := svc.AssignUnassigned(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)

	left, err := st.UnassignedSpots(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestAssignUnassignedPagesPastInvalidSpots(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st,
		testsupport.NewSpot(1, testsupport.At("monday", "25:00", "26:00")),
		testsupport.NewSpot(2, testsupport.At("monday", "bogus", "10:30:00")),
		testsupport.NewSpot(3),
		testsupport.NewSpot(4),
	)
	ctx := context.Background()

	for run := 1; run <= 2; run++ {
		result, err := svc.AssignUnassigned(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Assigned+result.NoCoverage, "run %d", run)
		assert.Equal(t, 2, result.SkippedInvalid, "run %d", run)
	}

	for _, id := range []int64{3, 4} {
		n, err := st.CountAssignmentRows(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "spot %d", id)
	}
	for _, id := range []int64{1, 2} {
		n, err := st.CountAssignmentRows(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, n, "spot %d", id)
	}
}

func TestZeroWorkersStillRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(0))
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedStandardGrid(t, st)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1), testsupport.NewSpot(2))
	svc := assignment.NewService(cfg, st)

	done := make(chan assignment.Result, 1)
	go func() {
		result, err := svc.AssignUnassigned(context.Background(), 0)
		assert.NoError(t, err)
		done <- result
	}()
	select {
	case result := <-done:
		assert.Equal(t, 2, result.Processed)
	case <-time.After(10 * time.Second):
		t.Fatal("batch with zero configured workers did not finish")
	}
}

func TestAssignAllIsIdempotent(t *testing.T) {
	fixed := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	_, st, svc := newFixture(t, assignment.WithClock(func() time.Time { return fixed }))
	testsupport.MustUpsertSpots(t, st,
		testsupport.NewSpot(1, testsupport.Language("V")),
		testsupport.NewSpot(2, testsupport.At("monday", "11:00", "13:00")),
		testsupport.NewSpot(3, testsupport.At("monday", "17:00", "21:00")),
		testsupport.NewSpot(4, testsupport.Market(999)),
	)
	ctx := context.Background()

	_, err := svc.AssignAll(ctx, 2024)
	require.NoError(t, err)
	first, err := st.AssignmentsForYear(ctx, 2024)
	require.NoError(t, err)

	second, err := svc.AssignAll(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Processed)
	after, err := st.AssignmentsForYear(ctx, 2024)
	require.NoError(t, err)

	require.Len(t, after, len(first))
	for id, a := range first {
		assert.True(t, a.Equivalent(after[id]), "spot %d changed between runs", id)
		n, err := st.CountAssignmentRows(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, spots.IntentIndifferent, after[2].Intent)
	assert.True(t, after[3].RequiresAttention == false && after[3].SpansMultiple)
}

func TestBatchLockBlocksConcurrentRuns(t *testing.T) {
	cfg, _, svc := newFixture(t)
	lock := flock.New(cfg.BatchLockPath())
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = lock.Unlock() })

	_, err = svc.AssignUnassigned(context.Background(), 0)
	assert.ErrorIs(t, err, assignment.ErrBatchInProgress)
}

func TestCancelledBatchStops(t *testing.T) {
	_, st, svc := newFixture(t)
	testsupport.MustUpsertSpots(t, st, testsupport.NewSpot(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.AssignUnassigned(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Processed)
}
