package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"spotgrid/internal/config"
	"spotgrid/internal/grid"
	"spotgrid/internal/intent"
	"spotgrid/internal/logging"
	"spotgrid/internal/metrics"
	"spotgrid/internal/services"
	"spotgrid/internal/spots"
	"spotgrid/internal/store"
)

// ErrBatchInProgress is returned when another process holds the batch lock.
var ErrBatchInProgress = errors.New("another batch assignment is running")

// Stage names recorded on per-spot failures.
const (
	StageValidate = "validate"
	StageResolve  = "resolve"
	StageMatch    = "match"
	StagePersist  = "persist"
)

// Service assigns spots to language blocks.
type Service struct {
	cfg        *config.Config
	store      *store.Store
	classifier intent.Classifier
	validate   *validator.Validate
	logger     *slog.Logger
	metrics    *metrics.Recorder
	tracer     trace.Tracer
	now        func() time.Time
	workers    int
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer sets the tracer used for batch and spot spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithClock overrides the assigned-at time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds an assignment service over st.
func NewService(cfg *config.Config, st *store.Store, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		store:      st,
		classifier: intent.New(cfg.Assignment.MaxSpannedBlocks),
		validate:   newValidator(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.workers = max(cfg.Assignment.Workers, 1)
	s.logger = logging.NewComponentLogger(s.logger, "assignment")
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("spotgrid")
	}
	return s
}

// AssignSpot assigns a single spot against a freshly loaded grid. Malformed
// spots return an error wrapping services.ErrValidation and are not written.
func (s *Service) AssignSpot(ctx context.Context, spotID int64) (spots.Assignment, error) {
	spot, err := s.store.GetSpot(ctx, spotID)
	if err != nil {
		return spots.Assignment{}, services.Wrap(services.ErrPersistence, StageResolve, "load spot", "", err)
	}
	if spot == nil {
		return spots.Assignment{}, services.Wrap(services.ErrNotFound, StageResolve, "load spot", fmt.Sprintf("spot %d does not exist", spotID), nil)
	}
	snap, err := s.loadGrid(ctx)
	if err != nil {
		return spots.Assignment{}, err
	}
	a, _, err := s.assign(ctx, snap, *spot)
	return a, err
}

// AssignUnassigned assigns up to limit spots that have no assignment yet. A
// non-positive limit uses assignment.batch_limit. Malformed spots are reported
// as skipped but do not count against the limit.
func (s *Service) AssignUnassigned(ctx context.Context, limit int) (Result, error) {
	if limit <= 0 {
		limit = s.cfg.Assignment.BatchLimit
	}
	return s.runBatch(ctx, "unassigned", func(ctx context.Context) ([]spots.Spot, error) {
		return s.unassignedCandidates(ctx, limit)
	})
}

func (s *Service) unassignedCandidates(ctx context.Context, limit int) ([]spots.Spot, error) {
	var (
		out    []spots.Spot
		valid  int
		cursor int64
	)
	for valid < limit {
		page, err := s.store.UnassignedSpotsAfter(ctx, cursor, limit-valid)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, spot := range page {
			if s.checkSpot(spot) == nil {
				valid++
			}
			out = append(out, spot)
		}
		cursor = page[len(page)-1].ID
	}
	return out, nil
}

// AssignAll reassigns every spot aired in year, replacing existing rows. Year
// zero reassigns the whole population.
func (s *Service) AssignAll(ctx context.Context, year int) (Result, error) {
	return s.runBatch(ctx, "all", func(ctx context.Context) ([]spots.Spot, error) {
		return s.store.SpotsForYear(ctx, year)
	})
}

func (s *Service) runBatch(ctx context.Context, op string, load func(context.Context) ([]spots.Spot, error)) (Result, error) {
	started := time.Now()
	lock := flock.New(s.cfg.BatchLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", s.cfg.BatchLockPath(), err)
	}
	if !locked {
		return Result{}, ErrBatchInProgress
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx, span := s.tracer.Start(ctx, "assign."+op, trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()
	logger := logging.WithContext(ctx, s.logger)

	snap, err := s.loadGrid(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grid load failed")
		return Result{RunID: runID}, err
	}
	gridIssues := len(snap.Validate())

	list, err := load(ctx)
	if err != nil {
		err = services.Wrap(services.ErrPersistence, "batch", "load spots", "", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "spot load failed")
		return Result{RunID: runID}, err
	}
	logger.Info("batch assignment started",
		logging.String("operation", op),
		logging.Int("spots", len(list)),
		logging.Int("workers", s.workers),
	)

	var (
		counts tally
		g      errgroup.Group
	)
	g.SetLimit(s.workers)
	for _, spot := range list {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			a, stage, err := s.assign(ctx, snap, spot)
			if err != nil {
				counts.failure(spot.ID, stage, err)
				return nil
			}
			counts.success(a)
			return nil
		})
	}
	_ = g.Wait()

	result := counts.snapshot()
	result.RunID = runID
	result.GridIssues = gridIssues
	result.Duration = time.Since(started)
	result.Cancelled = ctx.Err() != nil

	s.metrics.AddSpots(OutcomeAssigned, result.Assigned)
	s.metrics.AddSpots(OutcomeNoCoverage, result.NoCoverage)
	s.metrics.AddSpots(services.OutcomeInvalid, result.SkippedInvalid)
	s.metrics.AddSpots(services.OutcomeError, result.Errors)
	s.metrics.ObserveRun("assign_"+op, result.Duration)

	span.SetAttributes(
		attribute.Int("spots.processed", result.Processed),
		attribute.Int("spots.assigned", result.Assigned),
		attribute.Int("spots.no_coverage", result.NoCoverage),
		attribute.Int("spots.errors", result.Errors+result.SkippedInvalid),
	)

	attrs := []logging.Attr{
		logging.String("operation", op),
		logging.Int("processed", result.Processed),
		logging.Int("assigned", result.Assigned),
		logging.Int("no_coverage", result.NoCoverage),
		logging.Int("skipped_invalid", result.SkippedInvalid),
		logging.Int("errors", result.Errors),
		logging.Duration("elapsed", result.Duration),
	}
	if result.Cancelled {
		span.SetStatus(codes.Error, "cancelled")
		logging.WarnWithContext(logger, "batch assignment cancelled", "batch_cancelled",
			append(attrs,
				logging.String(logging.FieldErrorHint, "rerun the batch; assigned spots are kept"),
				logging.String(logging.FieldImpact, "remaining spots were left unassigned"),
			)...)
		return result, ctx.Err()
	}
	if result.Errors > 0 || result.SkippedInvalid > 0 {
		logging.WarnWithContext(logger, "batch assignment finished with failures", "batch_failures",
			append(attrs,
				logging.String(logging.FieldErrorHint, "inspect the per-spot failures in the run result"),
				logging.String(logging.FieldImpact, "failed spots have no assignment"),
			)...)
		return result, nil
	}
	logger.Info("batch assignment finished", logging.Args(attrs...)...)
	return result, nil
}

func (s *Service) loadGrid(ctx context.Context) (*grid.Snapshot, error) {
	snap, loadIssues, err := s.store.LoadGrid(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "grid", "load", "", err)
	}
	logger := logging.WithContext(ctx, s.logger)
	for _, issue := range append(loadIssues, snap.Validate()...) {
		logging.WarnWithContext(logger, "programming grid issue", "grid_issue",
			logging.Int64("schedule_id", issue.ScheduleID),
			logging.Any("block_ids", issue.BlockIDs),
			logging.String("issue", issue.Message),
			logging.String(logging.FieldErrorHint, "correct the language_blocks rows for this schedule"),
			logging.String(logging.FieldImpact, "spots in affected windows may span extra blocks"),
		)
	}
	schedules, bindings, blocks := snap.Counts()
	logger.Debug("grid snapshot loaded",
		logging.Int("schedules", schedules),
		logging.Int("bindings", bindings),
		logging.Int("blocks", blocks),
	)
	return snap, nil
}

// checkSpot reports why a spot cannot be assigned, wrapping
// services.ErrValidation.
func (s *Service) checkSpot(spot spots.Spot) error {
	if err := s.validate.Struct(spot); err != nil {
		return services.Wrap(services.ErrValidation, StageValidate, fmt.Sprintf("spot %d", spot.ID), describeValidation(err), nil)
	}
	if _, _, err := spot.Window(); err != nil {
		return services.Wrap(services.ErrValidation, StageValidate, fmt.Sprintf("spot %d", spot.ID), "", err)
	}
	return nil
}

// assign runs the resolve, match, classify, and persist pipeline for one spot.
// The returned stage names where a failure happened.
func (s *Service) assign(ctx context.Context, snap *grid.Snapshot, spot spots.Spot) (spots.Assignment, string, error) {
	ctx = services.WithSpotID(ctx, spot.ID)
	ctx, span := s.tracer.Start(ctx, "assign.spot", trace.WithAttributes(attribute.Int64("spot_id", spot.ID)))
	defer span.End()
	fail := func(stage string, err error) (spots.Assignment, string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		logging.WithContext(services.WithStage(ctx, stage), s.logger).Debug("spot assignment failed", logging.Error(err))
		return spots.Assignment{}, stage, err
	}

	if err := s.checkSpot(spot); err != nil {
		return fail(StageValidate, err)
	}
	start, end, _ := spot.Window()

	var (
		resolution *grid.Resolution
		blocks     []grid.Block
	)
	if res, ok := snap.Resolve(spot.MarketID, spot.AirDate); ok {
		resolution = &res
		if res.Degraded {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "no dated grid binding; using fallback grid", "grid_fallback",
				logging.Int64("market_id", spot.MarketID),
				logging.Int64("schedule_id", res.ScheduleID),
				logging.String("air_date", spot.AirDate.Format("2006-01-02")),
				logging.String(logging.FieldErrorHint, "add a schedule_market_assignments row covering this date"),
				logging.String(logging.FieldImpact, "assignment used the market's first active grid"),
			)
		}
		blocks, err = snap.Match(res.ScheduleID, spot.DayOfWeek, start, end)
		if err != nil {
			return fail(StageMatch, services.Wrap(services.ErrValidation, StageMatch, fmt.Sprintf("spot %d", spot.ID), "", err))
		}
	}

	a := s.classifier.Classify(spot, resolution, blocks)
	a.Method = s.cfg.Assignment.Method
	a.AssignedAt = s.now()
	if err := s.store.ReplaceAssignment(ctx, a); err != nil {
		return fail(StagePersist, services.Wrap(services.ErrPersistence, StagePersist, fmt.Sprintf("spot %d", spot.ID), "", err))
	}
	span.SetAttributes(attribute.String("intent", string(a.Intent)))
	return a, "", nil
}
