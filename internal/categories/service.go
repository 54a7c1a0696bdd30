package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"spotgrid/internal/logging"
	"spotgrid/internal/metrics"
	"spotgrid/internal/roadblocks"
	"spotgrid/internal/services"
	"spotgrid/internal/store"
)

const stageBreakdown = "breakdown"

// Options adjust a single Breakdown call.
type Options struct {
	// SkipRoadblocks partitions without roadblock data when the source is
	// unavailable. The report then carries a roadblocks_skipped warning.
	SkipRoadblocks bool
}

// Service runs the category partition over the stored population.
type Service struct {
	store    *store.Store
	settings Settings
	source   roadblocks.Source
	logger   *slog.Logger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	now      func() time.Time
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

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a partition service. A nil source behaves as
// roadblocks.Unavailable.
func NewService(st *store.Store, settings Settings, source roadblocks.Source, opts ...Option) *Service {
	if source == nil {
		source = roadblocks.Unavailable{}
	}
	s := &Service{store: st, settings: settings, source: source, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "categories")
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("spotgrid")
	}
	return s
}

// Breakdown partitions every base spot aired in year (zero for all years).
// It returns an error wrapping ErrReconciliation when the categories do not
// sum to the base, and roadblocks.ErrUnavailable when roadblock data is
// missing and opts.SkipRoadblocks is false.
func (s *Service) Breakdown(ctx context.Context, year int, opts Options) (*Report, error) {
	started := time.Now()
	ctx = services.WithStage(ctx, stageBreakdown)
	ctx, span := s.tracer.Start(ctx, "categories.breakdown", trace.WithAttributes(attribute.Int("year", year)))
	defer span.End()
	logger := logging.WithContext(ctx, s.logger)
	fail := func(err error) (*Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "breakdown failed")
		return nil, err
	}

	var warnings []Warning
	roadblockIDs, err := s.source.SpotIDs(ctx, year)
	switch {
	case err == nil:
	case errors.Is(err, roadblocks.ErrUnavailable) && opts.SkipRoadblocks:
		roadblockIDs = map[int64]struct{}{}
		warnings = append(warnings, Warning{
			Code:    WarningRoadblocksSkipped,
			Message: "roadblock data unavailable; roadblock spots fall through to later categories",
		})
		logging.WarnWithContext(logger, "partition running without roadblock data", WarningRoadblocksSkipped,
			logging.Int("year", year),
			logging.String(logging.FieldErrorHint, "configure roadblocks.source or load roadblock_spots"),
			logging.String(logging.FieldImpact, "roadblock revenue is reported under other categories"),
		)
	default:
		return fail(services.Wrap(services.ErrConfiguration, stageBreakdown, "load roadblocks", yearLabel(year), err))
	}

	population, err := s.store.SpotsForYear(ctx, year)
	if err != nil {
		return fail(services.Wrap(services.ErrPersistence, stageBreakdown, "load spots", "", err))
	}
	assignments, err := s.store.AssignmentsForYear(ctx, year)
	if err != nil {
		return fail(services.Wrap(services.ErrPersistence, stageBreakdown, "load assignments", "", err))
	}

	report, err := Build(s.settings, year, population, assignments, roadblockIDs)
	if err != nil {
		var mismatch *Mismatch
		if errors.As(err, &mismatch) {
			s.metrics.SetReconciled(year, false)
			logging.ErrorWithContext(logger, "category partition failed to reconcile", "reconciliation_failed",
				logging.Int("year", year),
				logging.Int64("revenue_delta_cents", int64(mismatch.Reconciliation.RevenueDelta)),
				logging.Int("spot_delta", mismatch.Reconciliation.SpotDelta),
				logging.String(logging.FieldErrorHint, "check the rule list ends with a catch-all category"),
				logging.String(logging.FieldImpact, "no report was emitted"),
			)
		}
		return fail(fmt.Errorf("breakdown %s: %w", yearLabel(year), err))
	}
	report.GeneratedAt = s.now()
	report.Warnings = warnings

	for _, c := range report.Categories {
		s.metrics.SetCategory(year, c.Name, c.Revenue, c.Spots)
		span.AddEvent("category", trace.WithAttributes(
			attribute.String("name", c.Name),
			attribute.Int64("revenue_cents", int64(c.Revenue)),
			attribute.Int("spots", c.Spots),
		))
	}
	s.metrics.SetReconciled(year, true)
	s.metrics.ObserveRun("breakdown", time.Since(started))
	span.SetAttributes(
		attribute.Int("spots.base", report.Base.Spots),
		attribute.Int64("revenue.base_cents", int64(report.Base.Revenue)),
	)
	logger.Info("category breakdown reconciled",
		logging.Int("year", year),
		logging.Int("base_spots", report.Base.Spots),
		logging.String("base_revenue", report.Base.Revenue.String()),
		logging.Int("population", len(population)),
	)
	return report, nil
}
