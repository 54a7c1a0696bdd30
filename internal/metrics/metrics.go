// Package metrics records assignment and partition counters in a private
// Prometheus registry. spotgrid runs as a batch CLI, so the registry is
// flushed to a node-exporter textfile at the end of a run instead of being
// scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spotgrid/internal/spots"
)

// Recorder owns the registry and the collectors spotgrid updates.
type Recorder struct {
	registry *prometheus.Registry

	spotsTotal      *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	categoryRevenue *prometheus.GaugeVec
	categorySpots   *prometheus.GaugeVec
	reconciled      *prometheus.GaugeVec
	lastRun         prometheus.Gauge
}

// New returns a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		spotsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spotgrid",
			Name:      "assignment_spots_total",
			Help:      "Spots processed by block assignment, by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spotgrid",
			Name:      "run_duration_seconds",
			Help:      "Wall time of assignment and partition runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"operation"}),
		categoryRevenue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spotgrid",
			Name:      "category_revenue_dollars",
			Help:      "Revenue per partition category from the most recent breakdown.",
		}, []string{"year", "category"}),
		categorySpots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spotgrid",
			Name:      "category_spots",
			Help:      "Spot count per partition category from the most recent breakdown.",
		}, []string{"year", "category"}),
		reconciled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spotgrid",
			Name:      "partition_reconciled",
			Help:      "1 when the category totals matched the base population.",
		}, []string{"year"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spotgrid",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished.",
		}),
	}
	r.registry.MustRegister(r.spotsTotal, r.runDuration, r.categoryRevenue, r.categorySpots, r.reconciled, r.lastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// AddSpots counts n spots finishing with outcome.
func (r *Recorder) AddSpots(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.spotsTotal.WithLabelValues(outcome).Add(float64(n))
}

// ObserveRun records the duration of an operation and stamps the last run time.
func (r *Recorder) ObserveRun(operation string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	r.lastRun.SetToCurrentTime()
}

// SetCategory publishes one category total for a year.
func (r *Recorder) SetCategory(year int, category string, revenue spots.Cents, count int) {
	if r == nil {
		return
	}
	y := strconv.Itoa(year)
	r.categoryRevenue.WithLabelValues(y, category).Set(revenue.Dollars())
	r.categorySpots.WithLabelValues(y, category).Set(float64(count))
}

// SetReconciled publishes the reconciliation result for a year.
func (r *Recorder) SetReconciled(year int, ok bool) {
	if r == nil {
		return
	}
	v := 0.0
	if ok {
		v = 1
	}
	r.reconciled.WithLabelValues(strconv.Itoa(year)).Set(v)
}

// WriteTextfile writes the registry in text exposition format. The write is
// atomic so a collector never reads a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
