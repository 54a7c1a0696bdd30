package categories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"spotgrid/internal/spots"
)

// ErrReconciliation marks a partition whose categories do not sum to the
// base population.
var ErrReconciliation = errors.New("category partition does not reconcile")

// Warning codes attached to reports.
const (
	WarningRoadblocksSkipped = "roadblocks_skipped"
)

// Warning is a non-fatal note attached to a report.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Totals aggregates revenue and counts over a set of spots.
type Totals struct {
	Revenue    spots.Cents `json:"revenue_cents"`
	Spots      int         `json:"spots"`
	PaidSpots  int         `json:"paid_spots"`
	BonusSpots int         `json:"bonus_spots"`
}

func (t *Totals) add(spot spots.Spot) {
	t.Revenue += spot.Revenue()
	t.Spots++
	if spot.Revenue() > 0 {
		t.PaidSpots++
	}
	if spot.SpotType == spots.SpotTypeBonus {
		t.BonusSpots++
	}
}

// CategoryTotal is one row of the breakdown.
type CategoryTotal struct {
	Name string `json:"name"`
	Totals
	Percent float64 `json:"percent_of_revenue"`
}

// Reconciliation compares the category sums to the base population.
type Reconciliation struct {
	BaseRevenue     spots.Cents `json:"base_revenue_cents"`
	CategoryRevenue spots.Cents `json:"category_revenue_cents"`
	RevenueDelta    spots.Cents `json:"revenue_delta_cents"`
	BaseSpots       int         `json:"base_spots"`
	CategorySpots   int         `json:"category_spots"`
	SpotDelta       int         `json:"spot_delta"`
}

// OK reports whether revenue and counts match exactly.
func (r Reconciliation) OK() bool {
	return r.RevenueDelta == 0 && r.SpotDelta == 0
}

// Mismatch describes a failed reconciliation. It unwraps to ErrReconciliation.
type Mismatch struct {
	Year           int
	Reconciliation Reconciliation
	Categories     []CategoryTotal
}

func (m *Mismatch) Error() string {
	var b strings.Builder
	delta, direction := m.Reconciliation.RevenueDelta, "over"
	if delta < 0 {
		delta, direction = -delta, "under"
	}
	fmt.Fprintf(&b, "%s for %s: categories %s %s base revenue, spot delta %d",
		ErrReconciliation, yearLabel(m.Year), delta, direction, m.Reconciliation.SpotDelta)
	for _, c := range m.Categories {
		fmt.Fprintf(&b, "; %s=%s/%d", c.Name, c.Revenue, c.Spots)
	}
	return b.String()
}

func (m *Mismatch) Unwrap() error {
	return ErrReconciliation
}

// Report is the outcome of a partition run.
type Report struct {
	Year           int             `json:"year"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Base           Totals          `json:"base"`
	Categories     []CategoryTotal `json:"categories"`
	Reconciliation Reconciliation  `json:"reconciliation"`
	Warnings       []Warning       `json:"warnings,omitempty"`
}

// Category returns the named category row.
func (r *Report) Category(name string) (CategoryTotal, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryTotal{}, false
}

// Reconcile compares category totals to base and returns a *Mismatch error
// when they differ by a single cent or spot.
func Reconcile(year int, base Totals, cats []CategoryTotal) (Reconciliation, error) {
	rec := Reconciliation{BaseRevenue: base.Revenue, BaseSpots: base.Spots}
	for _, c := range cats {
		rec.CategoryRevenue += c.Revenue
		rec.CategorySpots += c.Spots
	}
	rec.RevenueDelta = rec.CategoryRevenue - rec.BaseRevenue
	rec.SpotDelta = rec.CategorySpots - rec.BaseSpots
	if rec.OK() {
		return rec, nil
	}
	detail := make([]CategoryTotal, len(cats))
	copy(detail, cats)
	return rec, &Mismatch{Year: year, Reconciliation: rec, Categories: detail}
}

func percentOf(part, whole spots.Cents) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func yearLabel(year int) string {
	if year == 0 {
		return "all years"
	}
	return fmt.Sprintf("%d", year)
}
