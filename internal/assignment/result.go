package assignment

import (
	"sort"
	"sync"
	"time"

	"spotgrid/internal/services"
	"spotgrid/internal/spots"
)

// Outcome labels for a processed spot.
const (
	OutcomeAssigned   = "assigned"
	OutcomeNoCoverage = "no_coverage"
)

// SpotError records why a single spot could not be assigned.
type SpotError struct {
	SpotID  int64  `json:"spot_id"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Result summarizes a batch run.
type Result struct {
	RunID          string        `json:"run_id"`
	Processed      int           `json:"processed"`
	Assigned       int           `json:"assigned"`
	NoCoverage     int           `json:"no_coverage"`
	SkippedInvalid int           `json:"skipped_invalid"`
	Errors         int           `json:"errors"`
	Failures       []SpotError   `json:"failures,omitempty"`
	GridIssues     int           `json:"grid_issues"`
	Duration       time.Duration `json:"duration"`
	Cancelled      bool          `json:"cancelled,omitempty"`
}

// tally collects per-spot outcomes from concurrent workers.
type tally struct {
	mu     sync.Mutex
	result Result
}

func (t *tally) success(a spots.Assignment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.Processed++
	if a.Intent == spots.IntentNoGridCoverage {
		t.result.NoCoverage++
		return
	}
	t.result.Assigned++
}

func (t *tally) failure(spotID int64, stage string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.Processed++
	if services.FailureOutcome(err) == services.OutcomeInvalid {
		t.result.SkippedInvalid++
	} else {
		t.result.Errors++
	}
	t.result.Failures = append(t.result.Failures, SpotError{SpotID: spotID, Stage: stage, Message: err.Error()})
}

func (t *tally) snapshot() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.result
	out.Failures = append([]SpotError(nil), t.result.Failures...)
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].SpotID < out.Failures[j].SpotID })
	return out
}
