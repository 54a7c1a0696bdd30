package spots

import "time"

// Intent is the customer targeting intent inferred from block overlap.
type Intent string

const (
	IntentNoGridCoverage   Intent = "no_grid_coverage"
	IntentLanguageSpecific Intent = "language_specific"
	IntentTimeSpecific     Intent = "time_specific"
	IntentIndifferent      Intent = "indifferent"
)

// Valid reports whether i is one of the four known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentNoGridCoverage, IntentLanguageSpecific, IntentTimeSpecific, IntentIndifferent:
		return true
	}
	return false
}

// Assignment links a spot to the grid it aired under. There is at most one
// per spot; reassigning replaces it wholesale.
type Assignment struct {
	SpotID     int64  `json:"spot_id"`
	ScheduleID *int64 `json:"schedule_id"`
	// BlockID is set only when exactly one block matched.
	BlockID *int64 `json:"block_id"`
	// PrimaryBlockID is the reporting block whenever at least one block matched.
	PrimaryBlockID    *int64    `json:"primary_block_id"`
	Intent            Intent    `json:"intent"`
	SpansMultiple     bool      `json:"spans_multiple"`
	SpannedBlockIDs   []int64   `json:"spanned_block_ids,omitempty"`
	RequiresAttention bool      `json:"requires_attention"`
	Reason            string    `json:"reason"`
	Degraded          bool      `json:"degraded,omitempty"`
	Method            string    `json:"method"`
	AssignedAt        time.Time `json:"assigned_at"`
}

// SingleBlock reports whether the assignment resolved to exactly one block.
func (a *Assignment) SingleBlock() bool {
	return a != nil && a.BlockID != nil && !a.SpansMultiple
}

// NoSingleBlock reports whether an assignment exists but did not resolve to
// exactly one block (multiple blocks or no coverage).
func (a *Assignment) NoSingleBlock() bool {
	return a != nil && !a.SingleBlock()
}

// Equivalent compares the decision content of two assignments, ignoring
// bookkeeping fields such as AssignedAt and Method.
func (a Assignment) Equivalent(b Assignment) bool {
	if a.SpotID != b.SpotID || a.Intent != b.Intent || a.SpansMultiple != b.SpansMultiple ||
		a.RequiresAttention != b.RequiresAttention || a.Reason != b.Reason || a.Degraded != b.Degraded {
		return false
	}
	if !sameID(a.ScheduleID, b.ScheduleID) || !sameID(a.BlockID, b.BlockID) || !sameID(a.PrimaryBlockID, b.PrimaryBlockID) {
		return false
	}
	if len(a.SpannedBlockIDs) != len(b.SpannedBlockIDs) {
		return false
	}
	for i := range a.SpannedBlockIDs {
		if a.SpannedBlockIDs[i] != b.SpannedBlockIDs[i] {
			return false
		}
	}
	return true
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ID returns a pointer to v, for populating nullable identifier fields.
func ID(v int64) *int64 {
	return &v
}
