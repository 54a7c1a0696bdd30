package intent

import (
	"fmt"
	"strings"

	"spotgrid/internal/grid"
	"spotgrid/internal/spots"
)

// DefaultMaxSpannedBlocks is the spanned-block count above which an assignment
// is flagged for manual audit.
const DefaultMaxSpannedBlocks = 3

// Classifier derives customer intent from block overlap.
type Classifier struct {
	MaxSpannedBlocks int
}

// New returns a classifier flagging assignments that span more than maxSpanned blocks.
func New(maxSpanned int) Classifier {
	if maxSpanned <= 0 {
		maxSpanned = DefaultMaxSpannedBlocks
	}
	return Classifier{MaxSpannedBlocks: maxSpanned}
}

// Classify builds the assignment for spot. resolution is nil when no schedule
// governs the spot's market and date.
func (c Classifier) Classify(spot spots.Spot, resolution *grid.Resolution, blocks []grid.Block) spots.Assignment {
	maxSpanned := c.MaxSpannedBlocks
	if maxSpanned <= 0 {
		maxSpanned = DefaultMaxSpannedBlocks
	}

	out := spots.Assignment{SpotID: spot.ID, Intent: spots.IntentNoGridCoverage}
	if resolution == nil {
		out.Reason = "no programming grid for this market"
		return out
	}
	out.ScheduleID = spots.ID(resolution.ScheduleID)
	out.Degraded = resolution.Degraded

	switch len(blocks) {
	case 0:
		out.Reason = fmt.Sprintf("no language block on %q covers %s-%s", resolution.Name, spot.StartTime, spot.EndTime)
		return c.withDegradedNote(out)
	case 1:
		b := blocks[0]
		out.BlockID = spots.ID(b.ID)
		out.PrimaryBlockID = spots.ID(b.ID)
		declared := spots.NormalizeLanguage(spot.Language)
		if declared == "" || spots.SameLanguage(declared, b.Language) {
			out.Intent = spots.IntentLanguageSpecific
			if declared == "" {
				out.Reason = fmt.Sprintf("single block %q, no declared language", b.Name)
			} else {
				out.Reason = fmt.Sprintf("single block %q matches %s", b.Name, b.Language)
			}
		} else {
			out.Intent = spots.IntentTimeSpecific
			out.RequiresAttention = true
			out.Reason = fmt.Sprintf("single block %q is %s but spot declares %s", b.Name, b.Language, spot.Language)
		}
		return c.withDegradedNote(out)
	}

	out.SpansMultiple = true
	out.SpannedBlockIDs = make([]int64, 0, len(blocks))
	for _, b := range blocks {
		out.SpannedBlockIDs = append(out.SpannedBlockIDs, b.ID)
	}
	primary := PrimaryBlock(spot.Language, blocks)
	out.PrimaryBlockID = spots.ID(primary.ID)

	languages := distinct(blocks, func(b grid.Block) string { return spots.NormalizeLanguage(b.Language) })
	dayParts := distinct(blocks, func(b grid.Block) string { return strings.ToLower(strings.TrimSpace(b.DayPart)) })
	switch {
	case len(languages) > 1:
		out.Intent = spots.IntentIndifferent
		out.Reason = fmt.Sprintf("spans %d blocks across languages %s", len(blocks), strings.Join(languages, ", "))
	case len(dayParts) > 1:
		out.Intent = spots.IntentIndifferent
		out.Reason = fmt.Sprintf("spans %d %s blocks across day parts %s", len(blocks), languages[0], strings.Join(dayParts, ", "))
	default:
		out.Intent = spots.IntentTimeSpecific
		out.Reason = fmt.Sprintf("spans %d %s blocks in one day part", len(blocks), languages[0])
	}
	if len(blocks) > maxSpanned {
		out.RequiresAttention = true
		out.Reason += fmt.Sprintf("; spans more than %d blocks", maxSpanned)
	}
	return c.withDegradedNote(out)
}

func (c Classifier) withDegradedNote(a spots.Assignment) spots.Assignment {
	if a.Degraded {
		a.Reason += "; resolved by fallback to active market grid"
	}
	return a
}

// PrimaryBlock selects the reporting block among several matches: the first
// block in the spot's declared language, otherwise the earliest-starting one.
// blocks must be non-empty.
func PrimaryBlock(language string, blocks []grid.Block) grid.Block {
	if declared := spots.NormalizeLanguage(language); declared != "" {
		for _, b := range blocks {
			if spots.SameLanguage(declared, b.Language) {
				return b
			}
		}
	}
	earliest := blocks[0]
	for _, b := range blocks[1:] {
		if b.Start < earliest.Start || (b.Start == earliest.Start && b.ID < earliest.ID) {
			earliest = b
		}
	}
	return earliest
}

func distinct(blocks []grid.Block, key func(grid.Block) string) []string {
	seen := make(map[string]struct{}, len(blocks))
	var out []string
	for _, b := range blocks {
		k := key(b)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
