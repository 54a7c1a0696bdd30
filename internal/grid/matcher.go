package grid

import (
	"fmt"

	"spotgrid/internal/spots"
)

// Match returns every block on the schedule for the given day whose half-open
// [start, end) window overlaps the spot's [start, end) window, compared in
// whole minutes. The spot's start rounds down and its end rounds up, so a spot
// ending at 12:00:30 overlaps a block starting at 12:00. Blocks come back
// ordered by start time. A spot shorter than a minute still occupies the
// minute it starts in.
func (s *Snapshot) Match(scheduleID int64, day string, start, end spots.Clock) ([]Block, error) {
	weekday, err := spots.ParseDay(day)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, fmt.Errorf("spot window %s-%s ends before it starts", start, end)
	}

	spotStart := start.Minutes()
	spotEnd := end.CeilMinutes()
	if spotEnd <= spotStart {
		spotEnd = spotStart + 1
	}

	var matched []Block
	for _, block := range s.Blocks(scheduleID, weekday) {
		if Overlaps(spotStart, spotEnd, block.StartMinute(), block.EndMinute()) {
			matched = append(matched, block)
		}
	}
	return matched, nil
}

// Overlaps is the half-open interval test: a.start < b.end && a.end > b.start.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
