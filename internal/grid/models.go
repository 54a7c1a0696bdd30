package grid

import (
	"time"

	"spotgrid/internal/spots"
)

// Schedule is a named weekly programming grid.
type Schedule struct {
	ID             int64
	Name           string
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	Active         bool
}

// Binding attaches a schedule to a market for a date range.
type Binding struct {
	ScheduleID     int64
	MarketID       int64
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	Priority       int
}

// Block is one language-targeted window on a schedule's weekly grid.
type Block struct {
	ID         int64
	ScheduleID int64
	Day        time.Weekday
	Start      spots.Clock
	End        spots.Clock
	Language   string
	Name       string
	BlockType  string
	DayPart    string
}

// StartMinute returns the inclusive start of the block in minutes since midnight.
func (b Block) StartMinute() int {
	return b.Start.Minutes()
}

// EndMinute returns the exclusive end of the block in minutes since midnight.
func (b Block) EndMinute() int {
	return b.End.EndMinutes()
}

// covers reports whether date falls in [start, end]; a nil end is open-ended.
func covers(start time.Time, end *time.Time, date time.Time) bool {
	d := dateOnly(date)
	if !start.IsZero() && d.Before(dateOnly(start)) {
		return false
	}
	if end != nil && d.After(dateOnly(*end)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
