package spots

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day expressed in seconds since midnight. 24:00:00 is a
// valid value and marks the end of the broadcast day.
type Clock int

const (
	// Midnight is the end-of-day sentinel (24:00:00).
	Midnight Clock = 24 * 60 * 60
	// MinutesPerDay is the exclusive upper bound for minute comparisons.
	MinutesPerDay = 24 * 60
)

// ParseClock accepts HH:MM or HH:MM:SS values.
func ParseClock(value string) (Clock, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("clock: empty value")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("clock: %q is not HH:MM[:SS]", value)
	}
	fields := [3]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("clock: %q is not HH:MM[:SS]", value)
		}
		fields[i] = n
	}
	hours, minutes, seconds := fields[0], fields[1], fields[2]
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("clock: %q out of range", value)
	}
	if hours > 24 || (hours == 24 && (minutes > 0 || seconds > 0)) {
		return 0, fmt.Errorf("clock: %q out of range", value)
	}
	return Clock(hours*3600 + minutes*60 + seconds), nil
}

// MustClock parses value and panics on error. Intended for fixtures and constants.
func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns the clock truncated to whole minutes since midnight.
func (c Clock) Minutes() int {
	return int(c) / 60
}

// CeilMinutes returns the clock rounded up to whole minutes since midnight.
func (c Clock) CeilMinutes() int {
	return (int(c) + 59) / 60
}

// EndMinutes returns the minute value to use when c closes an interval. Block
// grids conventionally close the day at 23:59 or 23:59:59; both mean midnight.
func (c Clock) EndMinutes() int {
	if c >= MustClock("23:59") {
		return MinutesPerDay
	}
	return c.Minutes()
}

func (c Clock) String() string {
	total := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// ParseDay resolves a day-of-week name case-insensitively.
func ParseDay(value string) (time.Weekday, error) {
	day, ok := dayNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("day of week: unknown value %q", value)
	}
	return day, nil
}

// DayName returns the canonical lowercase name stored for a weekday.
func DayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// IsWeekend reports whether day falls on Saturday or Sunday.
func IsWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}
