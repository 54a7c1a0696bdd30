package categories

import (
	"fmt"
	"strings"
	"time"

	"spotgrid/internal/config"
	"spotgrid/internal/spots"
)

// PrimeTimeWindow is a parsed prime-time window.
type PrimeTimeWindow struct {
	Name      string
	Days      map[time.Weekday]bool
	Start     spots.Clock
	End       spots.Clock
	Languages []string
}

// Contains reports whether a spot airing on day from start to end falls
// entirely inside the window, honoring the optional language filter.
func (w PrimeTimeWindow) Contains(day time.Weekday, start, end spots.Clock, language string) bool {
	if !w.Days[day] {
		return false
	}
	if start.Minutes() < w.Start.Minutes() || end.EndMinutes() > w.End.EndMinutes() {
		return false
	}
	if len(w.Languages) == 0 {
		return true
	}
	for _, l := range w.Languages {
		if spots.SameLanguage(l, language) {
			return true
		}
	}
	return false
}

// Settings holds the business patterns the rules evaluate.
type Settings struct {
	DirectResponseAgencies     []string
	OvernightShoppingCustomers []string
	ExcludedRevenueTypes       []string
	PrimeTimeName              string
	PrimeTime                  []PrimeTimeWindow
}

// SettingsFromConfig parses the categories section of the configuration.
func SettingsFromConfig(cfg config.Categories) (Settings, error) {
	out := Settings{
		DirectResponseAgencies:     cfg.DirectResponseAgencies,
		OvernightShoppingCustomers: cfg.OvernightShoppingCustomers,
		ExcludedRevenueTypes:       cfg.ExcludedRevenueTypes,
		PrimeTimeName:              strings.TrimSpace(cfg.PrimeTimeName),
	}
	if out.PrimeTimeName == "" {
		out.PrimeTimeName = DefaultPrimeTimeName
	}
	for _, w := range cfg.PrimeTime {
		parsed := PrimeTimeWindow{Name: w.Name, Days: make(map[time.Weekday]bool, len(w.Days)), Languages: w.Languages}
		for _, d := range w.Days {
			day, err := spots.ParseDay(d)
			if err != nil {
				return Settings{}, fmt.Errorf("prime time %q: %w", w.Name, err)
			}
			parsed.Days[day] = true
		}
		var err error
		if parsed.Start, err = spots.ParseClock(w.Start); err != nil {
			return Settings{}, fmt.Errorf("prime time %q start: %w", w.Name, err)
		}
		if parsed.End, err = spots.ParseClock(w.End); err != nil {
			return Settings{}, fmt.Errorf("prime time %q end: %w", w.Name, err)
		}
		out.PrimeTime = append(out.PrimeTime, parsed)
	}
	return out, nil
}

// DefaultSettings returns the settings derived from the default configuration.
func DefaultSettings() Settings {
	s, err := SettingsFromConfig(config.Default().Categories)
	if err != nil {
		panic(err)
	}
	return s
}

func containsAny(value string, patterns []string) bool {
	for _, p := range patterns {
		if spots.ContainsFold(value, p) {
			return true
		}
	}
	return false
}
