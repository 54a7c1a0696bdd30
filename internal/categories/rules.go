package categories

import (
	"strings"
	"time"

	"spotgrid/internal/spots"
)

// Category names. The prime-time category name is configurable.
const (
	DirectResponse       = "Direct Response"
	BrandedContent       = "Branded Content"
	Services             = "Services"
	OvernightShopping    = "Overnight Shopping"
	IndividualLanguage   = "Individual Language Blocks"
	Roadblocks           = "Roadblocks"
	DefaultPrimeTimeName = "Prime-Time Cross-Audience"
	MultiLanguage        = "Multi-Language Cross-Audience"
	Other                = "Other"
)

// Candidate is one base-population spot together with its assignment, which
// is nil when the spot was never assigned.
type Candidate struct {
	Spot       spots.Spot
	Assignment *spots.Assignment
}

// Predicate decides whether a rule claims a candidate.
type Predicate func(Candidate) bool

// Rule is one named step of the partition.
type Rule struct {
	Name    string
	Matches Predicate
}

// Rules returns the partition rules in precedence order. roadblockIDs is the
// roadblock set for the year being partitioned.
func Rules(settings Settings, roadblockIDs map[int64]struct{}) []Rule {
	primeName := settings.PrimeTimeName
	if primeName == "" {
		primeName = DefaultPrimeTimeName
	}
	return []Rule{
		{Name: DirectResponse, Matches: func(c Candidate) bool {
			return containsAny(c.Spot.Agency, settings.DirectResponseAgencies) ||
				containsAny(c.Spot.BillCode, settings.DirectResponseAgencies)
		}},
		{Name: BrandedContent, Matches: func(c Candidate) bool {
			return c.Spot.SpotType == spots.SpotTypeProduction && !c.Assignment.SingleBlock()
		}},
		{Name: Services, Matches: func(c Candidate) bool {
			return c.Spot.SpotType == spots.SpotTypeService && !c.Assignment.SingleBlock()
		}},
		{Name: OvernightShopping, Matches: func(c Candidate) bool {
			return containsAny(c.Spot.Customer, settings.OvernightShoppingCustomers) && !c.Assignment.SingleBlock()
		}},
		{Name: IndividualLanguage, Matches: func(c Candidate) bool {
			return c.Assignment.SingleBlock()
		}},
		{Name: Roadblocks, Matches: func(c Candidate) bool {
			_, ok := roadblockIDs[c.Spot.ID]
			return ok
		}},
		{Name: primeName, Matches: func(c Candidate) bool {
			return c.Assignment.NoSingleBlock() && inPrimeTime(c.Spot, settings.PrimeTime)
		}},
		{Name: MultiLanguage, Matches: func(c Candidate) bool {
			return c.Assignment.NoSingleBlock() && !containsAny(c.Spot.Customer, settings.OvernightShoppingCustomers)
		}},
		{Name: Other, Matches: func(Candidate) bool { return true }},
	}
}

func inPrimeTime(spot spots.Spot, windows []PrimeTimeWindow) bool {
	if len(windows) == 0 {
		return false
	}
	start, end, err := spot.Window()
	if err != nil {
		return false
	}
	day, err := spots.ParseDay(spot.DayOfWeek)
	if err != nil {
		if spot.AirDate.IsZero() {
			return false
		}
		day = spot.AirDate.Weekday()
	}
	return anyWindow(windows, day, start, end, spot.Language)
}

func anyWindow(windows []PrimeTimeWindow, day time.Weekday, start, end spots.Clock, language string) bool {
	for _, w := range windows {
		if w.Contains(day, start, end, language) {
			return true
		}
	}
	return false
}

// InBase reports whether a spot belongs to the revenue base: its revenue type
// is not excluded, and it carries a gross rate or is a bonus spot.
func InBase(settings Settings, spot spots.Spot) bool {
	for _, excluded := range settings.ExcludedRevenueTypes {
		if strings.EqualFold(strings.TrimSpace(excluded), strings.TrimSpace(spot.RevenueType)) {
			return false
		}
	}
	return spot.GrossRate != nil || spot.SpotType == spots.SpotTypeBonus
}
