package spots

import (
	"strings"
	"time"
)

// SpotType is the traffic classification of a spot.
type SpotType string

const (
	SpotTypeStandard   SpotType = "standard"
	SpotTypeBonus      SpotType = "bonus"
	SpotTypeProduction SpotType = "production"
	SpotTypeService    SpotType = "service"
)

// ParseSpotType accepts canonical names and the traffic-system codes COM, BNS,
// PRD, and SVC. Unknown or empty values are treated as standard spots.
func ParseSpotType(value string) SpotType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bonus", "bns", "bb":
		return SpotTypeBonus
	case "production", "prd":
		return SpotTypeProduction
	case "service", "svc":
		return SpotTypeService
	default:
		return SpotTypeStandard
	}
}

// Spot is a single aired advertisement as delivered by ingestion. Time fields
// keep their ingested text so malformed rows can be detected and reported
// instead of silently coerced.
type Spot struct {
	ID          int64     `validate:"required"`
	MarketID    int64     `validate:"required"`
	AirDate     time.Time `validate:"required"`
	DayOfWeek   string    `validate:"required,weekday"`
	StartTime   string    `validate:"required,clock"`
	EndTime     string    `validate:"required,clock"`
	Language    string
	Customer    string
	Agency      string
	BillCode    string
	GrossRate   *Cents
	SpotType    SpotType
	RevenueType string
}

// Revenue returns the gross rate or zero when the spot carries none.
func (s Spot) Revenue() Cents {
	if s.GrossRate == nil {
		return 0
	}
	return *s.GrossRate
}

// Window parses the spot's start and end times. An end earlier than the start
// means the spot ran past midnight; the window is clamped to the end of day.
func (s Spot) Window() (Clock, Clock, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		end = Midnight
	}
	return start, end, nil
}

// Year returns the broadcast year of the spot.
func (s Spot) Year() int {
	return s.AirDate.Year()
}
