package testsupport

import (
	"time"

	"spotgrid/internal/spots"
)

// FixtureMonday is a Monday in the fixture broadcast year.
var FixtureMonday = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

// SpotOption customizes a fixture spot.
type SpotOption func(*spots.Spot)

// NewSpot returns a valid paid Monday spot on FixtureMarket airing
// 10:00-10:30 at $100.00.
func NewSpot(id int64, opts ...SpotOption) spots.Spot {
	rate := spots.Cents(10000)
	spot := spots.Spot{
		ID:          id,
		MarketID:    FixtureMarket,
		AirDate:     FixtureMonday,
		DayOfWeek:   "Monday",
		StartTime:   "10:00:00",
		EndTime:     "10:30:00",
		Customer:    "Acme Autos",
		Agency:      "Local Direct",
		GrossRate:   &rate,
		SpotType:    spots.SpotTypeStandard,
		RevenueType: "Internal Ad Sales",
	}
	for _, opt := range opts {
		opt(&spot)
	}
	return spot
}

// At sets the day and start/end times.
func At(day, start, end string) SpotOption {
	return func(s *spots.Spot) {
		s.DayOfWeek = day
		s.StartTime = start
		s.EndTime = end
	}
}

// OnDate sets the air date and derives the day of week from it.
func OnDate(date time.Time) SpotOption {
	return func(s *spots.Spot) {
		s.AirDate = date
		s.DayOfWeek = date.Weekday().String()
	}
}

// Language sets the declared language code.
func Language(code string) SpotOption {
	return func(s *spots.Spot) { s.Language = code }
}

// Customer sets the customer name.
func Customer(name string) SpotOption {
	return func(s *spots.Spot) { s.Customer = name }
}

// Agency sets the agency name.
func Agency(name string) SpotOption {
	return func(s *spots.Spot) { s.Agency = name }
}

// BillCode sets the bill code.
func BillCode(code string) SpotOption {
	return func(s *spots.Spot) { s.BillCode = code }
}

// Rate sets the gross rate in cents.
func Rate(cents int64) SpotOption {
	return func(s *spots.Spot) {
		v := spots.Cents(cents)
		s.GrossRate = &v
	}
}

// NoRate clears the gross rate.
func NoRate() SpotOption {
	return func(s *spots.Spot) { s.GrossRate = nil }
}

// Type sets the spot type.
func Type(t spots.SpotType) SpotOption {
	return func(s *spots.Spot) { s.SpotType = t }
}

// RevenueType sets the revenue type.
func RevenueType(value string) SpotOption {
	return func(s *spots.Spot) { s.RevenueType = value }
}

// Market sets the market id.
func Market(id int64) SpotOption {
	return func(s *spots.Spot) { s.MarketID = id }
}
