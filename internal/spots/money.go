package spots

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents holds a monetary amount in whole cents so category sums reconcile exactly.
type Cents int64

// ParseCents converts a decimal amount such as "1234.5" or "-12.05" to cents.
func ParseCents(value string) (Cents, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	trimmed = strings.TrimPrefix(trimmed, "$")
	if trimmed == "" {
		return 0, fmt.Errorf("amount: empty value")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("amount: %q: %w", value, err)
	}
	return FromFloat(f), nil
}

// FromFloat rounds a floating point dollar amount half away from zero.
func FromFloat(dollars float64) Cents {
	return Cents(math.Round(dollars * 100))
}

// Dollars returns the amount as a float for display or percentage math only.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
