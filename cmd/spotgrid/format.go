package main

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"spotgrid/internal/spots"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatMoney renders cents as dollars with thousands separators.
func formatMoney(c spots.Cents) string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprintf("%d", v/100), v%100)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatOptionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
