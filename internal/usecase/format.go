package usecase

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// formatUSD renders an amount with thousands separators, e.g. 1234567.891 -> "1,234,567.89".
func formatUSD(v float64, places int) string {
	return humanize.FormatFloat("#,###."+strings.Repeat("#", places), v)
}

// formatPercent renders a fraction as a percentage, e.g. 0.0812 -> "8.12%".
func formatPercent(fraction float64, places int32) string {
	return decimal.NewFromFloat(fraction).Shift(2).StringFixed(places) + "%"
}
