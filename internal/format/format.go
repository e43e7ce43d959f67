// Package format renders financial values for display and builds the key
// metric cards.
package format

import (
	"math"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

// fixed rounds half away from zero to places decimals.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Currency formats an amount in millions USD: $x.xB from 1000 up, else $x.xM.
func Currency(millions float64) string {
	if missing(millions) {
		return NotAvailable
	}
	if millions >= 1000 {
		return "$" + fixed(millions/1000, 1) + "B"
	}
	return "$" + fixed(millions, 1) + "M"
}

// CurrencyBillions formats an amount in billions USD: $x.xT from 1000 up,
// else $x.xB.
func CurrencyBillions(billions float64) string {
	if missing(billions) {
		return NotAvailable
	}
	if billions >= 1000 {
		return "$" + fixed(billions/1000, 1) + "T"
	}
	return "$" + fixed(billions, 1) + "B"
}

// Number abbreviates counts: x.xM, x.xK, else a whole number.
func Number(v float64) string {
	switch {
	case missing(v):
		return NotAvailable
	case v >= 1e6:
		return fixed(v/1e6, 1) + "M"
	case v >= 1e3:
		return fixed(v/1e3, 1) + "K"
	default:
		return fixed(v, 0)
	}
}

// EPS formats earnings per share as $x.xx.
func EPS(v float64) string {
	if missing(v) {
		return NotAvailable
	}
	return "$" + fixed(v, 2)
}

// Percent formats a percentage value as x.x%.
func Percent(v float64) string {
	if missing(v) {
		return NotAvailable
	}
	return fixed(v, 1) + "%"
}

// Delta formats a percent change with an explicit sign.
func Delta(v float64) string {
	if missing(v) {
		return ""
	}
	if v > 0 {
		return "+" + fixed(v, 1) + "%"
	}
	return fixed(v, 1) + "%"
}

// Billions formats a millions amount as $x.xB without switching units, the
// way the summary table shows revenue and net income.
func Billions(millions float64) string {
	if missing(millions) {
		return NotAvailable
	}
	return "$" + fixed(millions/1000, 1) + "B"
}

// Round rounds half away from zero to places decimals. NaN stays NaN.
func Round(v float64, places int32) float64 {
	if missing(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// MarketCap formats a billions amount as $x.xB without switching units.
func MarketCap(billions float64) string {
	if missing(billions) {
		return NotAvailable
	}
	return "$" + fixed(billions, 1) + "B"
}
