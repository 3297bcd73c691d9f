// Package quantity parses and formats the "<number> [unit]" strings used by
// recipes and catalog package specs.
package quantity

import (
	"math"
	"strconv"
	"strings"
)

// IntegerTolerance is how close a value must be to a whole number to be
// rendered without decimals.
const IntegerTolerance = 1e-9

// Quantity is the result of parsing a quantity string. A failed parse is not
// an error: OK is false and Value is 1 so callers count it as one unit.
type Quantity struct {
	OK    bool    `json:"ok"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

var failed = Quantity{OK: false, Value: 1.0}

// Parse reads "3", "0.5 Oz" or "2 cups chopped". Anything else fails.
func Parse(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return failed
	}
	if v, ok := parseNumber(s); ok {
		return Quantity{OK: true, Value: v}
	}
	prefix, suffix, found := strings.Cut(s, " ")
	if !found {
		return failed
	}
	v, ok := parseNumber(prefix)
	if !ok {
		return failed
	}
	return Quantity{OK: true, Value: v, Unit: strings.TrimSpace(suffix)}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatValue renders whole numbers without decimals and everything else with
// two, always with a '.' decimal point.
func FormatValue(v float64) string {
	return FormatValueWithin(v, IntegerTolerance)
}

// FormatValueWithin is FormatValue with a caller chosen whole-number tolerance.
func FormatValueWithin(v, tolerance float64) string {
	r := math.Round(v)
	if math.Abs(v-r) < tolerance {
		if r == 0 {
			r = 0 // drop negative zero
		}
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// String formats the value and appends the unit when there is one.
func (q Quantity) String() string {
	if q.Unit == "" {
		return FormatValue(q.Value)
	}
	return FormatValue(q.Value) + " " + q.Unit
}

// Scale returns q with its value multiplied by f.
func (q Quantity) Scale(f float64) Quantity {
	q.Value *= f
	return q
}

// PackageCount is how many packages of packageSize cover needed. Nothing is
// bought for a non-positive need and broken package data buys one.
func PackageCount(needed, packageSize float64) int {
	if needed <= 0 {
		return 0
	}
	if packageSize <= 0 {
		return 1
	}
	// 0.3/0.1 is 2.9999999999999996; don't let float noise round up a package.
	return int(math.Ceil(needed/packageSize - 1e-9))
}
