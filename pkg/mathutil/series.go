// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"gonum.org/v1/gonum/floats"
)

// Series is one value per projected (or historical) year.
type Series [constants.ProjectionYears]float64

// RoundTo rounds a value to the given number of decimals.
func RoundTo(val float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(val*p) / p
}

// Round4 rounds a value to four decimals, the precision kept on projections.
func Round4(val float64) float64 {
	return RoundTo(val, constants.SeriesPrecision)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinRelative checks if two values agree within a relative tolerance,
// falling back to an absolute check near zero.
func WithinRelative(val1, val2, tolerance float64) bool {
	scale := math.Max(math.Abs(val1), math.Abs(val2))
	if scale < 1 {
		return math.Abs(val1-val2) <= tolerance
	}
	return math.Abs(val1-val2) <= tolerance*scale
}

// Clip bounds val to [lo, hi]. When hi < lo the result is lo.
func Clip(val, lo, hi float64) float64 {
	if val > hi {
		val = hi
	}
	if val < lo {
		val = lo
	}
	return val
}

// NonNegative returns val, or zero when val is negative or NaN.
func NonNegative(val float64) float64 {
	if val > 0 {
		return val
	}
	return 0
}

// Sum returns the sum of the series.
func (s Series) Sum() float64 {
	return floats.Sum(s[:])
}

// Mean returns the arithmetic mean of the series.
func (s Series) Mean() float64 {
	return s.Sum() / float64(len(s))
}

// Map applies fn to every year.
func (s Series) Map(fn func(year int, v float64) float64) Series {
	var out Series
	for year, v := range s {
		out[year] = fn(year, v)
	}
	return out
}

// Add returns the element-wise sum of s and other.
func (s Series) Add(other Series) Series {
	return s.Map(func(year int, v float64) float64 { return v + other[year] })
}

// Sub returns the element-wise difference s - other.
func (s Series) Sub(other Series) Series {
	return s.Map(func(year int, v float64) float64 { return v - other[year] })
}

// Scale multiplies every year by factor.
func (s Series) Scale(factor float64) Series {
	return s.Map(func(_ int, v float64) float64 { return v * factor })
}

// Flat returns a series holding v in every year.
func Flat(v float64) Series {
	var out Series
	for i := range out {
		out[i] = v
	}
	return out
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// PercentToFraction converts a percentage into a fraction.
func PercentToFraction(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// Compound returns base grown by percent for the given number of years.
func Compound(base, percent float64, years int) float64 {
	return math.Pow(1+PercentToFraction(percent), float64(years)) * base
}

// Float64Ptr returns a pointer to v, used for nullable ratios.
func Float64Ptr(v float64) *float64 {
	return &v
}
