// Package curvefit fits the two regression models used by journal
// projections: an exponential decay over downloads by paper age, and a linear
// trend over papers published per year.
package curvefit

import (
	"errors"
	"math"

	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// ErrNoFit is returned when a fit does not converge or produces non-finite
// parameters. Callers fall back to a default shape.
var ErrNoFit = errors.New("curve fit did not converge")

const (
	decayGuessB        = 30.0
	decayGuessC        = -1.0
	maxFuncEvaluations = 20000
	convergeIterations = 200
)

// DecayFit is the result of fitting f(age) = b + a·exp(age/c).
type DecayFit struct {
	A, B, C  float64
	Fitted   mathutil.Series
	RSquared float64
}

// Good reports whether the fit is authoritative.
func (f DecayFit) Good() bool {
	return f.RSquared >= constants.MinDecayRSquared
}

// TrendFit is the result of fitting f(index) = b + m·index over the
// historical window, extrapolated over the projection window.
type TrendFit struct {
	Intercept float64
	Slope     float64
	Fitted    mathutil.Series
	// Extrapolated holds the raw model values for indexes 5 through 9.
	Extrapolated mathutil.Series
	RSquared     float64
}

// Projected returns the extrapolated values floored at zero.
func (f TrendFit) Projected() mathutil.Series {
	return f.Extrapolated.Map(func(_ int, v float64) float64 { return mathutil.NonNegative(v) })
}

// Reference returns the fitted value at the last historical index.
func (f TrendFit) Reference() float64 {
	return f.Fitted[len(f.Fitted)-1]
}

// FitDownloadDecay fits an exponential decay to downloads by age 0 through 4
// by non-linear least squares, seeded with (max(y), 30, -1).
func FitDownloadDecay(y mathutil.Series) (DecayFit, error) {
	if !finite(y[:]) {
		return DecayFit{}, ErrNoFit
	}

	// The amplitude and offset are searched in units of the largest
	// observation so the initial simplex is proportionate to the data.
	scale := math.Max(floats.Max(absAll(y[:])), 1)
	guess := []float64{floats.Max(y[:]) / scale, decayGuessB / scale, decayGuessC}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			ss := 0.0
			for age, observed := range y {
				r := (decay(float64(age), p[0]*scale, p[1]*scale, p[2]) - observed) / scale
				ss += r * r
			}
			if math.IsNaN(ss) || math.IsInf(ss, 0) {
				return math.Inf(1)
			}
			return ss
		},
	}
	fitSettings := &optimize.Settings{
		FuncEvaluations: maxFuncEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: convergeIterations,
		},
	}

	result, err := optimize.Minimize(problem, guess, fitSettings, &optimize.NelderMead{})
	if err != nil || result == nil {
		return DecayFit{}, ErrNoFit
	}

	fit := DecayFit{
		A: result.X[0] * scale,
		B: result.X[1] * scale,
		C: result.X[2],
	}
	for age := range fit.Fitted {
		fit.Fitted[age] = decay(float64(age), fit.A, fit.B, fit.C)
	}
	if !finite([]float64{fit.A, fit.B, fit.C}) || !finite(fit.Fitted[:]) {
		return DecayFit{}, ErrNoFit
	}
	fit.RSquared = RSquared(y, fit.Fitted)
	return fit, nil
}

// FitPaperTrend fits a straight line to five historical paper counts, oldest
// first, and extrapolates it five years forward.
func FitPaperTrend(y mathutil.Series) (TrendFit, error) {
	if !finite(y[:]) {
		return TrendFit{}, ErrNoFit
	}

	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(x, y[:], nil, false)
	if !finite([]float64{intercept, slope}) {
		return TrendFit{}, ErrNoFit
	}

	fit := TrendFit{Intercept: intercept, Slope: slope}
	for i := range fit.Fitted {
		fit.Fitted[i] = intercept + slope*float64(i)
		fit.Extrapolated[i] = intercept + slope*float64(i+len(fit.Fitted))
	}
	fit.RSquared = RSquared(y, fit.Fitted)
	return fit, nil
}

// RSquared returns 1 - ss_res/ss_tot with both sums regularized by a small
// epsilon so constant series do not divide by zero.
func RSquared(observed, fitted mathutil.Series) float64 {
	mean := observed.Mean()
	ssRes, ssTot := constants.FitEpsilon, constants.FitEpsilon
	for i := range observed {
		r := observed[i] - fitted[i]
		d := observed[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	return 1 - ssRes/ssTot
}

func decay(age, a, b, c float64) float64 {
	return b + a*math.Exp(age/c)
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func absAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}
