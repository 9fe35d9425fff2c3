// Package constants provides shared constants for the unsub-forecast application.
package constants

// Projection window constants
const (
	// ProjectionYears is the number of years in every projected and historical series.
	ProjectionYears = 5

	// FirstProjectedYear is the calendar year of projected year index 0.
	FirstProjectedYear = 2019

	// FirstHistoricalYear is the calendar year of historical index 0, used for
	// citation, authorship and open access lookups.
	FirstHistoricalYear = 2015

	// PaperYearOffset shifts historical paper counts one year back relative to
	// FirstHistoricalYear.
	PaperYearOffset = 1

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// DefaultDownloadCurve is the normalized downloads-by-age shape used when the
// exponential fit is missing or poor. Ages 0 through 4.
var DefaultDownloadCurve = [ProjectionYears]float64{0.371269, 0.137739, 0.095896, 0.072885, 0.058849}

// Curve fitting constants
const (
	// MinDecayRSquared is the coefficient of determination at or above which the
	// exponential download fit is used instead of DefaultDownloadCurve.
	MinDecayRSquared = 0.75

	// FitEpsilon regularizes both sums of squares in the R² computation.
	FitEpsilon = 0.0001
)

// Rounding and tolerance constants
const (
	// SeriesPrecision is the number of decimals kept on rounded projection values.
	SeriesPrecision = 4

	// RatioPrecision is the number of decimals kept on per-use cost ratios.
	RatioPrecision = 6

	// MinUseTotal is the floor applied to a journal's mean usage so percentages
	// never divide by zero.
	MinUseTotal = 0.0001

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RelativeTolerance is the tolerance used when checking channel totals.
	RelativeTolerance = 1e-6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Report view constants. Each view selects the per-journal row type.
const (
	ViewTable       = "table"
	ViewCost        = "cost"
	ViewFulfillment = "fulfillment"
	ViewOA          = "oa"
	ViewImpact      = "impact"
	ViewTimeline    = "timeline"
	ViewExport      = "export"
	ViewReport      = "report"
	ViewSlider      = "slider"
	ViewDetails     = "details"

	// DefaultView is the view used when none is configured.
	DefaultView = ViewTable
)

// Views lists every report view in display order.
var Views = []string{
	ViewTable, ViewCost, ViewFulfillment, ViewOA, ViewImpact,
	ViewTimeline, ViewExport, ViewReport, ViewSlider, ViewDetails,
}

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultPageSize is the default number of journals printed in reports.
	DefaultPageSize = 50
)
