// Package report maps projection state into report-shaped rows. Functions
// here only read journals and portfolios.
package report

import (
	"math"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/portfolio"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// Meta identifies a journal in every row.
type Meta struct {
	ISSNL      string `json:"issnl"`
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Subscribed bool   `json:"subscribed"`
}

func metaFor(j *journal.Journal) Meta {
	return Meta{ISSNL: j.ID(), Title: j.Title(), Subject: j.Subject(), Subscribed: j.Subscribed()}
}

// usePercent returns value as a whole percent of the journal's usage.
func usePercent(j *journal.Journal, value float64) float64 {
	return math.Round(mathutil.CalculatePercentage(value, j.UseTotal()))
}

// TableRow is the main per-journal overview.
type TableRow struct {
	Meta
	NCPPU                    *float64 `json:"ncppu"`
	NCPPURank                *int     `json:"ncppuRank"`
	Cost                     float64  `json:"cost"`
	Usage                    float64  `json:"usage"`
	InstantUsagePercent      float64  `json:"instantUsagePercent"`
	FreeInstantUsagePercent  float64  `json:"freeInstantUsagePercent"`
	SubscriptionCost         float64  `json:"subscriptionCost"`
	ILLCost                  float64  `json:"illCost"`
	SubscriptionMinusILLCost float64  `json:"subscriptionMinusIllCost"`

	UseSocialNetworksPercent float64 `json:"useSocialNetworksPercent"`
	UseOAPercent             float64 `json:"useOaPercent"`
	UseBackfilePercent       float64 `json:"useBackfilePercent"`
	UseSubscriptionPercent   float64 `json:"useSubscriptionPercent"`
	UseILLPercent            float64 `json:"useIllPercent"`
	UseOtherDelayedPercent   float64 `json:"useOtherDelayedPercent"`

	UseGreenPercent        float64 `json:"useGreenPercent"`
	UseHybridPercent       float64 `json:"useHybridPercent"`
	UseBronzePercent       float64 `json:"useBronzePercent"`
	UsePeerReviewedPercent float64 `json:"usePeerReviewedPercent"`

	Downloads   float64 `json:"downloads"`
	Citations   float64 `json:"citations"`
	Authorships float64 `json:"authorships"`
}

// TableRowFor builds the overview row for j.
func TableRowFor(p *portfolio.Portfolio, j *journal.Journal) TableRow {
	use := j.UseActual()
	oa := j.OABreakdown()
	row := TableRow{
		Meta:                     metaFor(j),
		NCPPU:                    j.NCPPU(),
		Cost:                     j.CostActual(),
		Usage:                    math.Round(j.UseTotal()),
		InstantUsagePercent:      math.Round(j.UseInstantPercent()),
		FreeInstantUsagePercent:  math.Round(j.UseFreeInstantPercent()),
		SubscriptionCost:         math.Round(j.CostSubscription()),
		ILLCost:                  math.Round(j.CostILL()),
		SubscriptionMinusILLCost: math.Round(j.CostSubscriptionMinusILL()),

		UseSocialNetworksPercent: usePercent(j, use[journal.ChannelSocialNetworks]),
		UseOAPercent:             usePercent(j, use[journal.ChannelOA]),
		UseBackfilePercent:       usePercent(j, use[journal.ChannelBackfile]),
		UseSubscriptionPercent:   usePercent(j, use[journal.ChannelSubscription]),
		UseILLPercent:            usePercent(j, use[journal.ChannelILL]),
		UseOtherDelayedPercent:   usePercent(j, use[journal.ChannelOtherDelayed]),

		UseGreenPercent:        usePercent(j, oa.Green.Usage),
		UseHybridPercent:       usePercent(j, oa.Hybrid.Usage),
		UseBronzePercent:       usePercent(j, oa.Bronze.Usage),
		UsePeerReviewedPercent: usePercent(j, oa.PeerReviewed.Usage),

		Downloads:   math.Round(j.DownloadsTotal()),
		Citations:   mathutil.RoundTo(j.NumCitations(), 1),
		Authorships: mathutil.RoundTo(j.NumAuthorships(), 1),
	}
	if rank, ok := p.Rank(portfolio.MetricNCPPU, j.Index()); ok {
		row.NCPPURank = &rank
	}
	return row
}

// ExportRow is TableRow with fuzzed labels for anonymized sharing.
type ExportRow struct {
	TableRow
	NCPPUFuzzed                    portfolio.FuzzLabel `json:"ncppuFuzzed"`
	SubscriptionCostFuzzed         portfolio.FuzzLabel `json:"subscriptionCostFuzzed"`
	SubscriptionMinusILLCostFuzzed portfolio.FuzzLabel `json:"subscriptionMinusIllCostFuzzed"`
	UsageFuzzed                    portfolio.FuzzLabel `json:"usageFuzzed"`
	DownloadsFuzzed                portfolio.FuzzLabel `json:"downloadsFuzzed"`
	CitationsFuzzed                portfolio.FuzzLabel `json:"citationsFuzzed"`
	AuthorshipsFuzzed              portfolio.FuzzLabel `json:"authorshipsFuzzed"`
}

// ExportRowFor builds the export row for j.
func ExportRowFor(p *portfolio.Portfolio, j *journal.Journal) ExportRow {
	i := j.Index()
	return ExportRow{
		TableRow:                       TableRowFor(p, j),
		NCPPUFuzzed:                    p.Fuzzed(portfolio.MetricNCPPU, i),
		SubscriptionCostFuzzed:         p.Fuzzed(portfolio.MetricCostSubscription, i),
		SubscriptionMinusILLCostFuzzed: p.Fuzzed(portfolio.MetricCostSubscriptionMinusILL, i),
		UsageFuzzed:                    p.Fuzzed(portfolio.MetricUseTotal, i),
		DownloadsFuzzed:                p.Fuzzed(portfolio.MetricDownloads, i),
		CitationsFuzzed:                p.Fuzzed(portfolio.MetricCitations, i),
		AuthorshipsFuzzed:              p.Fuzzed(portfolio.MetricAuthorships, i),
	}
}

// CostRow compares the scenario cost of a journal with its alternatives.
type CostRow struct {
	Meta
	NCPPU            *float64 `json:"ncppu"`
	ScenarioCost     float64  `json:"scenarioCost"`
	SubscriptionCost float64  `json:"subscriptionCost"`
	ILLCost          float64  `json:"illCost"`
	RealCost         float64  `json:"realCost"`
	OldSchoolCPU     *float64 `json:"oldSchoolCpu"`
	OldSchoolCPURank *int     `json:"oldSchoolCpuRank"`
}

// CostRowFor builds the cost row for j.
func CostRowFor(p *portfolio.Portfolio, j *journal.Journal) CostRow {
	row := CostRow{
		Meta:             metaFor(j),
		NCPPU:            j.NCPPU(),
		ScenarioCost:     math.Round(j.CostActual()),
		SubscriptionCost: math.Round(j.CostSubscription()),
		ILLCost:          math.Round(j.CostILL()),
		RealCost:         math.Round(j.CostSubscriptionMinusILL()),
		OldSchoolCPU:     j.OldSchoolCPU(),
	}
	if rank, ok := p.Rank(portfolio.MetricOldSchoolCPU, j.Index()); ok {
		row.OldSchoolCPURank = &rank
	}
	return row
}

// SliderRow carries the values an interactive cap slider needs to recompute
// a scenario without re-projecting.
type SliderRow struct {
	Meta
	UseTotal                 float64               `json:"useTotal"`
	CostSubscription         float64               `json:"costSubscription"`
	CostILL                  float64               `json:"costIll"`
	CostSubscriptionMinusILL float64               `json:"costSubscriptionMinusIll"`
	NCPPU                    *float64              `json:"ncppu"`
	UseInstant               float64               `json:"useInstant"`
	UseInstantPercent        float64               `json:"useInstantPercent"`
	UseFreeInstant           map[string]float64    `json:"useGroupsFreeInstant"`
	UseIfSubscribed          map[string]float64    `json:"useGroupsIfSubscribed"`
	UseIfNotSubscribed       map[string]float64    `json:"useGroupsIfNotSubscribed"`
	UseByChannel             journal.ChannelValues `json:"useByChannel"`
}

// SliderRowFor builds the slider row for j.
func SliderRowFor(_ *portfolio.Portfolio, j *journal.Journal) SliderRow {
	row := SliderRow{
		Meta:                     metaFor(j),
		UseTotal:                 j.UseTotal(),
		CostSubscription:         j.CostSubscription(),
		CostILL:                  j.CostILL(),
		CostSubscriptionMinusILL: j.CostSubscriptionMinusILL(),
		NCPPU:                    j.NCPPU(),
		UseInstant:               j.UseInstant(),
		UseInstantPercent:        j.UseInstantPercent(),
		UseFreeInstant:           map[string]float64{},
		UseIfSubscribed:          map[string]float64{},
		UseIfNotSubscribed:       map[string]float64{},
	}
	for _, c := range journal.Channels {
		v := j.UseMean(c)
		row.UseByChannel[c] = v
		switch {
		case c.FreeInstant():
			row.UseFreeInstant[c.String()] = v
		case c.Delayed():
			row.UseIfNotSubscribed[c.String()] = v
		default:
			row.UseIfSubscribed[c.String()] = v
		}
	}
	return row
}

// FulfillmentRow shows how a journal's usage is served.
type FulfillmentRow struct {
	Meta
	InstantUsagePercent float64 `json:"instantUsagePercent"`
	UseSocialNetworks   float64 `json:"useSocialNetworks"`
	UseOA               float64 `json:"useOa"`
	UseBackfile         float64 `json:"useBackfile"`
	UseSubscription     float64 `json:"useSubscription"`
	UseILL              float64 `json:"useIll"`
	UseOtherDelayed     float64 `json:"useOtherDelayed"`
	// Bin is the instant usage percent in tens, for histograms.
	Bin    int       `json:"bin"`
	Slider SliderRow `json:"slider"`
}

// FulfillmentRowFor builds the fulfillment row for j.
func FulfillmentRowFor(p *portfolio.Portfolio, j *journal.Journal) FulfillmentRow {
	use := j.UseActual()
	instant := j.UseInstantPercent()
	return FulfillmentRow{
		Meta:                metaFor(j),
		InstantUsagePercent: mathutil.RoundTo(instant, 1),
		UseSocialNetworks:   usePercent(j, use[journal.ChannelSocialNetworks]),
		UseOA:               usePercent(j, use[journal.ChannelOA]),
		UseBackfile:         usePercent(j, use[journal.ChannelBackfile]),
		UseSubscription:     usePercent(j, use[journal.ChannelSubscription]),
		UseILL:              usePercent(j, use[journal.ChannelILL]),
		UseOtherDelayed:     usePercent(j, use[journal.ChannelOtherDelayed]),
		Bin:                 int(instant) / 10,
		Slider:              SliderRowFor(p, j),
	}
}

// OARow breaks a journal's open access usage down by category.
type OARow struct {
	Meta
	UseOAPercent           float64 `json:"useOaPercent"`
	UseGreenPercent        float64 `json:"useGreenPercent"`
	UseHybridPercent       float64 `json:"useHybridPercent"`
	UseBronzePercent       float64 `json:"useBronzePercent"`
	UsePeerReviewedPercent float64 `json:"usePeerReviewedPercent"`
	EmbargoMonths          *int    `json:"oaEmbargoMonths"`
	Bin                    int     `json:"bin"`
}

// OARowFor builds the open access row for j.
func OARowFor(_ *portfolio.Portfolio, j *journal.Journal) OARow {
	oa := j.OABreakdown()
	oaUse := j.UseActual()[journal.ChannelOA]
	return OARow{
		Meta:                   metaFor(j),
		UseOAPercent:           usePercent(j, oaUse),
		UseGreenPercent:        usePercent(j, oa.Green.Usage),
		UseHybridPercent:       usePercent(j, oa.Hybrid.Usage),
		UseBronzePercent:       usePercent(j, oa.Bronze.Usage),
		UsePeerReviewedPercent: usePercent(j, oa.PeerReviewed.Usage),
		EmbargoMonths:          j.EmbargoMonths(),
		Bin:                    int(mathutil.CalculatePercentage(oaUse, j.UseTotal())) / 10,
	}
}

// ImpactRow shows the signals that make up a journal's usage.
type ImpactRow struct {
	Meta
	TotalUsage  float64 `json:"totalUsage"`
	Downloads   float64 `json:"downloads"`
	Citations   float64 `json:"citations"`
	Authorships float64 `json:"authorships"`
}

// ImpactRowFor builds the impact row for j.
func ImpactRowFor(_ *portfolio.Portfolio, j *journal.Journal) ImpactRow {
	return ImpactRow{
		Meta:        metaFor(j),
		TotalUsage:  math.Round(j.UseTotal()),
		Downloads:   math.Round(j.DownloadsTotal()),
		Citations:   mathutil.RoundTo(j.NumCitations(), 1),
		Authorships: mathutil.RoundTo(j.NumAuthorships(), 1),
	}
}

// TimelineRow holds a journal's per-year series.
type TimelineRow struct {
	Meta
	Years                   []int                 `json:"years"`
	HistoricalYears         []int                 `json:"historicalYears"`
	EmbargoMonths           *int                  `json:"oaEmbargoMonths"`
	CostActualByYear        mathutil.Series       `json:"costActualByYear"`
	CostSubscriptionByYear  mathutil.Series       `json:"costSubscriptionByYear"`
	CostILLByYear           mathutil.Series       `json:"costIllByYear"`
	UseTotalByYear          mathutil.Series       `json:"useTotalByYear"`
	DownloadsTotalByYear    mathutil.Series       `json:"downloadsTotalByYear"`
	NumPapersByYear         mathutil.Series       `json:"numPapersByYear"`
	GrowthByYear            mathutil.Series       `json:"growthScalingByYear"`
	UseActualByYear         journal.ChannelSeries `json:"useActualByYear"`
	DownloadsActualByYear   journal.ChannelSeries `json:"downloadsActualByYear"`
	UseInstantPercentByYear journal.PercentByYear `json:"useInstantPercentByYear"`
}

// TimelineRowFor builds the timeline row for j.
func TimelineRowFor(_ *portfolio.Portfolio, j *journal.Journal) TimelineRow {
	return TimelineRow{
		Meta:                    metaFor(j),
		Years:                   ProjectedYears(),
		HistoricalYears:         HistoricalYears(),
		EmbargoMonths:           j.EmbargoMonths(),
		CostActualByYear:        j.CostActualByYear(),
		CostSubscriptionByYear:  j.CostSubscriptionByYear(),
		CostILLByYear:           j.CostILLByYear(),
		UseTotalByYear:          j.UseTotalByYear(),
		DownloadsTotalByYear:    j.DownloadsTotalByYear(),
		NumPapersByYear:         j.NumPapersByYear(),
		GrowthByYear:            j.Growth(),
		UseActualByYear:         j.UseActualByYear(),
		DownloadsActualByYear:   j.DownloadsActualByYear(),
		UseInstantPercentByYear: j.UseInstantPercentByYear(),
	}
}

// ReportRow is the compact per-journal row of the overall report.
type ReportRow struct {
	Meta
	UsageFuzzed             portfolio.FuzzLabel   `json:"usageTotalFuzzed"`
	AuthorshipsFuzzed       portfolio.FuzzLabel   `json:"numAuthorshipsFuzzed"`
	CitationsFuzzed         portfolio.FuzzLabel   `json:"numCitationsFuzzed"`
	NumPapers               float64               `json:"numPapers"`
	UseInstantPercent       float64               `json:"useInstantPercent"`
	UseInstantPercentByYear journal.PercentByYear `json:"useInstantPercentByYear"`
	EmbargoMonths           *int                  `json:"oaEmbargoMonths"`
	Diagnostics             journal.Diagnostics   `json:"diagnostics"`
}

// ReportRowFor builds the report row for j.
func ReportRowFor(p *portfolio.Portfolio, j *journal.Journal) ReportRow {
	i := j.Index()
	return ReportRow{
		Meta:                    metaFor(j),
		UsageFuzzed:             p.Fuzzed(portfolio.MetricUseTotal, i),
		AuthorshipsFuzzed:       p.Fuzzed(portfolio.MetricAuthorships, i),
		CitationsFuzzed:         p.Fuzzed(portfolio.MetricCitations, i),
		NumPapers:               j.NumPapers(),
		UseInstantPercent:       j.UseInstantPercent(),
		UseInstantPercentByYear: j.UseInstantPercentByYear(),
		EmbargoMonths:           j.EmbargoMonths(),
		Diagnostics:             j.Diagnostics(),
	}
}

// CostLine is one cost type of the details cost table. CostPerUse divides
// the cost by paywalled usage and is nil when that usage is zero.
type CostLine struct {
	Type             string                              `json:"costType"`
	Cost             float64                             `json:"costAvg"`
	CostPerUse       *float64                            `json:"costPerUse"`
	CostByYear       mathutil.Series                     `json:"costByYear"`
	CostPerUseByYear [constants.ProjectionYears]*float64 `json:"costPerUseByYear"`
}

// DetailsDebug holds the intermediate values behind a journal's projection.
type DetailsDebug struct {
	CounterMultiplier             float64             `json:"downloadsCounterMultiplier"`
	CounterMultiplierNormalized   float64             `json:"downloadsCounterMultiplierNormalized"`
	UseWeightMultiplier           float64             `json:"useWeightMultiplier"`
	UseWeightMultiplierNormalized float64             `json:"useWeightMultiplierNormalized"`
	DownloadsPerPaperByAge        mathutil.Series     `json:"downloadsPerPaperByAge"`
	DownloadsOlderThanFive        float64             `json:"downloadsOlderThanFive"`
	Diagnostics                   journal.Diagnostics `json:"diagnostics"`
}

// DetailsRow is the single-journal drill down.
type DetailsRow struct {
	Meta
	Publisher         string       `json:"publisher"`
	IsSociety         bool         `json:"isSocietyJournal"`
	NumPapers         float64      `json:"numPapers"`
	NCPPU             *float64     `json:"ncppu"`
	UseInstantPercent float64      `json:"useInstantPercent"`
	Years             []int        `json:"years"`
	Cost              []CostLine   `json:"cost"`
	Debug             DetailsDebug `json:"debug"`
}

// DetailsRowFor builds the drill down for j.
func DetailsRowFor(p *portfolio.Portfolio, j *journal.Journal) DetailsRow {
	paywalled := j.Usage(journal.ChannelSubscription)
	line := func(name string, byYear mathutil.Series) CostLine {
		l := CostLine{
			Type:       name,
			Cost:       mathutil.Round4(byYear.Mean()),
			CostPerUse: perUse(byYear.Mean(), j.UsePaywalled()),
			CostByYear: byYear,
		}
		for year := range byYear {
			l.CostPerUseByYear[year] = perUse(byYear[year], paywalled[year])
		}
		return l
	}

	return DetailsRow{
		Meta:              metaFor(j),
		Publisher:         j.Publisher(),
		IsSociety:         j.IsSociety(),
		NumPapers:         j.NumPapers(),
		NCPPU:             j.NCPPU(),
		UseInstantPercent: j.UseInstantPercent(),
		Years:             ProjectedYears(),
		Cost: []CostLine{
			line("scenario", j.CostActualByYear()),
			line("subscription", j.CostSubscriptionByYear()),
			line("ill", j.CostILLByYear()),
			line("subscription_minus_ill", j.CostSubscriptionMinusILLByYear()),
		},
		Debug: DetailsDebug{
			CounterMultiplier:             j.CounterMultiplier(),
			CounterMultiplierNormalized:   p.NormalizedCounterMultiplier(j),
			UseWeightMultiplier:           j.UseWeightMultiplier(),
			UseWeightMultiplierNormalized: p.NormalizedUseWeightMultiplier(j),
			DownloadsPerPaperByAge:        j.DownloadsPerPaperByAge(),
			DownloadsOlderThanFive:        j.DownloadsOlderThanFive(),
			Diagnostics:                   j.Diagnostics(),
		},
	}
}

func perUse(cost, use float64) *float64 {
	if use <= 0 {
		return nil
	}
	return mathutil.Float64Ptr(mathutil.RoundTo(cost/use, constants.RatioPrecision))
}

// ProjectedYears returns the calendar years of the projection window.
func ProjectedYears() []int {
	return yearsFrom(constants.FirstProjectedYear)
}

// HistoricalYears returns the calendar years of the historical window.
func HistoricalYears() []int {
	return yearsFrom(constants.FirstHistoricalYear)
}

func yearsFrom(first int) []int {
	years := make([]int, constants.ProjectionYears)
	for i := range years {
		years[i] = first + i
	}
	return years
}
