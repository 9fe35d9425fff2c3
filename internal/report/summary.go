package report

import (
	"errors"
	"fmt"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/portfolio"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
	"github.com/iwvelando/unsub-forecast/pkg/optimization"
)

// PortfolioSummary is the scenario-level headline.
type PortfolioSummary struct {
	CostScenario            float64               `json:"costScenario"`
	CostBigDealProjected    float64               `json:"costBigDealProjected"`
	CostPercent             float64               `json:"costPercent"`
	CostSavedPercent        float64               `json:"costSavedPercent"`
	NumJournalsSubscribed   int                   `json:"numJournalsSubscribed"`
	NumJournalsTotal        int                   `json:"numJournalsTotal"`
	UseInstantPercent       *float64              `json:"useInstantPercent"`
	UseInstantPercentByYear journal.PercentByYear `json:"useInstantPercentByYear"`
	UseTotal                float64               `json:"useTotal"`
	UseByChannel            journal.ChannelValues `json:"useByChannel"`
	Missing                 []string              `json:"missing,omitempty"`
}

// Summary builds the headline for p under its current subscription flags.
func Summary(p *portfolio.Portfolio) PortfolioSummary {
	return PortfolioSummary{
		CostScenario:            mathutil.RoundTo(p.Cost(), 2),
		CostBigDealProjected:    p.CostBigDealProjected(),
		CostPercent:             p.CostSpentPercent(),
		CostSavedPercent:        p.CostSavedPercent(),
		NumJournalsSubscribed:   len(p.Subscribed()),
		NumJournalsTotal:        p.Len(),
		UseInstantPercent:       p.UseInstantPercent(),
		UseInstantPercentByYear: p.UseInstantPercentByYear(),
		UseTotal:                p.UseTotal(),
		UseByChannel:            p.UseActual(),
		Missing:                 p.Missing(),
	}
}

// ErrUnknownView is returned by BuildView for a view it cannot build.
var ErrUnknownView = errors.New("unknown report view")

// Document is the complete scenario report. Journals holds the rows of the
// table view and Rows the rows of every other view. RowsCount counts the rows
// of either.
type Document struct {
	Settings      map[string]any          `json:"settings"`
	Selection     *optimization.Selection `json:"selection,omitempty"`
	Summary       PortfolioSummary        `json:"summary"`
	View          string                  `json:"view"`
	Journals      []TableRow              `json:"journals,omitempty"`
	Rows          any                     `json:"rows,omitempty"`
	JournalsCount int                     `json:"journalsCount"`
	RowsCount     int                     `json:"rowsCount"`
}

// Build assembles the table view report for p. Journals are listed by
// descending usage and limited to pageSize rows; pageSize <= 0 lists every
// journal.
func Build(p *portfolio.Portfolio, sel *optimization.Selection, pageSize int) Document {
	doc := newDocument(p, sel, constants.ViewTable)
	doc.Journals = Rows(p, pageSize, TableRowFor)
	doc.RowsCount = len(doc.Journals)
	return doc
}

// BuildView assembles the report for p with the row type named by view.
func BuildView(p *portfolio.Portfolio, sel *optimization.Selection, view string, pageSize int) (Document, error) {
	if view == constants.ViewTable {
		return Build(p, sel, pageSize), nil
	}
	doc := newDocument(p, sel, view)
	switch view {
	case constants.ViewCost:
		doc.Rows, doc.RowsCount = page(p, pageSize, CostRowFor)
	case constants.ViewFulfillment:
		doc.Rows, doc.RowsCount = page(p, pageSize, FulfillmentRowFor)
	case constants.ViewOA:
		doc.Rows, doc.RowsCount = page(p, pageSize, OARowFor)
	case constants.ViewImpact:
		doc.Rows, doc.RowsCount = page(p, pageSize, ImpactRowFor)
	case constants.ViewTimeline:
		doc.Rows, doc.RowsCount = page(p, pageSize, TimelineRowFor)
	case constants.ViewExport:
		doc.Rows, doc.RowsCount = page(p, pageSize, ExportRowFor)
	case constants.ViewReport:
		doc.Rows, doc.RowsCount = page(p, pageSize, ReportRowFor)
	case constants.ViewSlider:
		doc.Rows, doc.RowsCount = page(p, pageSize, SliderRowFor)
	case constants.ViewDetails:
		doc.Rows, doc.RowsCount = page(p, pageSize, DetailsRowFor)
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return doc, nil
}

func newDocument(p *portfolio.Portfolio, sel *optimization.Selection, view string) Document {
	return Document{
		Settings:      p.Settings().ToMap(),
		Selection:     sel,
		Summary:       Summary(p),
		View:          view,
		JournalsCount: p.Len(),
	}
}

func page[R any](p *portfolio.Portfolio, pageSize int, row func(*portfolio.Portfolio, *journal.Journal) R) (any, int) {
	rows := Rows(p, pageSize, row)
	return rows, len(rows)
}

// Rows applies row to the journals of p by descending usage, keeping at most
// pageSize of them. pageSize <= 0 keeps every journal.
func Rows[R any](p *portfolio.Portfolio, pageSize int, row func(*portfolio.Portfolio, *journal.Journal) R) []R {
	journals := p.SortedBy(portfolio.MetricUseTotal)
	if pageSize > 0 && pageSize < len(journals) {
		journals = journals[:pageSize]
	}
	out := make([]R, 0, len(journals))
	for _, j := range journals {
		out = append(out, row(p, j))
	}
	return out
}
