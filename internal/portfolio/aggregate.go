package portfolio

import (
	"math"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

type aggregateKind int

const (
	aggDownloadsActualByYear aggregateKind = iota
	aggUseActualByYear
	aggDownloadsTotalByYear
	aggUseTotalByYear
	aggCost
	aggCostILL
	aggCounterMultiplier
	aggRanks
	aggFuzz
)

// aggregate keys the portfolio cache. metric is only set for per-metric
// lookup tables.
type aggregate struct {
	kind   aggregateKind
	metric Metric
}

func (p *Portfolio) sumSeries(kind aggregateKind, get func(*journal.Journal) mathutil.Series) mathutil.Series {
	return memo.Get(p.table(), aggregate{kind: kind}, func() mathutil.Series {
		var out mathutil.Series
		for _, j := range p.journals {
			out = out.Add(get(j))
		}
		return out
	})
}

func (p *Portfolio) sumChannels(kind aggregateKind, get func(*journal.Journal) journal.ChannelSeries) journal.ChannelSeries {
	return memo.Get(p.table(), aggregate{kind: kind}, func() journal.ChannelSeries {
		var out journal.ChannelSeries
		for _, j := range p.journals {
			out = out.Add(get(j))
		}
		return out
	})
}

// DownloadsActualByYear sums every journal's actual channel downloads.
func (p *Portfolio) DownloadsActualByYear() journal.ChannelSeries {
	return p.sumChannels(aggDownloadsActualByYear, (*journal.Journal).DownloadsActualByYear)
}

// UseActualByYear sums every journal's actual channel usage.
func (p *Portfolio) UseActualByYear() journal.ChannelSeries {
	return p.sumChannels(aggUseActualByYear, (*journal.Journal).UseActualByYear)
}

// UseActual returns the five-year mean of UseActualByYear per channel.
func (p *Portfolio) UseActual() journal.ChannelValues {
	return p.UseActualByYear().Means()
}

// DownloadsTotalByYear sums projected total downloads.
func (p *Portfolio) DownloadsTotalByYear() mathutil.Series {
	return p.sumSeries(aggDownloadsTotalByYear, (*journal.Journal).DownloadsTotalByYear)
}

// DownloadsTotal returns the five-year mean of DownloadsTotalByYear.
func (p *Portfolio) DownloadsTotal() float64 {
	return mathutil.Round4(p.DownloadsTotalByYear().Mean())
}

// UseTotalByYear sums projected total usage.
func (p *Portfolio) UseTotalByYear() mathutil.Series {
	return p.sumSeries(aggUseTotalByYear, (*journal.Journal).UseTotalByYear)
}

// UseTotal returns the five-year mean of UseTotalByYear.
func (p *Portfolio) UseTotal() float64 {
	return mathutil.Round4(p.UseTotalByYear().Mean())
}

// Cost returns the summed actual cost of every journal.
func (p *Portfolio) Cost() float64 {
	return memo.Get(p.table(), aggregate{kind: aggCost}, func() float64 {
		total := 0.0
		for _, j := range p.journals {
			total += j.CostActual()
		}
		return mathutil.RoundTo(total, 2)
	})
}

// CostILLUnsubscribed returns the cost of serving every journal by ILL.
func (p *Portfolio) CostILLUnsubscribed() float64 {
	return memo.Get(p.table(), aggregate{kind: aggCostILL}, func() float64 {
		total := 0.0
		for _, j := range p.journals {
			total += j.CostILL()
		}
		return total
	})
}

// CostBigDealProjectedByYear returns the reference big deal price compounded
// annually by its increase, truncated to whole currency units.
func (p *Portfolio) CostBigDealProjectedByYear() mathutil.Series {
	return mathutil.Series{}.Map(func(year int, _ float64) float64 {
		return math.Trunc(mathutil.Compound(p.values.CostBigDeal, p.values.CostBigDealIncrease, year))
	})
}

// CostBigDealProjected returns the five-year mean big deal price.
func (p *Portfolio) CostBigDealProjected() float64 {
	return mathutil.Round4(p.CostBigDealProjectedByYear().Mean())
}

// CostSpentPercent returns Cost as a percent of the projected big deal, or
// zero without a big deal price.
func (p *Portfolio) CostSpentPercent() float64 {
	bigDeal := p.CostBigDealProjected()
	if bigDeal == 0 {
		return 0
	}
	return 100 * mathutil.Round4(p.Cost()/bigDeal)
}

// CostSavedPercent returns the saving against the projected big deal.
func (p *Portfolio) CostSavedPercent() float64 {
	bigDeal := p.CostBigDealProjected()
	if bigDeal == 0 {
		return 0
	}
	return 100 * mathutil.Round4((bigDeal-p.Cost())/bigDeal)
}

// UseInstantByYear sums usage from instant channels under current flags.
func (p *Portfolio) UseInstantByYear() mathutil.Series {
	use := p.UseActualByYear()
	var out mathutil.Series
	for _, c := range journal.Channels {
		if c.Instant() {
			out = out.Add(use[c])
		}
	}
	return out
}

// UseInstant returns the five-year mean of UseInstantByYear.
func (p *Portfolio) UseInstant() float64 {
	return mathutil.Round4(p.UseInstantByYear().Mean())
}

// UseInstantPercent returns instant usage as a percent of usage, or nil
// without usage.
func (p *Portfolio) UseInstantPercent() *float64 {
	total := p.UseTotal()
	if total == 0 {
		return nil
	}
	return mathutil.Float64Ptr(100 * mathutil.Round4(p.UseInstant()/total))
}

// UseInstantPercentByYear returns instant usage percent per year, nil in
// years without usage.
func (p *Portfolio) UseInstantPercentByYear() journal.PercentByYear {
	instant := p.UseInstantByYear()
	total := p.UseTotalByYear()
	var out journal.PercentByYear
	for year := range out {
		if total[year] != 0 {
			out[year] = mathutil.Float64Ptr(100 * mathutil.Round4(instant[year]/total[year]))
		}
	}
	return out
}

// Subscribed returns the subscribed journals in canonical order.
func (p *Portfolio) Subscribed() []*journal.Journal {
	var out []*journal.Journal
	for _, j := range p.journals {
		if j.Subscribed() {
			out = append(out, j)
		}
	}
	return out
}

// CounterMultiplier returns the mean COUNTER multiplier across journals.
func (p *Portfolio) CounterMultiplier() float64 {
	return memo.Get(p.table(), aggregate{kind: aggCounterMultiplier}, func() float64 {
		total := 0.0
		for _, j := range p.journals {
			total += j.CounterMultiplier()
		}
		return total / float64(len(p.journals))
	})
}

// UseWeightMultiplier returns portfolio usage per download, or 1 without
// downloads.
func (p *Portfolio) UseWeightMultiplier() float64 {
	downloads := p.DownloadsTotal()
	if downloads == 0 {
		return 1
	}
	return p.UseTotal() / downloads
}

// NormalizedCounterMultiplier returns a journal's COUNTER multiplier relative
// to the portfolio's, or zero when the portfolio multiplier is zero.
func (p *Portfolio) NormalizedCounterMultiplier(j *journal.Journal) float64 {
	return normalized(j.CounterMultiplier(), p.CounterMultiplier())
}

// NormalizedUseWeightMultiplier returns a journal's usage weighting relative
// to the portfolio's.
func (p *Portfolio) NormalizedUseWeightMultiplier(j *journal.Journal) float64 {
	return normalized(j.UseWeightMultiplier(), p.UseWeightMultiplier())
}

func normalized(value, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return mathutil.Round4(value / reference)
}
