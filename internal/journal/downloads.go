package journal

import (
	"math"

	"github.com/iwvelando/unsub-forecast/internal/curvefit"
	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

type decayResult struct {
	// curve is downloads by age before COUNTER correction.
	curve       mathutil.Series
	usedDefault bool
	converged   bool
	rSquared    float64
}

type paperResult struct {
	byYear   mathutil.Series
	growth   mathutil.Series
	failed   bool
	rSquared float64
}

// oaHistory holds historical open access paper counts per status.
type oaHistory map[rawdata.OAStatus]mathutil.Series

func (h oaHistory) total() mathutil.Series {
	var out mathutil.Series
	for _, status := range rawdata.OAStatuses {
		out = out.Add(h[status])
	}
	return out
}

func (j *Journal) downloadFit() decayResult {
	return memo.Get(j.cache, fieldDownloadFit, func() decayResult {
		observed := j.raw.DownloadsByAge
		fit, err := curvefit.FitDownloadDecay(observed)
		if err == nil && fit.Good() {
			return decayResult{curve: fit.Fitted, converged: true, rSquared: fit.RSquared}
		}

		total := observed.Sum()
		var curve mathutil.Series
		for age, share := range constants.DefaultDownloadCurve {
			curve[age] = share * total
		}
		j.logger.Debug("using default download curve",
			zap.String("op", "journal.downloadFit"),
			zap.String("issnl", j.id),
			zap.Bool("converged", err == nil),
			zap.Float64("rSquared", fit.RSquared))
		return decayResult{curve: curve, usedDefault: true, converged: err == nil, rSquared: fit.RSquared}
	})
}

func (j *Journal) paperFit() paperResult {
	return memo.Get(j.cache, fieldPaperFit, func() paperResult {
		historical := j.raw.PapersHistorical()
		fit, err := curvefit.FitPaperTrend(historical)
		if err != nil {
			j.logger.Debug("paper trend fit failed, holding papers flat with zero growth",
				zap.String("op", "journal.paperFit"),
				zap.String("issnl", j.id),
				zap.Error(err))
			return paperResult{byYear: mathutil.Flat(historical[len(historical)-1]), failed: true}
		}

		result := paperResult{byYear: fit.Projected(), rSquared: fit.RSquared}
		if reference := fit.Reference(); reference != 0 {
			result.growth = result.byYear.Map(func(_ int, v float64) float64 {
				return mathutil.Round4(v / reference)
			})
		}
		return result
	})
}

// NumPapersByYear returns projected paper counts, floored at zero.
func (j *Journal) NumPapersByYear() mathutil.Series {
	return j.paperFit().byYear
}

// NumPapers returns the mean projected paper count rounded to a whole paper.
func (j *Journal) NumPapers() float64 {
	return memo.Get(j.cache, fieldNumPapers, func() float64 {
		return math.Round(j.NumPapersByYear().Mean())
	})
}

// Growth returns the growth scaling factor per projected year. It is zero in
// every year when the paper trend could not be fitted.
func (j *Journal) Growth() mathutil.Series {
	return j.paperFit().growth
}

// CounterMultiplier returns the COUNTER total divided by raw total downloads.
func (j *Journal) CounterMultiplier() float64 {
	return memo.Get(j.cache, fieldCounterMultiplier, func() float64 {
		return j.raw.CounterTotal / math.Max(1, j.raw.DownloadsTotal)
	})
}

// DownloadsByAge returns the COUNTER-corrected download curve over paper age.
func (j *Journal) DownloadsByAge() mathutil.Series {
	return memo.Get(j.cache, fieldDownloadsByAge, func() mathutil.Series {
		return j.downloadFit().curve.Scale(j.CounterMultiplier())
	})
}

// DownloadsPerPaperByAge returns DownloadsByAge divided by NumPapers, or zeros
// when there are no papers.
func (j *Journal) DownloadsPerPaperByAge() mathutil.Series {
	return memo.Get(j.cache, fieldDownloadsPerPaperByAge, func() mathutil.Series {
		papers := j.NumPapers()
		if papers == 0 {
			return mathutil.Series{}
		}
		return j.DownloadsByAge().Map(func(_ int, v float64) float64 { return v / papers })
	})
}

func (j *Journal) downloadsScaledByCounter() mathutil.Series {
	return memo.Get(j.cache, fieldDownloadsScaledByCounter, func() mathutil.Series {
		return mathutil.Flat(math.Max(1, j.raw.DownloadsTotal) * j.CounterMultiplier())
	})
}

// DownloadsTotalByYear returns projected total downloads per year.
func (j *Journal) DownloadsTotalByYear() mathutil.Series {
	return memo.Get(j.cache, fieldDownloadsTotalByYear, func() mathutil.Series {
		growth := j.Growth()
		return j.downloadsScaledByCounter().Map(func(year int, v float64) float64 {
			return v * growth[year]
		})
	})
}

// DownloadsTotal returns the five-year mean of DownloadsTotalByYear.
func (j *Journal) DownloadsTotal() float64 {
	return memo.Get(j.cache, fieldDownloadsTotal, func() float64 {
		return mathutil.Round4(j.DownloadsTotalByYear().Mean())
	})
}

// DownloadsOlderThanFive returns downloads not explained by the age curve.
// It may be negative.
func (j *Journal) DownloadsOlderThanFive() float64 {
	return memo.Get(j.cache, fieldDownloadsOlderThanFive, func() float64 {
		return j.DownloadsTotal() - j.DownloadsByAge().Sum()
	})
}

func (j *Journal) oaHistory(variant rawdata.OAVariant, applyEmbargo bool) oaHistory {
	counts := j.raw.OACounts(variant)
	months, embargoed := j.raw.Embargo()
	h := make(oaHistory, len(rawdata.OAStatuses))
	for _, status := range rawdata.OAStatuses {
		series := rawdata.HistoricalByYear(counts[status], 0)
		if status == rawdata.OABronze && applyEmbargo && embargoed {
			for age := range series {
				if age*constants.MonthsPerYear < months {
					series[age] = 0
				}
			}
		}
		h[status] = series
	}
	return h
}

func (j *Journal) oaHistorical() oaHistory {
	return memo.Get(j.cache, fieldOAHistorical, func() oaHistory {
		variant := rawdata.VariantFor(j.values.IncludeSubmittedVersion, j.values.IncludeBronze)
		return j.oaHistory(variant, true)
	})
}

func (j *Journal) peerReviewedHistorical() mathutil.Series {
	return memo.Get(j.cache, fieldPeerReviewedHistorical, func() mathutil.Series {
		variant := rawdata.VariantFor(false, j.values.IncludeBronze)
		return j.oaHistory(variant, false).total()
	})
}

func (j *Journal) numOAForConvolving() mathutil.Series {
	return memo.Get(j.cache, fieldNumOAForConvolving, func() mathutil.Series {
		papers := j.NumPapers()
		return j.oaHistorical().total().Map(func(_ int, v float64) float64 {
			return math.Min(papers, v)
		})
	})
}

// downloadsOABase is the OA download volume before growth scaling.
func (j *Journal) downloadsOABase() float64 {
	return memo.Get(j.cache, fieldDownloadsOABase, func() float64 {
		perPaper := j.DownloadsPerPaperByAge()
		conv := j.numOAForConvolving()
		sum := 0.0
		for age := range conv {
			sum += conv[age] * perPaper[age]
		}
		return mathutil.Round4(sum)
	})
}

// downloadsOAByAge returns OA downloads by paper age. Ages past the embargo
// count every download as open.
func (j *Journal) downloadsOAByAge() mathutil.Series {
	return memo.Get(j.cache, fieldDownloadsOAByAge, func() mathutil.Series {
		perPaper := j.DownloadsPerPaperByAge()
		conv := j.numOAForConvolving()
		byAge := j.DownloadsByAge()
		months, embargoed := j.raw.Embargo()
		return perPaper.Map(func(age int, v float64) float64 {
			if embargoed && age*constants.MonthsPerYear >= months {
				return byAge[age]
			}
			return v * conv[age]
		})
	})
}

// SocialNetworkMultiplier returns the share of downloads served through
// academic social networks, or zero when that channel is excluded.
func (j *Journal) SocialNetworkMultiplier() float64 {
	return memo.Get(j.cache, fieldSocialNetworkMultiplier, func() float64 {
		if !j.values.IncludeSocialNetworks {
			return 0
		}
		return j.raw.SocialNetworkMultiplier
	})
}

// DownloadsByChannel returns projected downloads per channel per year with
// both the subscribed and unsubscribed splits populated. Use
// DownloadsActualByYear for the split matching the subscription flag.
func (j *Journal) DownloadsByChannel() ChannelSeries {
	return memo.Get(j.cache, fieldDownloadsByChannel, func() ChannelSeries {
		total := j.DownloadsTotalByYear()
		growth := j.Growth()
		base := j.downloadsOABase()
		mult := j.SocialNetworkMultiplier()

		var cs ChannelSeries
		for year := range total {
			cs[ChannelOA][year] = mathutil.Clip(base*growth[year], 0, total[year])
			cs[ChannelSocialNetworks][year] = mathutil.Clip(total[year]*mult, 0, total[year]-cs[ChannelOA][year])
		}
		cs[ChannelBackfile] = j.backfileByYear(total, cs[ChannelOA], cs[ChannelSocialNetworks])
		j.splitPaywalled(&cs, total)
		return cs
	})
}

// Downloads returns the projected downloads of one channel per year,
// regardless of the subscription flag.
func (j *Journal) Downloads(c Channel) mathutil.Series {
	return j.DownloadsByChannel()[c]
}

// DownloadsPaywalledByYear returns downloads left after free channels.
func (j *Journal) DownloadsPaywalledByYear() mathutil.Series {
	return j.Downloads(ChannelSubscription)
}

// backfileByYear compares the scaled download curve with the scaled OA curve
// for the current and older paper ages, halving the current age, then adds
// downloads older than five years.
func (j *Journal) backfileByYear(total, oa, social mathutil.Series) mathutil.Series {
	var out mathutil.Series
	if !j.values.IncludeBackfile {
		return out
	}

	byAge := j.DownloadsByAge()
	oaByAge := j.downloadsOAByAge()
	growth := j.Growth()
	older := j.DownloadsOlderThanFive()
	mult := j.SocialNetworkMultiplier()

	for year := range out {
		g := growth[year]
		residual := func(age int) float64 {
			return byAge[age]*g - oaByAge[age]*g
		}
		scaled := mathutil.NonNegative(0.5 * residual(year))
		for age := year + 1; age < constants.ProjectionYears; age++ {
			scaled += mathutil.NonNegative(residual(age))
		}
		if scaled > 0 {
			scaled += older
		}
		scaled *= 1 - mult
		out[year] = mathutil.Clip(scaled, 0, total[year]-oa[year]-social[year])
	}
	return out
}

// splitPaywalled fills the subscription, ILL and other-delayed channels from
// whatever the free channels leave of total.
func (j *Journal) splitPaywalled(cs *ChannelSeries, total mathutil.Series) {
	rate := mathutil.PercentToFraction(j.values.ILLRequestPercentOfDelayed)
	for year := range total {
		paywalled := mathutil.NonNegative(total[year] -
			cs[ChannelOA][year] - cs[ChannelSocialNetworks][year] - cs[ChannelBackfile][year])
		ill := rate * paywalled
		cs[ChannelSubscription][year] = paywalled
		cs[ChannelILL][year] = ill
		cs[ChannelOtherDelayed][year] = paywalled - ill
	}
}

// DownloadsActualByYear returns downloads per channel with the inactive
// branch (ILL and other-delayed when subscribed, subscription otherwise) set
// to exactly zero.
func (j *Journal) DownloadsActualByYear() ChannelSeries {
	return memo.Get(j.cache, fieldDownloadsActualByYear, func() ChannelSeries {
		return activeView(j.DownloadsByChannel(), j.subscribed)
	})
}

// DownloadsActual returns the five-year mean of DownloadsActualByYear.
func (j *Journal) DownloadsActual() ChannelValues {
	return memo.Get(j.cache, fieldDownloadsActual, func() ChannelValues {
		return j.DownloadsActualByYear().Means()
	})
}

func activeView(cs ChannelSeries, subscribed bool) ChannelSeries {
	var out ChannelSeries
	for _, c := range Channels {
		if c.activeWhen(subscribed) {
			out[c] = cs[c]
		}
	}
	return out
}
