package journal

import (
	"math"

	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// PercentByYear holds a percentage per projected year. An entry is nil when
// its denominator is zero.
type PercentByYear [constants.ProjectionYears]*float64

// NumCitations returns mean citations over the historical window.
func (j *Journal) NumCitations() float64 {
	return memo.Get(j.cache, fieldNumCitations, func() float64 {
		return mathutil.Round4(rawdata.HistoricalByYear(j.raw.Citations, 0).Mean())
	})
}

// NumAuthorships returns mean authored papers over the historical window.
func (j *Journal) NumAuthorships() float64 {
	return memo.Get(j.cache, fieldNumAuthorships, func() float64 {
		return mathutil.Round4(rawdata.HistoricalByYear(j.raw.Authorships, 0).Mean())
	})
}

// UseAddition returns the weighted citation and authorship bonus added to
// downloads each year before growth scaling.
func (j *Journal) UseAddition() float64 {
	return memo.Get(j.cache, fieldUseAddition, func() float64 {
		citations, authorships := j.NumCitations(), j.NumAuthorships()
		if citations == 0 && authorships == 0 {
			return 0
		}
		return mathutil.Round4(j.values.WeightCitation*citations + j.values.WeightAuthorship*authorships)
	})
}

// UseTotalByYear returns downloads plus the growth-scaled weighted bonus.
func (j *Journal) UseTotalByYear() mathutil.Series {
	return memo.Get(j.cache, fieldUseTotalByYear, func() mathutil.Series {
		addition := j.UseAddition()
		growth := j.Growth()
		return j.DownloadsTotalByYear().Map(func(year int, v float64) float64 {
			return v + addition*growth[year]
		})
	})
}

// UseTotal returns the five-year mean usage, never below a small positive
// floor so usage percentages are always defined.
func (j *Journal) UseTotal() float64 {
	return memo.Get(j.cache, fieldUseTotal, func() float64 {
		return math.Max(mathutil.Round4(j.UseTotalByYear().Mean()), constants.MinUseTotal)
	})
}

// UseWeightMultiplier returns usage per download, or 1 when there are no
// downloads.
func (j *Journal) UseWeightMultiplier() float64 {
	return memo.Get(j.cache, fieldUseWeightMultiplier, func() float64 {
		downloads := j.DownloadsTotal()
		if downloads == 0 {
			return 1
		}
		return j.UseTotal() / downloads
	})
}

// UseByChannel returns projected usage per channel per year with both the
// subscribed and unsubscribed splits populated.
func (j *Journal) UseByChannel() ChannelSeries {
	return memo.Get(j.cache, fieldUseByChannel, func() ChannelSeries {
		total := j.UseTotalByYear()
		downloads := j.DownloadsByChannel()
		weight := j.UseWeightMultiplier()
		mult := j.SocialNetworkMultiplier()

		var cs ChannelSeries
		for year := range total {
			oa := math.Min(mathutil.NonNegative(downloads[ChannelOA][year]*weight), total[year])
			social := mathutil.Clip(total[year]*mult, 0, total[year]-oa)
			backfile := mathutil.Clip(mathutil.Round4(downloads[ChannelBackfile][year]*weight), 0, total[year]-oa-social)
			cs[ChannelOA][year] = oa
			cs[ChannelSocialNetworks][year] = social
			cs[ChannelBackfile][year] = backfile
		}
		j.splitPaywalled(&cs, total)
		return cs
	})
}

// Usage returns the projected usage of one channel per year, regardless of
// the subscription flag.
func (j *Journal) Usage(c Channel) mathutil.Series {
	return j.UseByChannel()[c]
}

// UseMean returns the rounded five-year mean usage of one channel,
// regardless of the subscription flag.
func (j *Journal) UseMean(c Channel) float64 {
	return mathutil.Round4(j.Usage(c).Mean())
}

// UsePaywalled returns mean usage not served by a free channel.
func (j *Journal) UsePaywalled() float64 {
	return j.UseMean(ChannelSubscription)
}

// UseFreeInstantByYear returns OA, social network and backfile usage summed.
func (j *Journal) UseFreeInstantByYear() mathutil.Series {
	return memo.Get(j.cache, fieldUseFreeInstantByYear, func() mathutil.Series {
		return sumChannels(j.UseByChannel(), Channel.FreeInstant)
	})
}

// UseFreeInstant returns the five-year mean of UseFreeInstantByYear.
func (j *Journal) UseFreeInstant() float64 {
	return memo.Get(j.cache, fieldUseFreeInstant, func() float64 {
		return mathutil.Round4(j.UseFreeInstantByYear().Mean())
	})
}

// UseFreeInstantPercent returns free instant usage as a percent of usage.
func (j *Journal) UseFreeInstantPercent() float64 {
	return percentOf(j.UseFreeInstant(), j.UseTotal())
}

// UseActualByYear returns usage per channel with the inactive branch set to
// exactly zero.
func (j *Journal) UseActualByYear() ChannelSeries {
	return memo.Get(j.cache, fieldUseActualByYear, func() ChannelSeries {
		return activeView(j.UseByChannel(), j.subscribed)
	})
}

// UseActual returns the five-year mean of UseActualByYear.
func (j *Journal) UseActual() ChannelValues {
	return memo.Get(j.cache, fieldUseActual, func() ChannelValues {
		return j.UseActualByYear().Means()
	})
}

// UseInstantByYear returns usage delivered immediately under the current
// subscription flag.
func (j *Journal) UseInstantByYear() mathutil.Series {
	return memo.Get(j.cache, fieldUseInstantByYear, func() mathutil.Series {
		return sumChannels(j.UseActualByYear(), Channel.Instant)
	})
}

// UseInstant returns the five-year mean of UseInstantByYear.
func (j *Journal) UseInstant() float64 {
	return memo.Get(j.cache, fieldUseInstant, func() float64 {
		return mathutil.Round4(j.UseInstantByYear().Mean())
	})
}

// UseInstantPercent returns instant usage as a percent of usage, capped at 100.
func (j *Journal) UseInstantPercent() float64 {
	return memo.Get(j.cache, fieldUseInstantPercent, func() float64 {
		return percentOf(j.UseInstant(), j.UseTotal())
	})
}

// UseInstantPercentByYear returns instant usage as a percent of usage per year.
func (j *Journal) UseInstantPercentByYear() PercentByYear {
	return memo.Get(j.cache, fieldUseInstantPercentByYear, func() PercentByYear {
		instant := j.UseInstantByYear()
		total := j.UseTotalByYear()
		var out PercentByYear
		for year := range out {
			if total[year] != 0 {
				out[year] = mathutil.Float64Ptr(percentOf(instant[year], total[year]))
			}
		}
		return out
	})
}

// OAUsage is one open access category's share of a journal.
type OAUsage struct {
	// Papers is the mean historical paper count in the category.
	Papers    float64 `json:"papers"`
	Downloads float64 `json:"downloads"`
	Usage     float64 `json:"usage"`
}

// OABreakdown splits open access usage by category.
type OABreakdown struct {
	Green        OAUsage `json:"green"`
	Hybrid       OAUsage `json:"hybrid"`
	Bronze       OAUsage `json:"bronze"`
	PeerReviewed OAUsage `json:"peerReviewed"`
}

// OABreakdown returns the per-category open access figures. Peer reviewed
// counts exclude submitted versions.
func (j *Journal) OABreakdown() OABreakdown {
	return memo.Get(j.cache, fieldOABreakdown, func() OABreakdown {
		history := j.oaHistorical()
		return OABreakdown{
			Green:        j.oaUsage(history[rawdata.OAGreen]),
			Hybrid:       j.oaUsage(history[rawdata.OAHybrid]),
			Bronze:       j.oaUsage(history[rawdata.OABronze]),
			PeerReviewed: j.oaUsage(j.peerReviewedHistorical()),
		}
	})
}

func (j *Journal) oaUsage(history mathutil.Series) OAUsage {
	papers := mathutil.Round4(history.Mean())
	perPaper := j.DownloadsPerPaperByAge()
	downloads := 0.0
	for age := range perPaper {
		downloads += papers * perPaper[age]
	}
	downloads = mathutil.Round4(downloads)
	return OAUsage{
		Papers:    papers,
		Downloads: downloads,
		Usage:     mathutil.Round4(downloads * j.UseWeightMultiplier()),
	}
}

func sumChannels(cs ChannelSeries, include func(Channel) bool) mathutil.Series {
	var out mathutil.Series
	for _, c := range Channels {
		if include(c) {
			out = out.Add(cs[c])
		}
	}
	return out
}

func percentOf(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Min(constants.PercentageMultiplier, mathutil.Round4(mathutil.CalculatePercentage(value, total)))
}
