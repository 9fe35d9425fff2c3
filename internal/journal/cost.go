package journal

import (
	"math"

	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// CostSubscriptionByYear returns the list price plus content fee compounded
// annually by the a-la-carte increase, rounded to whole currency units.
func (j *Journal) CostSubscriptionByYear() mathutil.Series {
	return memo.Get(j.cache, fieldCostSubscriptionByYear, func() mathutil.Series {
		base := j.raw.ListPrice * (1 + mathutil.PercentToFraction(j.values.CostContentFeePercent))
		return mathutil.Series{}.Map(func(year int, _ float64) float64 {
			return math.Round(mathutil.Compound(base, j.values.CostAlacartIncrease, year))
		})
	})
}

// CostSubscription returns the five-year mean subscription price.
func (j *Journal) CostSubscription() float64 {
	return memo.Get(j.cache, fieldCostSubscription, func() float64 {
		return mathutil.Round4(j.CostSubscriptionByYear().Mean())
	})
}

// CostILLByYear returns what ILL requests would cost if unsubscribed.
func (j *Journal) CostILLByYear() mathutil.Series {
	return memo.Get(j.cache, fieldCostILLByYear, func() mathutil.Series {
		return j.Downloads(ChannelILL).Map(func(_ int, v float64) float64 {
			return mathutil.Round4(v * j.values.CostILL)
		})
	})
}

// CostILL returns the five-year mean ILL cost.
func (j *Journal) CostILL() float64 {
	return memo.Get(j.cache, fieldCostILL, func() float64 {
		return mathutil.Round4(j.CostILLByYear().Mean())
	})
}

// CostSubscriptionMinusILLByYear returns the marginal cost of subscribing per year.
func (j *Journal) CostSubscriptionMinusILLByYear() mathutil.Series {
	return j.CostSubscriptionByYear().Sub(j.CostILLByYear())
}

// CostSubscriptionMinusILL returns the marginal cost of subscribing. Negative
// values mean subscribing is cheaper than ILL.
func (j *Journal) CostSubscriptionMinusILL() float64 {
	return memo.Get(j.cache, fieldCostSubscriptionMinusILL, func() float64 {
		return mathutil.Round4(j.CostSubscription() - j.CostILL())
	})
}

// NCPPU returns the net cost per paid use, or nil when paywalled usage is
// zero or negative.
func (j *Journal) NCPPU() *float64 {
	return memo.Get(j.cache, fieldNCPPU, func() *float64 {
		paywalled := j.UsePaywalled()
		if paywalled <= 0 {
			return nil
		}
		return mathutil.Float64Ptr(mathutil.RoundTo(j.CostSubscriptionMinusILL()/paywalled, constants.RatioPrecision))
	})
}

// OldSchoolCPU returns subscription cost per download, or nil without
// downloads.
func (j *Journal) OldSchoolCPU() *float64 {
	return memo.Get(j.cache, fieldOldSchoolCPU, func() *float64 {
		downloads := j.DownloadsTotal()
		if downloads <= 0 {
			return nil
		}
		return mathutil.Float64Ptr(mathutil.RoundTo(j.CostSubscription()/downloads, constants.RatioPrecision))
	})
}

// CostActualByYear returns subscription cost when subscribed and ILL cost
// otherwise.
func (j *Journal) CostActualByYear() mathutil.Series {
	return memo.Get(j.cache, fieldCostActualByYear, func() mathutil.Series {
		if j.subscribed {
			return j.CostSubscriptionByYear()
		}
		return j.CostILLByYear()
	})
}

// CostActual returns the five-year mean of CostActualByYear.
func (j *Journal) CostActual() float64 {
	return memo.Get(j.cache, fieldCostActual, func() float64 {
		if j.subscribed {
			return j.CostSubscription()
		}
		return j.CostILL()
	})
}
