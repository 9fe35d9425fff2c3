package portfolio

import (
	"fmt"
	"math"

	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
	"github.com/iwvelando/unsub-forecast/pkg/optimization"
	"go.uber.org/zap"
)

// SelectSubscriptions chooses subscriptions greedily under a spend cap given
// as a percent of the projected big deal price.
//
// Every journal is first unsubscribed and spend starts at the portfolio ILL
// cost. Journals are walked in ascending order of subscription cost minus ILL
// cost. Those with a negative difference are subscribed unconditionally, then
// the walk continues subscribing while cumulative spend stays within the cap
// and stops at the first journal that would exceed it.
func (p *Portfolio) SelectSubscriptions(spendCapPercent float64) (optimization.Selection, error) {
	if math.IsNaN(spendCapPercent) || math.IsInf(spendCapPercent, 0) || spendCapPercent < 0 {
		return optimization.Selection{}, fmt.Errorf("%w: %v percent", ErrInvalidSpendCap, spendCapPercent)
	}

	for _, j := range p.journals {
		j.Unsubscribe()
	}

	spendCap := mathutil.PercentToFraction(spendCapPercent) * p.CostBigDealProjected()
	spend := p.CostILLUnsubscribed()
	sel := optimization.Selection{
		SpendCapPercent: spendCapPercent,
		SpendCap:        spendCap,
		StartingSpend:   spend,
	}

	ordered := p.SortedBy(MetricCostSubscriptionMinusILL)
	next := 0
	for ; next < len(ordered); next++ {
		j := ordered[next]
		delta := j.CostSubscriptionMinusILL()
		if delta >= 0 {
			break
		}
		spend += delta
		j.Subscribe()
		sel.AutoSubscribed++
		sel.Subscribed = append(sel.Subscribed, j.ID())
	}

	for ; next < len(ordered); next++ {
		j := ordered[next]
		delta := j.CostSubscriptionMinusILL()
		if spend+delta > spendCap {
			sel.CapReached = true
			break
		}
		spend += delta
		j.Subscribe()
		sel.CapSubscribed++
		sel.Subscribed = append(sel.Subscribed, j.ID())
	}
	sel.FinalSpend = spend

	if sel.StartingSpend > spendCap {
		sel.Notes = append(sel.Notes, "ILL cost with nothing subscribed already exceeds the spend cap")
	}

	p.logger.Info("subscription selection complete",
		zap.String("op", "portfolio.SelectSubscriptions"),
		zap.Float64("spendCapPercent", spendCapPercent),
		zap.Float64("spendCap", spendCap),
		zap.Float64("startingSpend", sel.StartingSpend),
		zap.Float64("finalSpend", sel.FinalSpend),
		zap.Int("autoSubscribed", sel.AutoSubscribed),
		zap.Int("capSubscribed", sel.CapSubscribed),
		zap.Bool("capReached", sel.CapReached))
	return sel, nil
}
