package portfolio

import (
	"fmt"
	"sort"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/memo"
)

// Metric is a per-journal value that can be sorted, ranked and fuzzed.
type Metric int

// Supported metrics.
const (
	MetricNCPPU Metric = iota
	MetricOldSchoolCPU
	MetricCostSubscription
	MetricCostSubscriptionMinusILL
	MetricUseTotal
	MetricDownloads
	MetricCitations
	MetricAuthorships

	numMetrics
)

var metricNames = [numMetrics]string{
	MetricNCPPU:                    "ncppu",
	MetricOldSchoolCPU:             "old_school_cpu",
	MetricCostSubscription:         "cost_subscription",
	MetricCostSubscriptionMinusILL: "cost_subscription_minus_ill",
	MetricUseTotal:                 "use_total",
	MetricDownloads:                "downloads",
	MetricCitations:                "num_citations",
	MetricAuthorships:              "num_authorships",
}

func (m Metric) String() string {
	if m < 0 || m >= numMetrics {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// ParseMetric returns the metric with the given name.
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return Metric(m), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// Value returns the metric for j. ok is false when the metric is undefined,
// as NCPPU is without paywalled usage.
func (m Metric) Value(j *journal.Journal) (value float64, ok bool) {
	switch m {
	case MetricNCPPU:
		return deref(j.NCPPU())
	case MetricOldSchoolCPU:
		return deref(j.OldSchoolCPU())
	case MetricCostSubscription:
		return j.CostSubscription(), true
	case MetricCostSubscriptionMinusILL:
		return j.CostSubscriptionMinusILL(), true
	case MetricUseTotal:
		return j.UseTotal(), true
	case MetricDownloads:
		return j.DownloadsTotal(), true
	case MetricCitations:
		return j.NumCitations(), true
	case MetricAuthorships:
		return j.NumAuthorships(), true
	default:
		return 0, false
	}
}

// Descending reports whether larger values sort first. Usage metrics sort
// descending, cost metrics ascending.
func (m Metric) Descending() bool {
	switch m {
	case MetricUseTotal, MetricDownloads, MetricCitations, MetricAuthorships:
		return true
	default:
		return false
	}
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// SortedBy returns a new slice of journals ordered by metric in its natural
// direction. Ties keep canonical order and undefined values go last. The
// portfolio's own order is untouched.
func (p *Portfolio) SortedBy(m Metric) []*journal.Journal {
	out := p.Journals()
	sort.SliceStable(out, func(a, b int) bool {
		va, oka := m.Value(out[a])
		vb, okb := m.Value(out[b])
		switch {
		case !oka || !okb:
			return oka && !okb
		case m.Descending():
			return va > vb
		default:
			return va < vb
		}
	})
	return out
}

// FuzzLabel is a coarse tertile label for anonymized export.
type FuzzLabel string

// Fuzz labels. FuzzUnknown marks journals whose metric is undefined.
const (
	FuzzUnknown FuzzLabel = ""
	FuzzLow     FuzzLabel = "low"
	FuzzMedium  FuzzLabel = "medium"
	FuzzHigh    FuzzLabel = "high"
)

// rankTable holds 1-based ascending ranks by journal index, zero for
// undefined values, and the number of defined values.
type rankTable struct {
	ranks   []int
	defined int
}

// at returns the rank stored for index, or 0 when index is out of range.
func (t rankTable) at(index int) int {
	if index < 0 || index >= len(t.ranks) {
		return 0
	}
	return t.ranks[index]
}

func (p *Portfolio) ranks(m Metric) rankTable {
	return memo.Get(p.table(), aggregate{kind: aggRanks, metric: m}, func() rankTable {
		type entry struct {
			index int
			value float64
		}
		entries := make([]entry, 0, len(p.journals))
		for i, j := range p.journals {
			if v, ok := m.Value(j); ok {
				entries = append(entries, entry{index: i, value: v})
			}
		}
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].value < entries[b].value
		})

		t := rankTable{ranks: make([]int, len(p.journals)), defined: len(entries)}
		for r, e := range entries {
			t.ranks[e.index] = r + 1
		}
		return t
	})
}

// Rank returns the 1-based ascending rank of the journal at index for
// metric, ties broken by canonical order. ok is false when the journal's
// value is undefined or index is outside the portfolio.
func (p *Portfolio) Rank(m Metric, index int) (rank int, ok bool) {
	r := p.ranks(m).at(index)
	return r, r > 0
}

// Fuzzed returns the tertile label of the journal at index for metric. The
// defined ranks are split into three equal-width groups, so each group holds
// floor(N/3) or ceil(N/3) journals. Indexes outside the portfolio are
// FuzzUnknown.
func (p *Portfolio) Fuzzed(m Metric, index int) FuzzLabel {
	t := p.ranks(m)
	return bucket(t.at(index), t.defined)
}

// FuzzedLookup returns the label of every journal keyed by identifier.
func (p *Portfolio) FuzzedLookup(m Metric) map[string]FuzzLabel {
	t := p.ranks(m)
	out := make(map[string]FuzzLabel, len(p.journals))
	for i, j := range p.journals {
		out[j.ID()] = bucket(t.ranks[i], t.defined)
	}
	return out
}

func bucket(rank, n int) FuzzLabel {
	if rank <= 0 || n <= 0 {
		return FuzzUnknown
	}
	position := 3 * (rank - 1)
	switch {
	case position <= n-1:
		return FuzzLow
	case position <= 2*(n-1):
		return FuzzMedium
	default:
		return FuzzHigh
	}
}
