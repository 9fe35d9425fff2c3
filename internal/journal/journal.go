// Package journal projects one journal's usage and cost five years forward
// and splits it into fulfillment channels.
//
// Every derived value is computed lazily and memoized. Values that depend on
// the subscription flag are evicted by Subscribe and Unsubscribe; all other
// values survive a toggle untouched.
//
// A Journal is not safe for concurrent use. Distinct journals may be used
// from different goroutines.
package journal

import (
	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/internal/settings"
	"go.uber.org/zap"
)

// Journal is the projection of a single journal under one set of settings.
type Journal struct {
	id       string
	index    int
	raw      rawdata.JournalRawData
	settings *settings.Settings
	values   settings.Values
	logger   *zap.Logger

	subscribed bool
	revision   uint64
	cache      *memo.Table[field]
}

// Option configures a Journal.
type Option func(*Journal)

// WithIndex records the journal's position in its owning collection, used for
// collection-level lookups such as ranks.
func WithIndex(index int) Option {
	return func(j *Journal) {
		j.index = index
	}
}

// WithLogger sets the logger used for degraded-mode events.
func WithLogger(logger *zap.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New builds an unsubscribed projection. A nil s uses default settings.
func New(raw rawdata.JournalRawData, s *settings.Settings, id string, opts ...Option) *Journal {
	if s == nil {
		s = settings.Default()
	}
	j := &Journal{
		id:       id,
		index:    -1,
		raw:      raw,
		settings: s,
		values:   s.Values(),
		logger:   zap.NewNop(),
		cache:    memo.New[field](),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Subscribe marks the journal subscribed. Calling it again is a no-op apart
// from evicting subscription-dependent values.
func (j *Journal) Subscribe() {
	j.setSubscribed(true)
}

// Unsubscribe marks the journal unsubscribed.
func (j *Journal) Unsubscribe() {
	j.setSubscribed(false)
}

func (j *Journal) setSubscribed(subscribed bool) {
	j.subscribed = subscribed
	j.revision++
	j.cache.Evict(field.dependsOnSubscription)
}

// Subscribed reports the current subscription flag.
func (j *Journal) Subscribed() bool { return j.subscribed }

// Revision increases on every Subscribe or Unsubscribe call. Owners use it to
// notice that aggregates over this journal are stale.
func (j *Journal) Revision() uint64 { return j.revision }

// ID returns the journal identifier (ISSN-L).
func (j *Journal) ID() string { return j.id }

// Index returns the position given by WithIndex, or -1.
func (j *Journal) Index() int { return j.index }

// Settings returns the shared settings this projection was built with.
func (j *Journal) Settings() *settings.Settings { return j.settings }

func (j *Journal) Title() string     { return j.raw.Title }
func (j *Journal) Subject() string   { return j.raw.Subject }
func (j *Journal) Publisher() string { return j.raw.Publisher }
func (j *Journal) IsSociety() bool   { return j.raw.IsSociety() }

// EmbargoMonths returns the open access embargo, or nil when none is recorded.
func (j *Journal) EmbargoMonths() *int {
	if j.raw.EmbargoMonths == nil {
		return nil
	}
	months := *j.raw.EmbargoMonths
	return &months
}

// Diagnostics exposes which fallback paths a projection took.
type Diagnostics struct {
	UsedDefaultDownloadCurve bool    `json:"usedDefaultDownloadCurve"`
	DownloadFitConverged     bool    `json:"downloadFitConverged"`
	DownloadFitRSquared      float64 `json:"downloadFitRSquared"`
	PaperFitFailed           bool    `json:"paperFitFailed"`
	PaperFitRSquared         float64 `json:"paperFitRSquared"`
}

// Diagnostics returns the data-quality flags of the projection.
func (j *Journal) Diagnostics() Diagnostics {
	d := j.downloadFit()
	p := j.paperFit()
	return Diagnostics{
		UsedDefaultDownloadCurve: d.usedDefault,
		DownloadFitConverged:     d.converged,
		DownloadFitRSquared:      d.rSquared,
		PaperFitFailed:           p.failed,
		PaperFitRSquared:         p.rSquared,
	}
}

// Warm computes every subscription-independent value so later reads are
// cache hits.
func (j *Journal) Warm() {
	j.UseByChannel()
	j.OABreakdown()
	j.UseFreeInstant()
	j.NCPPU()
	j.OldSchoolCPU()
	j.CostSubscriptionMinusILL()
}
