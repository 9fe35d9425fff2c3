// Package portfolio owns a collection of journal projections sharing one set
// of settings. It aggregates them, ranks and fuzzes per-journal metrics, and
// runs the budget-constrained subscription selection.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/memo"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/internal/settings"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoJournals is returned when a portfolio is built without journals.
	ErrNoJournals = errors.New("portfolio has no journals")

	// ErrInvalidSpendCap is returned for a negative or non-finite spend cap.
	ErrInvalidSpendCap = errors.New("invalid spend cap")
)

// Portfolio holds journals in a fixed canonical order. Views such as SortedBy
// never change that order.
//
// A Portfolio is not safe for concurrent use.
type Portfolio struct {
	settings *settings.Settings
	values   settings.Values
	logger   *zap.Logger

	journals []*journal.Journal
	byID     map[string]int
	missing  []string

	cache *memo.Table[aggregate]
	stamp uint64
}

// New builds one projection per identifier, in order, and computes their
// subscription-independent values in parallel. Identifiers absent from lookup
// get zero-valued raw data.
func New(ctx context.Context, logger *zap.Logger, ids []string, lookup rawdata.Lookup, s *settings.Settings) (*Portfolio, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(ids) == 0 {
		return nil, ErrNoJournals
	}
	if lookup == nil {
		lookup = rawdata.Map{}
	}
	if s == nil {
		s = settings.Default()
	}

	p := &Portfolio{
		settings: s,
		values:   s.Values(),
		logger:   logger,
		journals: make([]*journal.Journal, len(ids)),
		byID:     make(map[string]int, len(ids)),
		cache:    memo.New[aggregate](),
	}

	for i, id := range ids {
		if _, dup := p.byID[id]; dup {
			return nil, fmt.Errorf("duplicate journal %s in portfolio", id)
		}
		raw, ok := lookup.Lookup(id)
		if !ok {
			logger.Debug("no raw data for journal, using defaults",
				zap.String("op", "portfolio.New"),
				zap.String("issnl", id))
			p.missing = append(p.missing, id)
			raw = rawdata.JournalRawData{ISSNL: id}
		}
		p.byID[id] = i
		p.journals[i] = journal.New(raw, s, id, journal.WithIndex(i), journal.WithLogger(logger))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, j := range p.journals {
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j.Warm()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to project journals: %w", err)
	}

	logger.Info("portfolio projected",
		zap.String("op", "portfolio.New"),
		zap.Int("journals", len(p.journals)),
		zap.Int("missingRawData", len(p.missing)))
	return p, nil
}

// Settings returns the shared settings.
func (p *Portfolio) Settings() *settings.Settings { return p.settings }

// Len returns the number of journals.
func (p *Portfolio) Len() int { return len(p.journals) }

// Journals returns the journals in canonical order. The slice is a copy.
func (p *Portfolio) Journals() []*journal.Journal {
	out := make([]*journal.Journal, len(p.journals))
	copy(out, p.journals)
	return out
}

// Journal returns the journal at index.
func (p *Portfolio) Journal(index int) *journal.Journal {
	return p.journals[index]
}

// JournalByID returns the journal with the given identifier.
func (p *Portfolio) JournalByID(id string) (*journal.Journal, bool) {
	i, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return p.journals[i], true
}

// Missing returns identifiers that had no raw data.
func (p *Portfolio) Missing() []string {
	out := make([]string, len(p.missing))
	copy(out, p.missing)
	return out
}

// table returns the aggregate cache, emptied first if any journal's
// subscription flag has been written since it was filled.
func (p *Portfolio) table() *memo.Table[aggregate] {
	var stamp uint64
	for _, j := range p.journals {
		stamp += j.Revision()
	}
	if stamp != p.stamp {
		p.cache.Reset()
		p.stamp = stamp
	}
	return p.cache
}
