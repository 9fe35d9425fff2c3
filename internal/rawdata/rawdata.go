// Package rawdata defines the read-only historical signals a journal
// projection is computed from, and loads them from YAML files.
package rawdata

import (
	"sort"

	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// OAStatus is an open access category.
type OAStatus string

// Open access categories counted by year.
const (
	OAGreen  OAStatus = "green"
	OAHybrid OAStatus = "hybrid"
	OABronze OAStatus = "bronze"
)

// OAStatuses lists every open access category in report order.
var OAStatuses = []OAStatus{OAGreen, OAHybrid, OABronze}

// OAVariant selects which open access counting rules produced a set of counts.
type OAVariant string

// Open access counting variants.
const (
	WithSubmittedWithBronze OAVariant = "with_submitted_with_bronze"
	WithSubmittedNoBronze   OAVariant = "with_submitted_no_bronze"
	NoSubmittedWithBronze   OAVariant = "no_submitted_with_bronze"
	NoSubmittedNoBronze     OAVariant = "no_submitted_no_bronze"
)

// VariantFor returns the counting variant matching the inclusion toggles.
func VariantFor(includeSubmitted, includeBronze bool) OAVariant {
	switch {
	case includeSubmitted && includeBronze:
		return WithSubmittedWithBronze
	case includeSubmitted:
		return WithSubmittedNoBronze
	case includeBronze:
		return NoSubmittedWithBronze
	default:
		return NoSubmittedNoBronze
	}
}

// OACounts maps an open access status to paper counts by calendar year.
type OACounts map[OAStatus]map[int]float64

// Count returns the number of papers with the given status in year, or zero.
func (c OACounts) Count(status OAStatus, year int) float64 {
	return c[status][year]
}

// JournalRawData is everything known about one journal before projection.
// The zero value is the documented default for a journal with no data.
type JournalRawData struct {
	ISSNL     string `yaml:"issnl" json:"issnl"`
	Title     string `yaml:"title" json:"title"`
	Subject   string `yaml:"subject" json:"subject"`
	Publisher string `yaml:"publisher" json:"publisher"`
	// Society defaults to true when absent.
	Society *bool `yaml:"society,omitempty" json:"society,omitempty"`

	// DownloadsByAge holds raw downloads for paper ages 0 through 4,
	// age 0 being the most recent full year.
	DownloadsByAge mathutil.Series `yaml:"downloadsByAge" json:"downloadsByAge"`
	DownloadsTotal float64         `yaml:"downloadsTotal" json:"downloadsTotal"`
	// CounterTotal is the COUNTER-reported total used to correct downloads.
	CounterTotal float64 `yaml:"counterTotal" json:"counterTotal"`

	OA            map[OAVariant]OACounts `yaml:"oa,omitempty" json:"oa,omitempty"`
	EmbargoMonths *int                   `yaml:"embargoMonths,omitempty" json:"embargoMonths,omitempty"`

	// ListPrice is the base subscription price before content fees.
	ListPrice float64 `yaml:"listPrice" json:"listPrice"`

	Citations   map[int]float64 `yaml:"citations,omitempty" json:"citations,omitempty"`
	Authorships map[int]float64 `yaml:"authorships,omitempty" json:"authorships,omitempty"`
	// Papers holds paper counts by calendar year. When empty, Papers2018 is
	// used for every historical year.
	Papers     map[int]float64 `yaml:"papers,omitempty" json:"papers,omitempty"`
	Papers2018 float64         `yaml:"papers2018" json:"papers2018"`

	SocialNetworkMultiplier float64 `yaml:"socialNetworkMultiplier" json:"socialNetworkMultiplier"`
}

// IsSociety reports whether the journal is published by a society.
func (r JournalRawData) IsSociety() bool {
	return r.Society == nil || *r.Society
}

// OACounts returns the counts for variant, or nil when none were recorded.
func (r JournalRawData) OACounts(variant OAVariant) OACounts {
	return r.OA[variant]
}

// Embargo returns the embargo length in months. ok is false when the journal
// has no embargo recorded or the embargo is zero.
func (r JournalRawData) Embargo() (months int, ok bool) {
	if r.EmbargoMonths == nil || *r.EmbargoMonths == 0 {
		return 0, false
	}
	return *r.EmbargoMonths, true
}

// HistoricalByYear returns values for each historical year, oldest first,
// with missing years as zero.
func HistoricalByYear(values map[int]float64, offset int) mathutil.Series {
	var out mathutil.Series
	for i := range out {
		out[i] = values[constants.FirstHistoricalYear+i-offset]
	}
	return out
}

// PapersHistorical returns the historical paper counts used by the growth
// trend, one year behind the other historical signals.
func (r JournalRawData) PapersHistorical() mathutil.Series {
	if len(r.Papers) == 0 {
		return mathutil.Flat(r.Papers2018)
	}
	return HistoricalByYear(r.Papers, constants.PaperYearOffset)
}

// Lookup resolves a journal identifier to its raw data.
type Lookup interface {
	Lookup(id string) (JournalRawData, bool)
}

// Map is an in-memory Lookup keyed by ISSN-L.
type Map map[string]JournalRawData

// Lookup returns the raw data for id.
func (m Map) Lookup(id string) (JournalRawData, bool) {
	r, ok := m[id]
	return r, ok
}

// IDs returns every journal identifier in sorted order.
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
