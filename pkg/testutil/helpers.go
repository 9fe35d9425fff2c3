// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"
	"testing"

	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/internal/settings"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

// FlatDecay is the downloads-by-age shape used by FlatJournal. Scaled by any
// total it fits an exponential decay well.
var FlatDecay = mathutil.Series{0.4, 0.2, 0.1, 0.05, 0.025}

// FlatJournal returns raw data for a journal with steady papers, no open
// access, no citations and the given downloads and list price.
func FlatJournal(id string, downloads, price float64) rawdata.JournalRawData {
	return rawdata.JournalRawData{
		ISSNL:          id,
		Title:          "Title " + id,
		Subject:        "Physics",
		DownloadsByAge: FlatDecay.Scale(downloads),
		DownloadsTotal: downloads,
		CounterTotal:   downloads,
		ListPrice:      price,
		Papers2018:     100,
	}
}

// ScenarioSettings returns settings with every free channel and usage
// weight switched off, ILL at 5 per request and 5% of delayed usage, and a
// big deal of bigDeal growing 5% a year.
func ScenarioSettings(t testing.TB, bigDeal float64) *settings.Settings {
	t.Helper()
	s, err := settings.New(map[string]any{
		settings.KeyCostILL:                    5,
		settings.KeyILLRequestPercentOfDelayed: 5,
		settings.KeyWeightCitation:             0,
		settings.KeyWeightAuthorship:           0,
		settings.KeyIncludeBackfile:            false,
		settings.KeyIncludeSocialNetworks:      false,
		settings.KeyIncludeBronze:              false,
		settings.KeyIncludeSubmittedVersion:    false,
		settings.KeyCostContentFeePercent:      0,
		settings.KeyCostAlacartIncrease:        8,
		settings.KeyCostBigDeal:                bigDeal,
		settings.KeyCostBigDealIncrease:        5,
	})
	if err != nil {
		t.Fatalf("settings.New() error = %v", err)
	}
	return s
}

// SyntheticPortfolio returns n journals with spread-out downloads and prices
// and their identifiers in order.
func SyntheticPortfolio(n int) (rawdata.Map, []string) {
	data := make(rawdata.Map, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%04d-%04d", i/10000, i%10000)
		downloads := float64(50 + (i*7919)%5000)
		price := float64(200 + (i*104729)%6000)
		data[id] = FlatJournal(id, downloads, price)
		ids[i] = id
	}
	return data, ids
}

// FindID returns the index of id in ids, or -1.
func FindID(ids []string, id string) int {
	for i := range ids {
		if ids[i] == id {
			return i
		}
	}
	return -1
}
