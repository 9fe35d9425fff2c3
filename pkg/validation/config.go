// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"
)

// ValidateSpendCap checks that a spend cap percent is a finite, non-negative
// number.
func ValidateSpendCap(percent float64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return fmt.Errorf("spend cap percent must be a non-negative number, got %v", percent)
	}
	return nil
}

// ValidatePageSize checks that a report page size is not negative. Zero
// means every journal.
func ValidatePageSize(size int) error {
	if size < 0 {
		return fmt.Errorf("page size must not be negative, got %d", size)
	}
	return nil
}

// ScenarioValidator checks a scenario against the journal data it will run on.
type ScenarioValidator struct {
	SpendCapPercent float64
	PageSize        int
	// JournalIDs are the journals the scenario asks for. Empty means all of
	// KnownIDs.
	JournalIDs []string
	KnownIDs   []string
}

// ValidateAll returns warnings for settings that are legal but likely
// mistakes.
func (sv *ScenarioValidator) ValidateAll() []string {
	var warnings []string

	if sv.SpendCapPercent > 100 {
		warnings = append(warnings, fmt.Sprintf("Spend cap %.1f%% exceeds the big deal price", sv.SpendCapPercent))
	}

	known := make(map[string]bool, len(sv.KnownIDs))
	for _, id := range sv.KnownIDs {
		known[id] = true
	}

	count := len(sv.KnownIDs)
	if len(sv.JournalIDs) > 0 {
		count = len(sv.JournalIDs)
		seen := make(map[string]bool, len(sv.JournalIDs))
		for _, id := range sv.JournalIDs {
			if seen[id] {
				warnings = append(warnings, fmt.Sprintf("Journal '%s' is listed more than once", id))
			}
			seen[id] = true
			if !known[id] {
				warnings = append(warnings, fmt.Sprintf("Journal '%s' has no raw data and will project as zero", id))
			}
		}
	}

	if sv.PageSize > count {
		warnings = append(warnings, fmt.Sprintf("Page size %d is larger than the %d journals in the scenario", sv.PageSize, count))
	}

	return warnings
}
