package validation

import (
	"math"
	"strings"
	"testing"
)

func TestValidateSpendCap(t *testing.T) {
	tests := []struct {
		name      string
		percent   float64
		expectErr bool
	}{
		{name: "Zero", percent: 0},
		{name: "Typical", percent: 50},
		{name: "Above big deal", percent: 150},
		{name: "Negative", percent: -1, expectErr: true},
		{name: "NaN", percent: math.NaN(), expectErr: true},
		{name: "Infinity", percent: math.Inf(1), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpendCap(tt.percent)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateSpendCap(%v) error = %v, expectErr %v", tt.percent, err, tt.expectErr)
			}
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	if err := ValidatePageSize(0); err != nil {
		t.Errorf("ValidatePageSize(0) unexpected error = %v", err)
	}
	if err := ValidatePageSize(25); err != nil {
		t.Errorf("ValidatePageSize(25) unexpected error = %v", err)
	}
	if err := ValidatePageSize(-1); err == nil {
		t.Errorf("ValidatePageSize(-1) expected error")
	}
}

func TestScenarioValidatorValidateAll(t *testing.T) {
	tests := []struct {
		name      string
		validator ScenarioValidator
		expected  []string
	}{
		{
			name: "Clean scenario",
			validator: ScenarioValidator{
				SpendCapPercent: 50,
				PageSize:        2,
				KnownIDs:        []string{"a", "b", "c"},
			},
		},
		{
			name: "Spend cap above big deal",
			validator: ScenarioValidator{
				SpendCapPercent: 120,
				KnownIDs:        []string{"a"},
			},
			expected: []string{"Spend cap 120.0% exceeds"},
		},
		{
			name: "Duplicate and unknown journals",
			validator: ScenarioValidator{
				SpendCapPercent: 50,
				JournalIDs:      []string{"a", "a", "z"},
				KnownIDs:        []string{"a", "b"},
			},
			expected: []string{
				"Journal 'a' is listed more than once",
				"Journal 'z' has no raw data",
			},
		},
		{
			name: "Page size larger than scenario",
			validator: ScenarioValidator{
				PageSize:   10,
				JournalIDs: []string{"a"},
				KnownIDs:   []string{"a", "b", "c"},
			},
			expected: []string{"Page size 10 is larger than the 1 journals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.validator.ValidateAll()
			if len(warnings) != len(tt.expected) {
				t.Fatalf("expected %d warnings, got %d: %v", len(tt.expected), len(warnings), warnings)
			}
			for i, want := range tt.expected {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("warning %d = %q, want it to contain %q", i, warnings[i], want)
				}
			}
		})
	}
}
