package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/unsub-forecast/internal/report"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
	"github.com/iwvelando/unsub-forecast/pkg/optimization"
)

func sampleDocument() report.Document {
	rank := 1
	return report.Document{
		Settings: map[string]any{"cost_bigdeal": 6000.0},
		Selection: &optimization.Selection{
			SpendCapPercent: 50,
			SpendCap:        3315.3,
			Notes:           []string{"ILL cost with nothing subscribed already exceeds the spend cap"},
		},
		Summary: report.PortfolioSummary{
			CostScenario:          1298.2,
			CostBigDealProjected:  6630.6,
			CostPercent:           19.58,
			NumJournalsSubscribed: 2,
			NumJournalsTotal:      3,
			UseInstantPercent:     mathutil.Float64Ptr(66.67),
			Missing:               []string{"9999-9999"},
		},
		Journals: []report.TableRow{
			{
				Meta:                   report.Meta{ISSNL: "1234-5678", Title: `The "Big" Journal`, Subject: "Physics", Subscribed: true},
				NCPPU:                  mathutil.Float64Ptr(1.25),
				NCPPURank:              &rank,
				Cost:                   1234.5,
				Usage:                  2500,
				InstantUsagePercent:    100,
				UseSubscriptionPercent: 100,
			},
			{
				Meta:                   report.Meta{ISSNL: "0000-0001", Title: "Small", Subject: "Biology"},
				Cost:                   0,
				Usage:                  0,
				UseOtherDelayedPercent: 95,
				UseILLPercent:          5,
			},
		},
		JournalsCount: 3,
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleDocument()); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Scenario summary ---",
		"Scenario cost     | $1,298.20",
		"Big deal (5y avg) | $6,630.60",
		"Subscribed        | 2 of 3",
		"Instant access    | 66.7%",
		"Spend cap         | $3,315.30 (50.0%)",
		"Note              | ILL cost with nothing subscribed",
		"Missing data      | 9999-9999",
		"--- Journals (2 of 3) ---",
		"ISSN-L    | Subscribed | Usage | Instant | Cost | NCPPU | Title",
		"1234-5678 | true | 2,500 | 100% | $1,234.50 | 1.25 | The \"Big\" Journal",
		"0000-0001 | false | 0 | 0% | $0.00 | n/a | Small",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in:\n%s", want, output)
		}
	}
}

func TestPrettyFormatWithoutSelection(t *testing.T) {
	doc := sampleDocument()
	doc.Selection = nil
	doc.Summary.UseInstantPercent = nil
	doc.Summary.Missing = nil

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, doc); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()
	if strings.Contains(output, "Spend cap") {
		t.Errorf("PrettyFormat printed a spend cap without a selection")
	}
	if strings.Contains(output, "Missing data") {
		t.Errorf("PrettyFormat printed missing data when none was missing")
	}
	if !strings.Contains(output, "Instant access    | n/a") {
		t.Errorf("PrettyFormat should print n/a without instant usage")
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleDocument()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}

	wantHeader := `"issnl","title","subject","subscribed","usage","instant_percent","cost","ncppu","ncppu_rank",` +
		`"use_oa_percent","use_social_networks_percent","use_backfile_percent","use_subscription_percent","use_ill_percent","use_other_delayed_percent"`
	if lines[0] != wantHeader {
		t.Errorf("header = %s, want %s", lines[0], wantHeader)
	}

	wantFirst := `"1234-5678","The ""Big"" Journal","Physics","true","2500","100","1234.50","1.25","1","0","0","0","100","0","0"`
	if lines[1] != wantFirst {
		t.Errorf("row 1 = %s, want %s", lines[1], wantFirst)
	}
	wantSecond := `"0000-0001","Small","Biology","false","0","0","0.00","n/a","","0","0","0","0","5","95"`
	if lines[2] != wantSecond {
		t.Errorf("row 2 = %s, want %s", lines[2], wantSecond)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, sampleDocument()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"settings", "selection", "summary", "journals", "journalsCount"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON output missing key %q", key)
		}
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format    string
		expectErr bool
	}{
		{format: "pretty"},
		{format: "csv"},
		{format: "json"},
		{format: "xml", expectErr: true},
		{format: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.format, sampleDocument())
			if tt.expectErr {
				if err == nil {
					t.Errorf("Write(%q) expected error", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("Write(%q) error = %v", tt.format, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Write(%q) produced no output", tt.format)
			}
		})
	}
}

func impactDocument() report.Document {
	doc := sampleDocument()
	doc.View = "impact"
	doc.Journals = nil
	doc.Rows = []report.ImpactRow{
		{Meta: report.Meta{ISSNL: "1234-5678", Title: "Big"}, TotalUsage: 2500, Downloads: 2000},
		{Meta: report.Meta{ISSNL: "0000-0001", Title: "Small"}},
	}
	doc.RowsCount = 2
	return doc
}

func TestPrettyFormatView(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, impactDocument()); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "--- Scenario summary ---") {
		t.Errorf("PrettyFormat dropped the summary for a non-table view:\n%s", output)
	}
	if !strings.Contains(output, "--- impact rows (2 of 3) ---") {
		t.Errorf("PrettyFormat missing the impact header in:\n%s", output)
	}
	if strings.Contains(output, "ISSN-L    | Subscribed") {
		t.Errorf("PrettyFormat printed the table header for the impact view")
	}

	_, rows, _ := strings.Cut(output, "--- impact rows (2 of 3) ---\n")
	lines := strings.Split(strings.TrimSpace(rows), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 row lines, got %d:\n%s", len(lines), rows)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("row line is not JSON: %v", err)
	}
	if first["issnl"] != "1234-5678" || first["totalUsage"] != 2500.0 {
		t.Errorf("unexpected first row %v", first)
	}
}

func TestCsvFormatRejectsView(t *testing.T) {
	var buf bytes.Buffer
	err := CsvFormat(&buf, impactDocument())
	if err == nil {
		t.Fatalf("CsvFormat() expected error for the impact view")
	}
	if !strings.Contains(err.Error(), "impact") {
		t.Errorf("error %q should name the view", err)
	}
	if buf.Len() != 0 {
		t.Errorf("CsvFormat wrote %q before failing", buf.String())
	}
}

func TestJSONFormatView(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, impactDocument()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	var decoded struct {
		View      string           `json:"view"`
		Rows      []map[string]any `json:"rows"`
		RowsCount int              `json:"rowsCount"`
		Journals  []map[string]any `json:"journals"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.View != "impact" || len(decoded.Rows) != 2 || decoded.RowsCount != 2 {
		t.Errorf("view %q with %d rows (count %d), want impact with 2", decoded.View, len(decoded.Rows), decoded.RowsCount)
	}
	if decoded.Journals != nil {
		t.Errorf("journals should be omitted for a non-table view, got %v", decoded.Journals)
	}
}
