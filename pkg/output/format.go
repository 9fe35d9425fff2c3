// Package output provides utilities for formatting and displaying scenario reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/unsub-forecast/internal/journal"
	"github.com/iwvelando/unsub-forecast/internal/report"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders doc to w in the named format.
func Write(w io.Writer, format string, doc report.Document) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, doc)
	case constants.OutputFormatCSV:
		return CsvFormat(w, doc)
	case constants.OutputFormatJSON:
		return JSONFormat(w, doc)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, doc report.Document) error {
	p := message.NewPrinter(language.English)
	s := doc.Summary

	fmt.Fprintf(w, "--- Scenario summary ---\n")
	_, _ = p.Fprintf(w, "Scenario cost     | $%.2f\n", s.CostScenario)
	_, _ = p.Fprintf(w, "Big deal (5y avg) | $%.2f\n", s.CostBigDealProjected)
	_, _ = p.Fprintf(w, "Cost percent      | %.2f%%\n", s.CostPercent)
	_, _ = p.Fprintf(w, "Subscribed        | %d of %d\n", s.NumJournalsSubscribed, s.NumJournalsTotal)
	fmt.Fprintf(w, "Instant access    | %s\n", percentText(s.UseInstantPercent))
	if doc.Selection != nil {
		_, _ = p.Fprintf(w, "Spend cap         | $%.2f (%.1f%%)\n", doc.Selection.SpendCap, doc.Selection.SpendCapPercent)
		for _, note := range doc.Selection.Notes {
			fmt.Fprintf(w, "Note              | %s\n", note)
		}
	}
	if len(s.Missing) > 0 {
		fmt.Fprintf(w, "Missing data      | %s\n", strings.Join(s.Missing, ","))
	}

	if !isTable(doc) {
		return prettyRows(w, doc)
	}

	fmt.Fprintf(w, "\n--- Journals (%d of %d) ---\n", len(doc.Journals), doc.JournalsCount)
	fmt.Fprintf(w, "ISSN-L    | Subscribed | Usage | Instant | Cost | NCPPU | Title\n")
	fmt.Fprintf(w, "______    | __________ | _____ | _______ | ____ | _____ | _____\n")
	for _, row := range doc.Journals {
		_, _ = p.Fprintf(w, "%s | %t | %.0f | %.0f%% | $%.2f | %s | %s\n",
			row.ISSNL, row.Subscribed, row.Usage, row.InstantUsagePercent, row.Cost, ratioText(row.NCPPU), row.Title)
	}
	return nil
}

// prettyRows prints the rows of a non-table view one compact JSON object per
// line under the summary.
func prettyRows(w io.Writer, doc report.Document) error {
	data, err := json.Marshal(doc.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode %s rows: %w", doc.View, err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to split %s rows: %w", doc.View, err)
	}

	fmt.Fprintf(w, "\n--- %s rows (%d of %d) ---\n", doc.View, len(rows), doc.JournalsCount)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\n", row)
	}
	return nil
}

// CsvFormat outputs the journal rows in comma-separated value format. Only
// the table view has a CSV layout.
func CsvFormat(w io.Writer, doc report.Document) error {
	if !isTable(doc) {
		return fmt.Errorf("%s output supports only the %s view, got %s",
			constants.OutputFormatCSV, constants.ViewTable, doc.View)
	}
	fmt.Fprintf(w, `"issnl","title","subject","subscribed","usage","instant_percent","cost","ncppu","ncppu_rank"`)
	for _, c := range journal.Channels {
		fmt.Fprintf(w, `,"use_%s_percent"`, c)
	}
	fmt.Fprintf(w, "\n")
	for _, row := range doc.Journals {
		rank := ""
		if row.NCPPURank != nil {
			rank = fmt.Sprint(*row.NCPPURank)
		}
		fmt.Fprintf(w, `"%s","%s","%s","%t","%.0f","%.0f","%.2f","%s","%s"`,
			row.ISSNL, csvEscape(row.Title), csvEscape(row.Subject), row.Subscribed,
			row.Usage, row.InstantUsagePercent, row.Cost, ratioText(row.NCPPU), rank)
		for _, pct := range channelPercents(row) {
			fmt.Fprintf(w, `,"%.0f"`, pct)
		}
		fmt.Fprintf(w, "\n")
	}
	return nil
}

// JSONFormat outputs the whole document as indented JSON.
func JSONFormat(w io.Writer, doc report.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func isTable(doc report.Document) bool {
	return doc.View == "" || doc.View == constants.ViewTable
}

func channelPercents(row report.TableRow) [len(journal.Channels)]float64 {
	var out [len(journal.Channels)]float64
	out[journal.ChannelOA] = row.UseOAPercent
	out[journal.ChannelSocialNetworks] = row.UseSocialNetworksPercent
	out[journal.ChannelBackfile] = row.UseBackfilePercent
	out[journal.ChannelSubscription] = row.UseSubscriptionPercent
	out[journal.ChannelILL] = row.UseILLPercent
	out[journal.ChannelOtherDelayed] = row.UseOtherDelayedPercent
	return out
}

func ratioText(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func percentText(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func csvEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
