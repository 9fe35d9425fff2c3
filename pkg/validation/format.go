// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/unsub-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateView checks that view names a report view and that format can
// render it. CSV renders only the table view.
func ValidateView(format, view string) error {
	known := false
	for _, v := range constants.Views {
		if v == view {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("expected view of %s, got %s", strings.Join(constants.Views, ", "), view)
	}
	if format == constants.OutputFormatCSV && view != constants.ViewTable {
		return fmt.Errorf("%s output supports only the %s view, got %s", constants.OutputFormatCSV, constants.ViewTable, view)
	}
	return nil
}
