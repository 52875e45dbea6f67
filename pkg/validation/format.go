// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatXLSX,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s", strings.Join(OutputFormats, ", "), format)
}

// ValidateDatasetSource checks the dataset source name.
func ValidateDatasetSource(source string) error {
	if source != constants.DatasetSourceFile && source != constants.DatasetSourcePostgres {
		return fmt.Errorf("expected dataset source of %s or %s, got %s",
			constants.DatasetSourceFile, constants.DatasetSourcePostgres, source)
	}
	return nil
}
