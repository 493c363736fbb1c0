package excel

import "strings"

// Format identifies how an uploaded file should be parsed.
type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
	FormatUnknown     Format = "unknown"
)

// DetectFormat picks a parser from the filename extension.
func DetectFormat(filename string) Format {
	lower := strings.ToLower(strings.TrimSpace(filename))
	switch {
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".tsv"), strings.HasSuffix(lower, ".txt"):
		return FormatDelimited
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"), strings.HasSuffix(lower, ".xls"):
		return FormatSpreadsheet
	default:
		return FormatUnknown
	}
}
