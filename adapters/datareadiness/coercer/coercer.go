package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"trendspotter/domain/dataset"
)

// TypeCoercer turns raw cell strings into typed dataset values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// LenientNumbers strips currency symbols, percent signs and grouped thousands
	// separators ("1,234.5") before parsing.
	LenientNumbers bool `json:"lenient_numbers"`
	// TrimStrings trims surrounding whitespace from text cells.
	TrimStrings bool `json:"trim_strings"`
	// MissingTokens are cell contents treated as missing (compared after trimming).
	MissingTokens []string `json:"missing_tokens"`
}

// DefaultCoercionConfig returns the defaults used by every loader
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		LenientNumbers: false,
		TrimStrings:    true,
		MissingTokens: []string{
			"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
			"null", "NULL", "None", "#N/A", "#NA", "<NA>",
		},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Default is a coercer built from DefaultCoercionConfig.
var Default = NewTypeCoercer(DefaultCoercionConfig())

var (
	currencySymbols = []string{"$", "€", "£", "¥"}
	groupedNumber   = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// IsMissingToken reports whether raw is one of the configured missing markers
func (c *TypeCoercer) IsMissingToken(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, token := range c.config.MissingTokens {
		if trimmed == token {
			return true
		}
	}
	return false
}

// ParseNumeric parses a finite float. Infinity and NaN spellings are rejected.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	if c.config.LenientNumbers {
		isNegative := false
		if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
			cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
			isNegative = true
		}
		for _, symbol := range currencySymbols {
			cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
		}
		cleanVal = strings.TrimSpace(strings.TrimSuffix(cleanVal, "%"))
		if groupedNumber.MatchString(cleanVal) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
		if isNegative {
			cleanVal = "-" + cleanVal
		}
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// timestampFormats are tried in order; the first successful layout wins.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// ParseTimestamp parses raw with the standard date/time layouts.
// Bare integers are not accepted as epoch values.
func (c *TypeCoercer) ParseTimestamp(raw string) (time.Time, bool) {
	strVal := strings.TrimSpace(raw)
	if strVal == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuildColumn infers a column kind from raw strings and converts the cells.
// A column is numeric when it has at least one row and every non-missing cell
// parses as a number (an all-missing column is numeric). Everything else is text.
func (c *TypeCoercer) BuildColumn(name string, raw []string) dataset.Column {
	analysis := c.AnalyzeTypeDistribution(raw)

	col := dataset.Column{Name: name, Kind: analysis.RecommendedType, Values: make([]dataset.Value, len(raw))}
	for i, cell := range raw {
		if c.IsMissingToken(cell) {
			col.Values[i] = dataset.Missing()
			continue
		}
		if col.Kind == dataset.KindNumeric {
			f, _ := c.ParseNumeric(cell)
			col.Values[i] = dataset.Number(f)
			continue
		}
		if c.config.TrimStrings {
			cell = strings.TrimSpace(cell)
		}
		col.Values[i] = dataset.Text(cell)
	}
	return col
}

// AnalyzeTypeDistribution counts how many non-missing cells parse as each type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		if c.IsMissingToken(val) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseTimestamp(val); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.Kind {
	if analysis.TotalCount == 0 {
		return dataset.KindText
	}
	if analysis.NumericCount == analysis.ValidCount {
		return dataset.KindNumeric
	}
	return dataset.KindText
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	TimestampCount  int          `json:"timestamp_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	TimestampRatio  float64      `json:"timestamp_ratio"`
	RecommendedType dataset.Kind `json:"recommended_type"`
}
