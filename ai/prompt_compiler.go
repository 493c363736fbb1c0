package ai

import (
	"fmt"
	"strings"
)

// FocusHints carries the column roles and data quality facts that steer the prompt
type FocusHints struct {
	ConversionColumn string
	ClickColumn      string
	CostColumn       string
	DateColumn       string
	Rows             int
	Columns          int
	MissingValues    int
}

// CompileFocusFragments converts detected column roles into short prompt lines
// that point the model at the AdTech measures actually present in the data.
func CompileFocusFragments(h FocusHints) []string {
	var out []string

	if h.ConversionColumn != "" && h.ClickColumn != "" {
		out = append(out, fmt.Sprintf(
			"FOCUS: Conversion rate can be derived as %s / %s * 100; comment on it.",
			h.ConversionColumn, h.ClickColumn,
		))
	} else if h.ConversionColumn != "" {
		out = append(out, fmt.Sprintf("FOCUS: %s holds conversions; treat it as the primary outcome.", h.ConversionColumn))
	}

	if h.CostColumn != "" {
		out = append(out, fmt.Sprintf("FOCUS: %s looks like spend; relate it to outcomes.", h.CostColumn))
		if h.ConversionColumn != "" {
			out = append(out, fmt.Sprintf("FOCUS: Cost per conversion is %s / %s.", h.CostColumn, h.ConversionColumn))
		}
	}

	if h.DateColumn != "" {
		out = append(out, fmt.Sprintf("FOCUS: %s looks like a date; mention trends over time.", h.DateColumn))
	}

	if cells := h.Rows * h.Columns; cells > 0 && h.MissingValues > 0 {
		ratio := float64(h.MissingValues) / float64(cells) * 100
		if ratio >= 5 {
			out = append(out, fmt.Sprintf("DATA QUALITY: %.1f%% of cells are missing; say whether this limits conclusions.", ratio))
		}
	}

	// Deduplicate while preserving order
	seen := make(map[string]struct{}, len(out))
	dedup := out[:0]
	for _, s := range out {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dedup = append(dedup, s)
	}
	return dedup
}
