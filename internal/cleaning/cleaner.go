// Package cleaning removes duplicate rows, fills missing cells and detects
// which columns hold dates.
package cleaning

import (
	"strings"
	"time"

	"trendspotter/adapters/datareadiness/coercer"
	"trendspotter/domain/dataset"
	"trendspotter/internal"

	"github.com/montanaflynn/stats"
)

// Report summarizes what Clean changed
type Report struct {
	OriginalRows      int            `json:"original_rows"`
	CleanedRows       int            `json:"cleaned_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	FilledNumeric     map[string]int `json:"filled_numeric"`
	FilledText        map[string]int `json:"filled_text"`
	SkippedAllMissing []string       `json:"skipped_all_missing"`
}

// Cleaner applies deduplication and missing-value imputation
type Cleaner struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(logger *internal.Logger) *Cleaner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Cleaner{coercer: coercer.Default, logger: logger}
}

// Clean returns a new dataset with exact duplicate rows removed (first occurrence
// kept, order preserved), numeric gaps filled with the column median and text
// gaps filled with the column mode. Entirely missing columns stay missing.
// The input is not modified.
func (c *Cleaner) Clean(ds *dataset.Dataset) (*dataset.Dataset, Report) {
	report := Report{
		OriginalRows:  ds.Rows(),
		FilledNumeric: make(map[string]int),
		FilledText:    make(map[string]int),
	}

	out := dedupe(ds)
	report.CleanedRows = out.Rows()
	report.DuplicatesRemoved = report.OriginalRows - report.CleanedRows

	for i := range out.Columns {
		col := &out.Columns[i]
		missing := col.NullCount()
		if missing == 0 {
			continue
		}
		if missing == len(col.Values) {
			report.SkippedAllMissing = append(report.SkippedAllMissing, col.Name)
			continue
		}

		switch col.Kind {
		case dataset.KindNumeric:
			median, err := stats.Median(col.Floats())
			if err != nil {
				continue
			}
			fill(col, dataset.Number(median))
			report.FilledNumeric[col.Name] = missing
		case dataset.KindText:
			fill(col, dataset.Text(mode(col)))
			report.FilledText[col.Name] = missing
		}
	}

	c.logger.Info("[Cleaner] %d -> %d rows (%d duplicates removed, %d numeric and %d text columns filled)",
		report.OriginalRows, report.CleanedRows, report.DuplicatesRemoved, len(report.FilledNumeric), len(report.FilledText))
	return out, report
}

// dedupe keeps the first occurrence of each distinct row. Missing equals missing.
func dedupe(ds *dataset.Dataset) *dataset.Dataset {
	seen := make(map[string]struct{}, ds.Rows())
	keep := make([]int, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		key := rowKey(ds, i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return ds.SelectRows(keep)
}

func rowKey(ds *dataset.Dataset, i int) string {
	var sb strings.Builder
	for j := range ds.Columns {
		v := ds.Columns[j].Values[i]
		if v.Missing {
			sb.WriteString("\x00")
		} else {
			sb.WriteString("\x01")
			// Format drops sub-second precision and zone; dates key on the instant.
			if ds.Columns[j].Kind == dataset.KindDate {
				sb.WriteString(v.Time.UTC().Format(time.RFC3339Nano))
			} else {
				sb.WriteString(ds.Columns[j].Format(v))
			}
		}
		sb.WriteString("\x1f")
	}
	return sb.String()
}

func fill(col *dataset.Column, v dataset.Value) {
	for i := range col.Values {
		if col.Values[i].Missing {
			col.Values[i] = v
		}
	}
}

// mode is the most frequent non-missing value. Ties go to the value seen first.
func mode(col *dataset.Column) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		if counts[v.Str] == 0 {
			order = append(order, v.Str)
		}
		counts[v.Str]++
	}

	best, bestCount := "", 0
	for _, s := range order {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}

// DetectDateColumns lists text and date columns whose every non-missing value
// parses as a date. A single failure excludes the column, as does a column with
// no values at all. Numeric columns are never candidates.
func (c *Cleaner) DetectDateColumns(ds *dataset.Dataset) []string {
	var found []string
	if ds == nil {
		return found
	}
	for i := range ds.Columns {
		col := &ds.Columns[i]
		switch col.Kind {
		case dataset.KindDate:
			if col.NullCount() < len(col.Values) {
				found = append(found, col.Name)
			}
		case dataset.KindText:
			if c.allParseAsDate(col) {
				found = append(found, col.Name)
			}
		}
	}
	c.logger.Debug("[Cleaner] date columns detected: %v", found)
	return found
}

func (c *Cleaner) allParseAsDate(col *dataset.Column) bool {
	parsed := 0
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		if _, ok := c.coercer.ParseTimestamp(v.Str); !ok {
			return false
		}
		parsed++
	}
	return parsed > 0
}
