// Package profiling computes per-column descriptive statistics for numeric columns.
package profiling

import (
	"trendspotter/domain/dataset"
)

// Record maps a numeric column name to its statistics
type Record map[string]ColumnStats

// Calculator computes metrics records. It holds no state.
type Calculator struct{}

// NewCalculator creates a new metrics calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// BasicMetrics computes statistics for every numeric column. Columns with no
// non-missing values get NaN statistics; it never fails for a well-formed dataset.
func (c *Calculator) BasicMetrics(ds *dataset.Dataset) Record {
	record := make(Record)
	if ds == nil {
		return record
	}

	for _, name := range ds.NumericColumns() {
		col, _ := ds.Column(name)
		colStats := SummarizeColumn(col.Floats())
		colStats.NullCount = col.NullCount()
		record[name] = colStats
	}

	return record
}

// Ordered returns the record entries following the dataset's numeric column order, up to limit (0 = all).
func (r Record) Ordered(ds *dataset.Dataset, limit int) []NamedStats {
	var out []NamedStats
	for _, name := range ds.NumericColumns() {
		if limit > 0 && len(out) == limit {
			break
		}
		if s, ok := r[name]; ok {
			out = append(out, NamedStats{Column: name, Stats: s})
		}
	}
	return out
}

// NamedStats pairs a column name with its statistics
type NamedStats struct {
	Column string      `json:"column"`
	Stats  ColumnStats `json:"stats"`
}
