package insight

import (
	"fmt"
	"strings"

	"trendspotter/domain/dataset"
	"trendspotter/internal/charts"
	"trendspotter/internal/profiling"
)

// sampleRowCount is how many literal rows go into the prompt
const sampleRowCount = 3

// Summary is the structured view of a dataset that the prompt is built from
type Summary struct {
	Rows               int              `json:"rows"`
	Columns            int              `json:"columns"`
	ColumnNames        []string         `json:"column_names"`
	NumericColumns     []string         `json:"numeric_columns"`
	CategoricalColumns []string         `json:"categorical_columns"`
	DateColumns        []string         `json:"date_columns"`
	MissingValues      int              `json:"missing_values"`
	SampleRows         [][]string       `json:"sample_rows"`
	Stats              profiling.Record `json:"stats"`
	Roles              charts.Primary   `json:"roles"`
}

// SummarizeForPrompt collects shape, column lists, a name-based date guess,
// the missing-cell total, sample rows and basic statistics.
func SummarizeForPrompt(ds *dataset.Dataset) Summary {
	return Summary{
		Rows:               ds.Rows(),
		Columns:            ds.Width(),
		ColumnNames:        ds.ColumnNames(),
		NumericColumns:     ds.NumericColumns(),
		CategoricalColumns: ds.TextColumns(),
		DateColumns:        GuessDateColumnsByName(ds.ColumnNames()),
		MissingValues:      ds.NullTotal(),
		SampleRows:         ds.Head(sampleRowCount),
		Stats:              profiling.NewCalculator().BasicMetrics(ds),
		Roles:              charts.DetectRoles(ds.ColumnNames()).Primary(),
	}
}

// GuessDateColumnsByName matches "date" or "time" in column names. It does not
// look at values; the cleaner's parse-based detector is the rigorous one.
func GuessDateColumnsByName(columns []string) []string {
	return charts.DetectRoles(columns).Date
}

func (s Summary) sampleTable() string {
	if len(s.SampleRows) == 0 {
		return "(no rows)"
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(s.ColumnNames, " | "))
	for _, row := range s.SampleRows {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, " | "))
	}
	return sb.String()
}

func (s Summary) statsTable() string {
	if len(s.NumericColumns) == 0 {
		return "(no numeric columns)"
	}
	var lines []string
	for _, name := range s.NumericColumns {
		st, ok := s.Stats[name]
		if !ok {
			continue
		}
		lines = append(lines, formatStatsLine(name, st))
	}
	return strings.Join(lines, "\n")
}

func formatStatsLine(name string, st profiling.ColumnStats) string {
	return fmt.Sprintf("- %s: mean=%.2f, median=%.2f, std=%.2f, min=%.2f, max=%.2f, nulls=%d",
		name, st.Mean, st.Median, st.Std, st.Min, st.Max, st.NullCount)
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
