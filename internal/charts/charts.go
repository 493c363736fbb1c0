// Package charts builds declarative chart specifications from a dataset.
// Every chart is attempted on its own; a chart that cannot be derived is
// omitted and never fails the whole set.
package charts

import (
	"fmt"
	"math"
	"sort"

	"trendspotter/adapters/datareadiness/coercer"
	"trendspotter/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// Chart types
const (
	TypeHistogram = "histogram"
	TypeHeatmap   = "heatmap"
	TypeBar       = "bar"
	TypeLine      = "line"
)

const (
	maxHistograms      = 4
	maxCorrelationCols = 5
	minCorrelationCols = 3
	maxCategoryCharts  = 3
	topCategories      = 10
)

// Spec describes one chart. Only the fields relevant to its Type are set.
// NaN never appears: histograms drop it and undefined matrix cells are nil.
type Spec struct {
	Type       string       `json:"type" yaml:"type"`
	Title      string       `json:"title" yaml:"title"`
	X          string       `json:"x,omitempty" yaml:"x,omitempty"`
	Y          string       `json:"y,omitempty" yaml:"y,omitempty"`
	Values     []float64    `json:"values,omitempty" yaml:"values,omitempty"`
	Categories []string     `json:"categories,omitempty" yaml:"categories,omitempty"`
	Counts     []int        `json:"counts,omitempty" yaml:"counts,omitempty"`
	Labels     []string     `json:"labels,omitempty" yaml:"labels,omitempty"`
	Matrix     [][]*float64 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Dates      []string     `json:"dates,omitempty" yaml:"dates,omitempty"`
	Series     []float64    `json:"series,omitempty" yaml:"series,omitempty"`
}

// Specs maps chart identifiers (dist_<col>, correlation, top_<col>,
// conversion_rate, time_series) to chart specs
type Specs map[string]Spec

// Keys returns chart identifiers in a stable order
func (s Specs) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Specs) merge(other Specs) {
	for k, v := range other {
		s[k] = v
	}
}

func (s Specs) add(key string, spec Spec, ok bool) {
	if ok {
		s[key] = spec
	}
}

// Builder produces chart specs. Date values in text columns are parsed with its coercer.
type Builder struct {
	coercer *coercer.TypeCoercer
}

// NewBuilder creates a chart builder
func NewBuilder() *Builder {
	return &Builder{coercer: coercer.Default}
}

// All merges summary and domain charts
func (b *Builder) All(ds *dataset.Dataset) Specs {
	out := b.SummaryCharts(ds)
	out.merge(b.DomainCharts(ds))
	return out
}

// SummaryCharts builds up to 4 histograms, a correlation heatmap when at
// least 3 numeric columns exist, and up to 3 top-10 category bar charts.
func (b *Builder) SummaryCharts(ds *dataset.Dataset) Specs {
	out := make(Specs)
	if ds == nil {
		return out
	}

	numeric := ds.NumericColumns()
	for _, name := range limit(numeric, maxHistograms) {
		col, _ := ds.Column(name)
		spec, ok := histogram(fmt.Sprintf("Distribution of %s", name), name, col.Floats())
		out.add("dist_"+name, spec, ok)
	}

	if len(numeric) >= minCorrelationCols {
		spec, ok := correlation(ds, limit(numeric, maxCorrelationCols))
		out.add("correlation", spec, ok)
	}

	for _, name := range limit(ds.TextColumns(), maxCategoryCharts) {
		col, _ := ds.Column(name)
		spec, ok := topValues(col)
		out.add("top_"+name, spec, ok)
	}

	return out
}

// DomainCharts derives the conversion-rate histogram and the time series
// from columns detected by name.
func (b *Builder) DomainCharts(ds *dataset.Dataset) Specs {
	out := make(Specs)
	if ds == nil {
		return out
	}

	roles := DetectRoles(ds.ColumnNames()).Primary()

	if roles.Conversion != "" && roles.Click != "" {
		spec, ok := conversionRate(ds, roles.Conversion, roles.Click)
		out.add("conversion_rate", spec, ok)
	}

	if numeric := ds.NumericColumns(); roles.Date != "" && len(numeric) > 0 {
		spec, ok := b.timeSeries(ds, roles.Date, numeric[0])
		out.add("time_series", spec, ok)
	}

	return out
}

func limit(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}

func histogram(title, x string, values []float64) (Spec, bool) {
	finiteValues := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finiteValues = append(finiteValues, v)
		}
	}
	if len(finiteValues) == 0 {
		return Spec{}, false
	}
	return Spec{Type: TypeHistogram, Title: title, X: x, Values: finiteValues}, true
}

// correlation computes pairwise Pearson coefficients over rows where both values are present.
func correlation(ds *dataset.Dataset, names []string) (Spec, bool) {
	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		cols[i], _ = ds.Column(name)
	}

	matrix := make([][]*float64, len(cols))
	defined := 0
	for i := range cols {
		matrix[i] = make([]*float64, len(cols))
		for j := range cols {
			if r, ok := pairwisePearson(cols[i], cols[j]); ok {
				matrix[i][j] = &r
				defined++
			}
		}
	}
	if defined == 0 {
		return Spec{}, false
	}
	return Spec{Type: TypeHeatmap, Title: "Correlation Heatmap", Labels: names, Matrix: matrix}, true
}

func pairwisePearson(a, b *dataset.Column) (float64, bool) {
	var x, y []float64
	for k := range a.Values {
		if a.Values[k].Missing || b.Values[k].Missing {
			continue
		}
		x = append(x, a.Values[k].Num)
		y = append(y, b.Values[k].Num)
	}
	if len(x) < 2 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// topValues counts non-missing values, most frequent first; ties keep first-seen order.
func topValues(col *dataset.Column) (Spec, bool) {
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
	if len(order) == 0 {
		return Spec{}, false
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	order = limit(order, topCategories)

	spec := Spec{Type: TypeBar, Title: fmt.Sprintf("Top 10 %s", col.Name), X: col.Name, Y: "count"}
	for _, category := range order {
		spec.Categories = append(spec.Categories, category)
		spec.Counts = append(spec.Counts, counts[category])
	}
	return spec, true
}

// ConversionRates is conversions / clicks * 100 per row. Missing inputs and
// zero clicks give NaN.
func ConversionRates(conversions, clicks *dataset.Column) []float64 {
	rates := make([]float64, len(conversions.Values))
	for i := range rates {
		conv, click := conversions.Values[i], clicks.Values[i]
		if conv.Missing || click.Missing || click.Num == 0 {
			rates[i] = math.NaN()
			continue
		}
		rates[i] = conv.Num / click.Num * 100
	}
	return rates
}

func conversionRate(ds *dataset.Dataset, convName, clickName string) (Spec, bool) {
	conv, _ := ds.Column(convName)
	click, _ := ds.Column(clickName)
	if conv.Kind != dataset.KindNumeric || click.Kind != dataset.KindNumeric {
		return Spec{}, false
	}
	return histogram("Conversion Rate Distribution", "conversion_rate", ConversionRates(conv, click))
}

// timeSeries sums metric per calendar date of dateName. One unparseable date drops the chart.
func (b *Builder) timeSeries(ds *dataset.Dataset, dateName, metricName string) (Spec, bool) {
	dateCol, _ := ds.Column(dateName)
	metricCol, _ := ds.Column(metricName)
	if dateCol.Kind == dataset.KindNumeric {
		return Spec{}, false
	}

	totals := make(map[string]float64)
	for i, v := range dateCol.Values {
		if v.Missing {
			continue
		}
		day := v.Time
		if dateCol.Kind == dataset.KindText {
			t, ok := b.coercer.ParseTimestamp(v.Str)
			if !ok {
				return Spec{}, false
			}
			day = t
		}
		key := day.Format("2006-01-02")
		m := metricCol.Values[i]
		if _, seen := totals[key]; !seen {
			totals[key] = 0
		}
		if !m.Missing {
			totals[key] += m.Num
		}
	}
	if len(totals) == 0 {
		return Spec{}, false
	}

	spec := Spec{Type: TypeLine, Title: fmt.Sprintf("%s Over Time", metricName), X: dateName, Y: metricName}
	for day := range totals {
		spec.Dates = append(spec.Dates, day)
	}
	sort.Strings(spec.Dates)
	for _, day := range spec.Dates {
		spec.Series = append(spec.Series, totals[day])
	}
	return spec, true
}
