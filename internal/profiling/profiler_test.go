package profiling

import (
	"encoding/json"
	"math"
	"testing"

	"trendspotter/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericColumn(name string, vals ...float64) dataset.Column {
	col := dataset.Column{Name: name, Kind: dataset.KindNumeric}
	for _, v := range vals {
		col.Values = append(col.Values, dataset.Number(v))
	}
	return col
}

func TestBasicMetrics(t *testing.T) {
	ds := dataset.New(
		numericColumn("clicks", 2, 4, 4, 4, 5, 5, 7, 9),
		dataset.Column{Name: "channel", Kind: dataset.KindText, Values: make([]dataset.Value, 8)},
	)

	record := NewCalculator().BasicMetrics(ds)
	require.Len(t, record, 1)

	clicks := record["clicks"]
	assert.InDelta(t, 5.0, clicks.Mean, 1e-9)
	assert.InDelta(t, 4.5, clicks.Median, 1e-9)
	assert.InDelta(t, 2.138089935, clicks.Std, 1e-6)
	assert.Equal(t, 2.0, clicks.Min)
	assert.Equal(t, 9.0, clicks.Max)
	assert.Equal(t, 0, clicks.NullCount)
}

func TestBasicMetricsAllMissingColumn(t *testing.T) {
	ds := dataset.New(numericColumn("spend", math.NaN(), math.NaN(), math.NaN()))

	var record Record
	require.NotPanics(t, func() { record = NewCalculator().BasicMetrics(ds) })

	spend := record["spend"]
	assert.Equal(t, 3, spend.NullCount)
	assert.True(t, math.IsNaN(spend.Mean))
	assert.True(t, math.IsNaN(spend.Std))
	assert.True(t, math.IsNaN(spend.Max))
}

func TestSingleValueHasUndefinedStd(t *testing.T) {
	s := SummarizeColumn([]float64{3})
	assert.Equal(t, 3.0, s.Mean)
	assert.True(t, math.IsNaN(s.Std))
}

func TestColumnStatsJSONUsesNullForNaN(t *testing.T) {
	raw, err := json.Marshal(Record{"spend": SummarizeColumn(nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"spend":{"mean":null,"median":null,"std":null,"min":null,"max":null,"null_count":0}}`, string(raw))
}

func TestOrderedFollowsColumnOrder(t *testing.T) {
	ds := dataset.New(
		numericColumn("b", 1),
		numericColumn("a", 2),
		numericColumn("c", 3),
	)
	ordered := NewCalculator().BasicMetrics(ds).Ordered(ds, 2)
	require.Len(t, ordered, 2)
	assert.Equal(t, "b", ordered[0].Column)
	assert.Equal(t, "a", ordered[1].Column)
}
