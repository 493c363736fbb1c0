package cleaning

import (
	"testing"
	"time"

	"trendspotter/domain/dataset"
	"trendspotter/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(vals ...interface{}) dataset.Column {
	col := dataset.Column{Kind: dataset.KindNumeric}
	for _, v := range vals {
		if v == nil {
			col.Values = append(col.Values, dataset.Missing())
			continue
		}
		col.Values = append(col.Values, dataset.Number(float64(v.(int))))
	}
	return col
}

func txt(vals ...string) dataset.Column {
	col := dataset.Column{Kind: dataset.KindText}
	for _, v := range vals {
		if v == "" {
			col.Values = append(col.Values, dataset.Missing())
			continue
		}
		col.Values = append(col.Values, dataset.Text(v))
	}
	return col
}

func named(name string, col dataset.Column) dataset.Column {
	col.Name = name
	return col
}

func TestCleanRemovesDuplicatesKeepingFirst(t *testing.T) {
	ds := dataset.New(
		named("id", num(1, 2, 1, 3, 2)),
		named("channel", txt("a", "b", "a", "c", "b")),
	)

	out, report := NewCleaner(internal.NewNopLogger()).Clean(ds)

	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, 5, report.OriginalRows)
	assert.Equal(t, 3, report.CleanedRows)
	assert.Equal(t, 2, report.DuplicatesRemoved)
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}}, out.Head(10))
}

func TestCleanTreatsMissingAsEqualWhenDeduping(t *testing.T) {
	ds := dataset.New(
		named("x", num(nil, nil, 4)),
		named("y", txt("", "", "z")),
	)

	out, report := NewCleaner(internal.NewNopLogger()).Clean(ds)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 1, report.DuplicatesRemoved)
}

func TestCleanKeepsRowsThatDifferBySubSecond(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	stamps := dataset.Column{Name: "ts", Kind: dataset.KindDate, Values: []dataset.Value{
		{Time: base},
		{Time: base.Add(500 * time.Millisecond)},
		{Time: base.In(time.FixedZone("CET", 3600))},
	}}
	ds := dataset.New(stamps, named("clicks", num(7, 7, 7)))

	out, report := NewCleaner(internal.NewNopLogger()).Clean(ds)

	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.True(t, out.Columns[0].Values[1].Time.Equal(base.Add(500*time.Millisecond)))
}

func TestCleanFillsMedianAndMode(t *testing.T) {
	ds := dataset.New(
		named("clicks", num(10, nil, 30, 20)),
		named("device", txt("mobile", "desktop", "", "desktop")),
	)

	out, report := NewCleaner(internal.NewNopLogger()).Clean(ds)

	clicks, _ := out.Column("clicks")
	assert.Equal(t, 0, clicks.NullCount())
	assert.Equal(t, 20.0, clicks.Values[1].Num)

	device, _ := out.Column("device")
	assert.Equal(t, 0, device.NullCount())
	assert.Equal(t, "desktop", device.Values[2].Str)

	assert.Equal(t, map[string]int{"clicks": 1}, report.FilledNumeric)
	assert.Equal(t, map[string]int{"device": 1}, report.FilledText)
}

func TestCleanModeTieGoesToFirstSeen(t *testing.T) {
	ds := dataset.New(named("device", txt("tablet", "mobile", "", "mobile", "tablet")))

	out, _ := NewCleaner(internal.NewNopLogger()).Clean(ds)
	device, _ := out.Column("device")
	assert.Equal(t, "tablet", device.Values[2].Str)
}

func TestCleanLeavesAllMissingColumns(t *testing.T) {
	ds := dataset.New(
		named("id", num(1, 2)),
		named("empty", num(nil, nil)),
	)

	out, report := NewCleaner(internal.NewNopLogger()).Clean(ds)
	empty, _ := out.Column("empty")
	assert.Equal(t, 2, empty.NullCount())
	assert.Equal(t, []string{"empty"}, report.SkippedAllMissing)
}

func TestCleanDoesNotModifyInput(t *testing.T) {
	ds := dataset.New(named("clicks", num(1, nil, 1)))

	_, _ = NewCleaner(internal.NewNopLogger()).Clean(ds)
	clicks, _ := ds.Column("clicks")
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 1, clicks.NullCount())
}

func TestCleanNeverIncreasesRowsOrLeavesNumericGaps(t *testing.T) {
	inputs := []*dataset.Dataset{
		dataset.New(),
		dataset.New(named("a", num())),
		dataset.New(named("a", num(nil)), named("b", txt("x"))),
		dataset.New(named("a", num(5, nil, 5, nil, 7)), named("b", txt("", "q", "", "q", ""))),
	}
	cleaner := NewCleaner(internal.NewNopLogger())

	for _, ds := range inputs {
		out, _ := cleaner.Clean(ds)
		assert.LessOrEqual(t, out.Rows(), ds.Rows())
		for _, name := range out.NumericColumns() {
			before, _ := ds.Column(name)
			after, _ := out.Column(name)
			if before.NullCount() < len(before.Values) {
				assert.Zero(t, after.NullCount(), name)
			}
		}
	}
}

func TestDetectDateColumns(t *testing.T) {
	ds := dataset.New(
		named("day", txt("2024-01-01", "", "2024-01-03")),
		named("mixed", txt("2024-01-01", "2024-01-02", "soon")),
		named("clicks", num(20240101, 20240102, 20240103)),
		named("blank", txt("", "", "")),
		dataset.Column{Name: "ts", Kind: dataset.KindDate, Values: []dataset.Value{
			dataset.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			dataset.Missing(),
			dataset.Missing(),
		}},
	)

	got := NewCleaner(internal.NewNopLogger()).DetectDateColumns(ds)
	require.NotNil(t, got)
	assert.Equal(t, []string{"day", "ts"}, got)
}
