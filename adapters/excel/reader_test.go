package excel

import (
	"testing"

	"trendspotter/domain/dataset"
	"trendspotter/internal"
	"trendspotter/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestReader() *DataReader {
	return NewDataReader(internal.NewNopLogger())
}

func TestLoadDelimitedInfersKinds(t *testing.T) {
	r := newTestReader()

	ds, err := r.LoadDelimited([]byte("campaign,clicks,cost\nA,10,1.5\nB,,2\nC,30,NA\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"campaign", "clicks", "cost"}, ds.ColumnNames())
	assert.Equal(t, []string{"clicks", "cost"}, ds.NumericColumns())

	clicks, ok := ds.Column("clicks")
	require.True(t, ok)
	assert.Equal(t, 1, clicks.NullCount())
	assert.Equal(t, []float64{10, 30}, clicks.Floats())
}

func TestLoadDelimitedDetectsDelimiter(t *testing.T) {
	r := newTestReader()

	ds, err := r.LoadDelimited([]byte("a;b\n1;2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())

	ds, err = r.LoadDelimited([]byte("a\tb\tc\n1\t2\t3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Width())
}

func TestLoadDelimitedStripsBOMAndPadsShortRows(t *testing.T) {
	r := newTestReader()

	ds, err := r.LoadDelimited([]byte("\xef\xbb\xbfname,score\nx\ny,5\n"))
	require.NoError(t, err)

	assert.Equal(t, "name", ds.ColumnNames()[0])
	score, ok := ds.Column("score")
	require.True(t, ok)
	assert.Equal(t, 1, score.NullCount())
}

func TestLoadDelimitedHeaderOnly(t *testing.T) {
	ds, err := newTestReader().LoadDelimited([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Rows())
	assert.Equal(t, 2, ds.Width())
}

func TestLoadDelimitedFailures(t *testing.T) {
	r := newTestReader()

	cases := map[string][]byte{
		"empty":        []byte(""),
		"invalid utf8": {0xff, 0xfe, 0x00, 'a'},
		"bad quoting":  []byte("a,b\n\"1,2\n3\"x,4\n"),
		"long row":     []byte("a,b\n1,2,3\n"),
	}
	for name, data := range cases {
		_, err := r.LoadDelimited(data)
		require.Error(t, err, name)
		assert.True(t, errors.HasCode(err, errors.CodeParseFailure), name)
	}
}

func TestNormalizeHeaders(t *testing.T) {
	got := normalizeHeaders([]string{"id", "", "id", " id "}, 5)
	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", "id.2", "Unnamed: 4"}, got)
}

func TestLoadSpreadsheetFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"channel", "spend", "date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"search", 1200.5, "2024-01-01"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"social", 80, "2024-01-02"}))

	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := newTestReader().LoadFile("campaigns.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Rows())
	assert.Equal(t, []string{"channel", "spend", "date"}, ds.ColumnNames())
	spend, ok := ds.Column("spend")
	require.True(t, ok)
	assert.Equal(t, dataset.KindNumeric, spend.Kind)
	assert.Equal(t, []float64{1200.5, 80}, spend.Floats())
}

func TestLoadSpreadsheetRejectsGarbage(t *testing.T) {
	_, err := newTestReader().LoadSpreadsheet([]byte("not a workbook"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseFailure))
}

func TestLoadFileUnknownExtension(t *testing.T) {
	_, err := newTestReader().LoadFile("report.json", []byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseFailure))
}
