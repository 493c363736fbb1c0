package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"trendspotter/adapters/datareadiness/coercer"
	"trendspotter/domain/dataset"
	"trendspotter/internal"
	"trendspotter/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader parses uploaded delimited-text and spreadsheet files into datasets
type DataReader struct {
	coercer         *coercer.TypeCoercer
	sheetCoercer    *coercer.TypeCoercer
	logger          *internal.Logger
	candidateDelims []rune
}

// NewDataReader creates a reader with default coercion rules. Spreadsheet cells
// come back formatted ("1,234"), so they are parsed leniently.
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	sheetCfg := coercer.DefaultCoercionConfig()
	sheetCfg.LenientNumbers = true
	return &DataReader{
		coercer:         coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		sheetCoercer:    coercer.NewTypeCoercer(sheetCfg),
		logger:          logger,
		candidateDelims: []rune{',', ';', '\t', '|'},
	}
}

// LoadFile dispatches on the filename extension
func (r *DataReader) LoadFile(filename string, data []byte) (*dataset.Dataset, error) {
	switch DetectFormat(filename) {
	case FormatDelimited:
		return r.LoadDelimited(data)
	case FormatSpreadsheet:
		return r.LoadSpreadsheet(data)
	default:
		return nil, errors.ParseFailure(fmt.Sprintf("unsupported file type: %s", filename), nil)
	}
}

// LoadDelimited parses delimited text. The first record is the header.
func (r *DataReader) LoadDelimited(data []byte) (*dataset.Dataset, error) {
	startTime := time.Now()

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return nil, errors.ParseFailure("delimited file is not valid UTF-8 text", nil)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.ParseFailure("no columns to parse from file", nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = r.detectDelimiter(data)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ParseFailure("failed to read delimited file", err)
		}
		rows = append(rows, record)
	}

	headers := normalizeHeaders(rows[0], len(rows[0]))
	for i, row := range rows[1:] {
		if len(row) > len(headers) {
			return nil, errors.ParseFailure(
				fmt.Sprintf("expected %d fields in line %d, saw %d", len(headers), i+2, len(row)), nil)
		}
	}

	ds := r.processRows(headers, rows[1:], r.coercer)
	r.logger.Info("[DataReader] delimited file read in %.2fms (%d rows, %d columns)",
		float64(time.Since(startTime).Nanoseconds())/1e6, ds.Rows(), ds.Width())
	return ds, nil
}

// LoadSpreadsheet parses the first sheet of a workbook
func (r *DataReader) LoadSpreadsheet(data []byte) (*dataset.Dataset, error) {
	startTime := time.Now()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseFailure("failed to open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseFailure("spreadsheet has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.ParseFailure(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseFailure(fmt.Sprintf("sheet %q is empty", sheets[0]), nil)
	}

	// Rows are trimmed of trailing empty cells, so the widest row sets the column count.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := normalizeHeaders(rows[0], width)

	ds := r.processRows(headers, rows[1:], r.sheetCoercer)
	r.logger.Info("[DataReader] sheet %q read in %.2fms (%d rows, %d columns)",
		sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, ds.Rows(), ds.Width())
	return ds, nil
}

// processRows converts raw string rows into typed columns. Short rows are padded with missing cells.
func (r *DataReader) processRows(headers []string, rows [][]string, c *coercer.TypeCoercer) *dataset.Dataset {
	columns := make([]dataset.Column, len(headers))
	for j, header := range headers {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		columns[j] = c.BuildColumn(header, raw)
	}
	return dataset.New(columns...)
}

// detectDelimiter picks the candidate that splits the header line into the most fields.
func (r *DataReader) detectDelimiter(data []byte) rune {
	firstLine := string(data)
	if idx := strings.IndexAny(firstLine, "\r\n"); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	best, bestCount := ',', 0
	for _, delim := range r.candidateDelims {
		if n := strings.Count(firstLine, string(delim)); n > bestCount {
			best, bestCount = delim, n
		}
	}
	return best
}

// normalizeHeaders trims names, fills blanks with "Unnamed: i" and suffixes duplicates with ".n".
func normalizeHeaders(headerRow []string, width int) []string {
	headers := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(headerRow) {
			name = strings.TrimSpace(headerRow[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		headers[i] = name
	}
	return headers
}
