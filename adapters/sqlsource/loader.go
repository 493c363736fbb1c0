package sqlsource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trendspotter/adapters/datareadiness/coercer"
	"trendspotter/domain/dataset"
	"trendspotter/internal"
	"trendspotter/internal/errors"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Loader runs one query per call against a fresh connection and materializes the result
type Loader struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewLoader creates a SQL loader
func NewLoader(logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{coercer: coercer.Default, logger: logger}
}

// LoadSQL opens a connection, executes query and reads every row.
// The connection is closed before returning on both paths.
func (l *Loader) LoadSQL(ctx context.Context, desc Descriptor, query string) (*dataset.Dataset, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.InvalidInput("query is required")
	}

	startTime := time.Now()
	l.logger.Info("[SQLLoader] connecting to %s", desc.Redacted())

	db, err := sqlx.Open(desc.DriverName(), desc.DSN())
	if err != nil {
		return nil, errors.ConnectionFailure(fmt.Sprintf("failed to open %s connection", desc.Driver), err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.ConnectionFailure(fmt.Sprintf("failed to connect to %s", desc.Redacted()), err)
	}

	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.QueryFailure("query failed", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.QueryFailure("failed to read result columns", err)
	}

	cells := make([][]interface{}, len(names))
	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, errors.QueryFailure("failed to scan row", err)
		}
		for j := range names {
			cells[j] = append(cells[j], normalizeCell(record[j]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.QueryFailure("failed while reading rows", err)
	}

	columns := make([]dataset.Column, len(names))
	for j, name := range names {
		columns[j] = l.buildColumn(name, cells[j])
	}
	ds := dataset.New(columns...)

	l.logger.Info("[SQLLoader] query returned %d rows, %d columns in %v", ds.Rows(), ds.Width(), time.Since(startTime))
	return ds, nil
}

// normalizeCell maps driver values onto float64, time.Time, string or nil.
func normalizeCell(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case float64, time.Time, string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

// buildColumn keeps driver-typed columns as they are and infers everything else from text.
func (l *Loader) buildColumn(name string, cells []interface{}) dataset.Column {
	allTime, allNum := true, true
	for _, c := range cells {
		switch c.(type) {
		case nil:
		case time.Time:
			allNum = false
		case float64:
			allTime = false
		default:
			allTime, allNum = false, false
		}
	}

	if len(cells) > 0 && (allTime || allNum) {
		kind := dataset.KindNumeric
		if allTime && !allNum {
			kind = dataset.KindDate
		}
		col := dataset.Column{Name: name, Kind: kind, Values: make([]dataset.Value, len(cells))}
		for i, c := range cells {
			switch x := c.(type) {
			case nil:
				col.Values[i] = dataset.Missing()
			case time.Time:
				col.Values[i] = dataset.Date(x)
			case float64:
				col.Values[i] = dataset.Number(x)
			}
		}
		return col
	}

	raw := make([]string, len(cells))
	for i, c := range cells {
		switch x := c.(type) {
		case nil:
			raw[i] = ""
		case time.Time:
			raw[i] = dataset.FormatValue(dataset.KindDate, dataset.Date(x))
		case float64:
			raw[i] = dataset.FormatValue(dataset.KindNumeric, dataset.Number(x))
		default:
			raw[i] = fmt.Sprint(x)
		}
	}
	return l.coercer.BuildColumn(name, raw)
}
