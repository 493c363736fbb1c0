package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared type of a column. Every value in a column shares it.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindDate    Kind = "date"
)

// DateLayout is how date values are rendered when a string form is needed.
const DateLayout = "2006-01-02 15:04:05"

// Value is one cell. Only the field matching the column kind is meaningful.
type Value struct {
	Missing bool      `json:"missing,omitempty"`
	Num     float64   `json:"num,omitempty"`
	Str     string    `json:"str,omitempty"`
	Time    time.Time `json:"time,omitempty"`
}

// Missing returns the missing cell.
func Missing() Value { return Value{Missing: true} }

// Number returns a numeric cell. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Num: f}
}

// Text returns a text cell.
func Text(s string) Value { return Value{Str: s} }

// Date returns a date cell.
func Date(t time.Time) Value { return Value{Time: t} }

// Column is a named, homogeneously typed sequence of values.
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// NullCount counts missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// Format renders v as text according to the column kind. Missing cells render empty.
func (c *Column) Format(v Value) string {
	return FormatValue(c.Kind, v)
}

// FormatValue renders a value of the given kind as text.
func FormatValue(kind Kind, v Value) string {
	if v.Missing {
		return ""
	}
	switch kind {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format(DateLayout)
	default:
		return v.Str
	}
}

// Dataset is an ordered sequence of equal-length columns.
type Dataset struct {
	Columns []Column `json:"columns"`
}

// New builds a dataset from columns. It does not validate lengths; see Validate.
func New(columns ...Column) *Dataset {
	return &Dataset{Columns: columns}
}

// Rows is the shared column length.
func (d *Dataset) Rows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Width is the number of columns.
func (d *Dataset) Width() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Validate reports whether every column has the same length.
func (d *Dataset) Validate() bool {
	rows := d.Rows()
	for _, c := range d.Columns {
		if len(c.Values) != rows {
			return false
		}
	}
	return true
}

// ColumnNames returns names in column order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, d.Width())
	if d == nil {
		return names
	}
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns lists numeric column names in order.
func (d *Dataset) NumericColumns() []string {
	return d.columnsOfKind(KindNumeric)
}

// TextColumns lists text (categorical) column names in order.
func (d *Dataset) TextColumns() []string {
	return d.columnsOfKind(KindText)
}

func (d *Dataset) columnsOfKind(kind Kind) []string {
	var names []string
	if d == nil {
		return names
	}
	for _, c := range d.Columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// Row returns the i-th row across all columns.
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.Columns))
	for j := range d.Columns {
		row[j] = d.Columns[j].Values[i]
	}
	return row
}

// FormatRow renders the i-th row as strings.
func (d *Dataset) FormatRow(i int) []string {
	row := make([]string, len(d.Columns))
	for j := range d.Columns {
		row[j] = d.Columns[j].Format(d.Columns[j].Values[i])
	}
	return row
}

// Head returns up to n rows rendered as strings.
func (d *Dataset) Head(n int) [][]string {
	if n > d.Rows() {
		n = d.Rows()
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, d.FormatRow(i))
	}
	return rows
}

// NullTotal counts every missing cell in the dataset.
func (d *Dataset) NullTotal() int {
	total := 0
	if d == nil {
		return total
	}
	for i := range d.Columns {
		total += d.Columns[i].NullCount()
	}
	return total
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for i, c := range d.Columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return out
}

// SelectRows builds a new dataset holding only the given row indexes, in order.
func (d *Dataset) SelectRows(idx []int) *Dataset {
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for j, c := range d.Columns {
		values := make([]Value, len(idx))
		for k, i := range idx {
			values[k] = c.Values[i]
		}
		out.Columns[j] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return out
}

// HasColumnLike reports whether any column name contains sub, case-insensitively.
func (d *Dataset) HasColumnLike(sub string) bool {
	sub = strings.ToLower(sub)
	for _, name := range d.ColumnNames() {
		if strings.Contains(strings.ToLower(name), sub) {
			return true
		}
	}
	return false
}
