package dataset

import "unsafe"

// Info is a read-only snapshot of a dataset's shape and column metadata.
// It is derived from a dataset and never mutated on its own.
type Info struct {
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	ColumnNames []string        `json:"column_names"`
	Types       map[string]Kind `json:"types"`
	NullCounts  map[string]int  `json:"null_counts"`
	MemoryBytes int64           `json:"memory_bytes"`
}

// MemoryMB is MemoryBytes in mebibytes.
func (i Info) MemoryMB() float64 {
	return float64(i.MemoryBytes) / (1024 * 1024)
}

// Describe derives the info record. An empty or nil dataset yields a zero-valued record
// with empty (non-nil) collections.
func Describe(d *Dataset) Info {
	info := Info{
		Rows:        d.Rows(),
		Columns:     d.Width(),
		ColumnNames: d.ColumnNames(),
		Types:       make(map[string]Kind, d.Width()),
		NullCounts:  make(map[string]int, d.Width()),
	}
	if d == nil {
		return info
	}
	for i := range d.Columns {
		c := &d.Columns[i]
		info.Types[c.Name] = c.Kind
		info.NullCounts[c.Name] = c.NullCount()
		info.MemoryBytes += columnBytes(c)
	}
	return info
}

// columnBytes estimates the in-memory footprint of a column, counting string payloads.
func columnBytes(c *Column) int64 {
	var cell int64
	switch c.Kind {
	case KindNumeric:
		cell = 8
	case KindDate:
		cell = int64(unsafe.Sizeof(Value{}.Time))
	default:
		cell = int64(unsafe.Sizeof(""))
	}
	total := int64(len(c.Values)) * cell
	if c.Kind == KindText {
		for _, v := range c.Values {
			total += int64(len(v.Str))
		}
	}
	return total
}
