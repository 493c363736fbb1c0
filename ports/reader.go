package ports

import (
	"trendspotter/domain/dataset"
)

// TabularReader parses an uploaded file into a dataset. Implementations
// pick the format from the file name and report malformed input as PARSE_FAILURE.
type TabularReader interface {
	LoadFile(filename string, data []byte) (*dataset.Dataset, error)
}
