// Package session holds the per-user working state: the loaded dataset and
// everything derived from it, plus a gate that admits one action at a time.
package session

import (
	"time"

	"trendspotter/domain/dataset"
	"trendspotter/internal/charts"
	"trendspotter/internal/cleaning"
	"trendspotter/internal/insight"
)

// SourceKind tells where a dataset came from
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceSQL    SourceKind = "sql"
)

// Source describes the origin of the loaded dataset
type Source struct {
	Kind SourceKind `json:"kind"`
	Name string     `json:"name"` // file name, or redacted connection + query
}

// State is either Empty or Loaded
type State interface {
	isState()
}

// Empty is the state before any dataset was loaded
type Empty struct{}

func (Empty) isState() {}

// Loaded carries the current dataset and its derived artifacts.
// Narrative and Charts are nil until analysis has run.
type Loaded struct {
	Dataset           *dataset.Dataset
	Info              dataset.Info
	Source            Source
	LoadedAt          time.Time
	CleanReport       *cleaning.Report
	DateColumns       []string
	Narrative         *insight.Narrative
	Charts            charts.Specs
	InsightsGenerated bool
}

func (Loaded) isState() {}

// NewLoaded starts a fresh Loaded state for ds with all analysis fields reset
func NewLoaded(ds *dataset.Dataset, src Source, loadedAt time.Time) Loaded {
	return Loaded{
		Dataset:  ds,
		Info:     dataset.Describe(ds),
		Source:   src,
		LoadedAt: loadedAt,
	}
}

// WithCleaned replaces the dataset by its cleaned version. Analysis fields
// are reset since they described the previous dataset.
func (l Loaded) WithCleaned(ds *dataset.Dataset, report cleaning.Report, dateColumns []string) Loaded {
	next := NewLoaded(ds, l.Source, l.LoadedAt)
	next.CleanReport = &report
	next.DateColumns = dateColumns
	return next
}

// WithAnalysis attaches a narrative and charts
func (l Loaded) WithAnalysis(n insight.Narrative, specs charts.Specs) Loaded {
	l.Narrative = &n
	l.Charts = specs
	l.InsightsGenerated = true
	return l
}

// WithoutAnalysis drops narrative, charts and the generated flag, keeping the dataset
func (l Loaded) WithoutAnalysis() Loaded {
	l.Narrative = nil
	l.Charts = nil
	l.InsightsGenerated = false
	return l
}
