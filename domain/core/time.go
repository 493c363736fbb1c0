package core

import (
	"time"
)

// Timestamp is the moment a document or dataset was produced
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// FileStamp formats t for use in export filenames (20060102_1504).
func (t Timestamp) FileStamp() string {
	return time.Time(t).Format("20060102_1504")
}

// Display is the long human form used on report covers ("January 2, 2006").
func (t Timestamp) Display() string {
	return time.Time(t).Format("January 2, 2006")
}
