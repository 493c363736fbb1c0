package core

import (
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseSessionID(t *testing.T) {
	id := NewSessionID()
	parsed, err := ParseSessionID(id.String())
	if err != nil {
		t.Fatalf("ParseSessionID(%q) failed: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	if _, err := ParseSessionID(""); err == nil {
		t.Error("Expected error for empty session ID")
	}
	if _, err := ParseSessionID("not-a-uuid"); err == nil {
		t.Error("Expected error for malformed session ID")
	}
}

func TestTimestampFileStamp(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC))
	if got := ts.FileStamp(); got != "20240309_1405" {
		t.Errorf("Expected 20240309_1405, got %s", got)
	}
}

func TestTimestampDisplay(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC))
	if got := ts.Display(); got != "March 9, 2024" {
		t.Errorf("Expected March 9, 2024, got %s", got)
	}
}
