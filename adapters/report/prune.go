package report

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// isExport matches the names this package writes
func isExport(name string) bool {
	switch {
	case strings.HasPrefix(name, "adtech_report_") && strings.HasSuffix(name, ".pdf"):
		return true
	case strings.HasPrefix(name, "adtech_presentation_") && strings.HasSuffix(name, ".pptx"):
		return true
	}
	return false
}

// Prune removes exported documents in dir last modified before cutoff.
// Other files are left alone. A missing dir is not an error.
func Prune(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isExport(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
