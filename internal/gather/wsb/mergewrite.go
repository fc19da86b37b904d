package wsb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LineOrder selects how a destination file's lines are sorted after a merge.
type LineOrder int

const (
	// OrderByDate sorts by the YYYYMMDD date parsed from each line's first
	// comma-delimited field, calendar ascending. Used for history files.
	OrderByDate LineOrder = iota
	// OrderLexicographic sorts by full line text. Used for universe files,
	// where the security identifier leads the line.
	OrderLexicographic
)

// MergeLines unions newLines with the destination file's existing lines,
// deduplicates by exact string equality, sorts per order, and atomically
// rewrites the file (write-temp-then-rename). Calling it twice with the
// same inputs leaves the file byte-identical.
func MergeLines(path string, newLines []string, order LineOrder) error {
	set := make(map[string]struct{})

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				set[line] = struct{}{}
			}
		}
	}

	for _, line := range newLines {
		if line != "" {
			set[line] = struct{}{}
		}
	}

	merged := make([]string, 0, len(set))
	for line := range set {
		merged = append(merged, line)
	}
	sortLines(merged, order)

	return writeAtomic(path, merged)
}

func sortLines(lines []string, order LineOrder) {
	switch order {
	case OrderByDate:
		sort.Slice(lines, func(i, j int) bool {
			di, dj := lineDate(lines[i]), lineDate(lines[j])
			if !di.Equal(dj) {
				return di.Before(dj)
			}
			return lines[i] < lines[j]
		})
	default:
		sort.Strings(lines)
	}
}

// lineDate parses the YYYYMMDD prefix of a history line. Unparseable lines
// sort to the front as the zero time.
func lineDate(line string) time.Time {
	field := line
	if idx := strings.IndexByte(line, ','); idx >= 0 {
		field = line[:idx]
	}
	t, err := time.ParseInLocation("20060102", field, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// writeAtomic writes lines to a temp file in the destination directory and
// renames it over path, so a crash mid-write never truncates the file.
func writeAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".merge-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
