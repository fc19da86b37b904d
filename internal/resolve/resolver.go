// Package resolve maps raw ticker strings to stable security identifiers
// using a locally stored security master. The master survives ticker renames
// and relists: a symbol can map to different identifiers over time, so every
// lookup is qualified by an as-of date.
package resolve

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listing is one symbol's identifier over a listing window. A zero Delisted
// means the listing is still open.
type listing struct {
	SecurityID string
	Listed     time.Time
	Delisted   time.Time
}

// SecurityMaster resolves (ticker, date) pairs to security identifiers.
type SecurityMaster struct {
	entries map[string][]listing // uppercase symbol → listings
}

// Available reports whether local reference data exists. Checked once per
// run: when it returns false, the run produces no universe files at all.
func Available(refDir string) bool {
	info, err := os.Stat(refDir)
	return err == nil && info.IsDir()
}

// Load reads the latest date-stamped security_master_YYYY-MM-DD.csv in
// refDir (falling back to security_master.csv) with columns
// symbol,security_id,listed,delisted. Dates use 2006-01-02; an empty
// delisted column means the symbol is still listed.
func Load(refDir string) (*SecurityMaster, error) {
	path := findLatestMaster(refDir)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening security master %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading security master %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("security master %s has no data rows", path)
	}

	m := &SecurityMaster{entries: make(map[string][]listing)}
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("security master %s row %d: want at least symbol,security_id", path, i+2)
		}
		sym := strings.ToUpper(strings.TrimSpace(row[0]))
		sid := strings.TrimSpace(row[1])
		if sym == "" || sid == "" {
			continue
		}

		var l listing
		l.SecurityID = sid
		if len(row) > 2 {
			if l.Listed, err = parseOptionalDate(row[2]); err != nil {
				return nil, fmt.Errorf("security master %s row %d: %w", path, i+2, err)
			}
		}
		if len(row) > 3 {
			if l.Delisted, err = parseOptionalDate(row[3]); err != nil {
				return nil, fmt.Errorf("security master %s row %d: %w", path, i+2, err)
			}
		}
		m.entries[sym] = append(m.entries[sym], l)
	}

	slog.Info("loaded security master", "file", filepath.Base(path), "symbols", len(m.entries))
	return m, nil
}

// Resolve returns the security identifier for a ticker as of the given date.
// An unknown ticker, or a date outside every listing window, is an error.
func (m *SecurityMaster) Resolve(ticker string, asOf time.Time) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(ticker))
	listings, ok := m.entries[sym]
	if !ok {
		return "", fmt.Errorf("resolving %s as of %s: unknown ticker", sym, asOf.Format("2006-01-02"))
	}

	for _, l := range listings {
		if !l.Listed.IsZero() && asOf.Before(l.Listed) {
			continue
		}
		if !l.Delisted.IsZero() && asOf.After(l.Delisted) {
			continue
		}
		return l.SecurityID, nil
	}
	return "", fmt.Errorf("resolving %s as of %s: no listing covers the date", sym, asOf.Format("2006-01-02"))
}

// findLatestMaster finds the latest date-stamped security master file in
// dir. Falls back to the undated file if none exist.
func findLatestMaster(dir string) string {
	pattern := filepath.Join(dir, "security_master_????-??-??.csv")
	matches, err := filepath.Glob(pattern)
	if err == nil && len(matches) > 0 {
		sort.Strings(matches)
		return matches[len(matches)-1]
	}
	return filepath.Join(dir, "security_master.csv")
}

func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return t, nil
}
