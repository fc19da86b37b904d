package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"quiverwsb/internal/domain"
)

// Compile-time interface check.
var _ MentionStore = (*ParquetStore)(nil)

// ParquetStore implements MentionStore using Parquet files on disk, one file
// per calendar year.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// MentionArchiveRecord is the Parquet schema for archived mention rows.
type MentionArchiveRecord struct {
	Ticker    string  `parquet:"ticker"`
	Date      int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, UTC midnight
	Mentions  int64   `parquet:"mentions"`
	Rank      int64   `parquet:"rank"`
	Sentiment float64 `parquet:"sentiment"`
}

// WriteMentions archives records grouped by year at:
//
//	<DataDir>/alternative/quiver/wsb-archive/<YYYY>.parquet
//
// Each year file is read back, merged with the incoming batch (dedup by
// ticker and date, incoming wins), and rewritten.
func (s *ParquetStore) WriteMentions(_ context.Context, records []domain.MentionRecord) error {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[int][]MentionArchiveRecord)
	for _, r := range records {
		date := r.Date.UTC()
		groups[date.Year()] = append(groups[date.Year()], MentionArchiveRecord{
			Ticker:    r.Ticker,
			Date:      date.UnixMilli(),
			Mentions:  r.Mentions,
			Rank:      r.Rank,
			Sentiment: r.Sentiment,
		})
	}

	for year, incoming := range groups {
		path := s.archivePath(year)

		// Read existing records to merge.
		existing, _ := readParquetFile[MentionArchiveRecord](path)
		merged := mergeMentionRecords(existing, incoming)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing mention archive for %d: %w", year, err)
		}
	}
	return nil
}

// ReadMentions reads archived records dated within [start, end].
func (s *ParquetStore) ReadMentions(_ context.Context, start, end time.Time) ([]domain.MentionRecord, error) {
	var out []domain.MentionRecord
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile[MentionArchiveRecord](s.archivePath(year))
		if err != nil {
			// No archive file for this year.
			continue
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Date).UTC()
			if (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end)) {
				out = append(out, domain.MentionRecord{
					Ticker:    r.Ticker,
					Date:      ts,
					Mentions:  r.Mentions,
					Rank:      r.Rank,
					Sentiment: r.Sentiment,
				})
			}
		}
	}
	return out, nil
}

func (s *ParquetStore) archivePath(year int) string {
	return filepath.Join(s.DataDir, "alternative", "quiver", "wsb-archive", fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeMentionRecords deduplicates archive records by (ticker, date),
// preferring incoming records over existing ones. Results are sorted by
// date, then ticker.
func mergeMentionRecords(existing, incoming []MentionArchiveRecord) []MentionArchiveRecord {
	type key struct {
		ticker string
		date   int64
	}
	seen := make(map[key]MentionArchiveRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Ticker, r.Date}] = r
	}
	for _, r := range incoming {
		seen[key{r.Ticker, r.Date}] = r
	}

	merged := make([]MentionArchiveRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Date != merged[j].Date {
			return merged[i].Date < merged[j].Date
		}
		return merged[i].Ticker < merged[j].Ticker
	})
	return merged
}
