package wsb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quiverwsb/internal/resolve"
)

// RebuildUniverses regenerates per-date universe CSVs from the on-disk
// per-ticker history plus the security master. Used when reference data is
// delivered after mention history was already gathered. Returns the number
// of universe files written.
func RebuildUniverses(ctx context.Context, dataDir string, master *resolve.SecurityMaster, log *slog.Logger) (int, error) {
	histDir := HistoryDir(dataDir)
	matches, err := filepath.Glob(filepath.Join(histDir, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("globbing history files: %w", err)
	}

	buckets := make(map[string][]string) // YYYYMMDD → universe lines

	for _, path := range matches {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		ticker := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), ".csv"))

		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading history %s: %w", path, err)
		}

		for _, line := range strings.Split(string(data), "\n") {
			if line == "" {
				continue
			}
			dateKey, rest, ok := strings.Cut(line, ",")
			if !ok {
				log.Warn("skipping malformed history line", "ticker", ticker, "line", line)
				continue
			}
			date, err := time.ParseInLocation("20060102", dateKey, time.UTC)
			if err != nil {
				log.Warn("skipping history line with bad date", "ticker", ticker, "line", line)
				continue
			}

			sid, err := master.Resolve(ticker, date)
			if err != nil {
				return 0, fmt.Errorf("rebuilding universes: %w", err)
			}
			buckets[dateKey] = append(buckets[dateKey], sid+","+ticker+","+rest)
		}
	}

	uniDir := UniverseDir(dataDir)
	wrote := 0
	for _, dateKey := range sortedKeys(buckets) {
		path := filepath.Join(uniDir, dateKey+".csv")
		if err := MergeLines(path, buckets[dateKey], OrderLexicographic); err != nil {
			log.Error("merging universe file failed", "date", dateKey, "err", err)
			continue
		}
		wrote++
	}

	return wrote, nil
}
