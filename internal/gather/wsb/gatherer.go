// Package wsb ingests the Quiver WallStreetBets mention dataset: one fetch
// of the full history, partitioning into per-ticker and per-date buckets,
// and a merge-rewrite of every touched destination file.
package wsb

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"quiverwsb/internal/domain"
	"quiverwsb/internal/gather"
	"quiverwsb/internal/quiver"
	"quiverwsb/internal/resolve"
	"quiverwsb/internal/store"
)

// Compile-time interface check.
var _ gather.Gatherer = (*MentionGatherer)(nil)

// Fetcher fetches a raw dataset payload. Satisfied by *quiver.Client.
type Fetcher interface {
	Fetch(ctx context.Context, resourcePath string) (string, error)
}

// MentionGatherer runs the WallStreetBets ingest pass. The archive and run
// stores are optional; a nil master disables universe output for the run.
type MentionGatherer struct {
	client  Fetcher
	master  *resolve.SecurityMaster
	dataDir string
	archive store.MentionStore
	runs    store.RunStore
	now     func() time.Time
	log     *slog.Logger
}

// NewMentionGatherer creates a MentionGatherer writing under dataDir.
func NewMentionGatherer(client Fetcher, master *resolve.SecurityMaster, dataDir string, archive store.MentionStore, runs store.RunStore) *MentionGatherer {
	return &MentionGatherer{
		client:  client,
		master:  master,
		dataDir: dataDir,
		archive: archive,
		runs:    runs,
		now:     time.Now,
		log:     slog.Default().With("gatherer", "wsb-mentions"),
	}
}

// Name returns the gatherer identifier.
func (g *MentionGatherer) Name() string { return "wsb-mentions" }

// Run executes one ingest pass and records its outcome in the run log.
// Fetch exhaustion, a malformed payload, and an unresolvable ticker are
// fatal to the pass; a single destination file failing to merge is logged
// and skipped without aborting the remaining merges.
func (g *MentionGatherer) Run(ctx context.Context) error {
	started := g.now().UTC()

	var runID int64
	if g.runs != nil {
		id, err := g.runs.BeginRun(ctx, started)
		if err != nil {
			g.log.Warn("recording run start failed", "err", err)
		} else {
			runID = id
		}
	}

	stats, err := g.run(ctx)

	if g.runs != nil && runID != 0 {
		run := &domain.Run{
			ID:            runID,
			StartedAt:     started,
			FinishedAt:    g.now().UTC(),
			Records:       stats.records,
			HistoryFiles:  stats.historyFiles,
			UniverseFiles: stats.universeFiles,
			Status:        domain.RunStatusSucceeded,
		}
		if err != nil {
			run.Status = domain.RunStatusFailed
			run.Error = err.Error()
		}
		if ferr := g.runs.FinishRun(ctx, run); ferr != nil {
			g.log.Warn("recording run finish failed", "err", ferr)
		}
	}

	if err != nil {
		g.log.Error("run failed", "err", err)
		return err
	}
	return nil
}

type runStats struct {
	records       int64
	historyFiles  int64
	universeFiles int64
}

func (g *MentionGatherer) run(ctx context.Context) (runStats, error) {
	var stats runStats

	payload, err := g.client.Fetch(ctx, quiver.DatasetWallStreetBets)
	if err != nil {
		return stats, fmt.Errorf("fetching dataset: %w", err)
	}
	if payload == "" {
		g.log.Info("no data available upstream")
		return stats, nil
	}

	records, err := quiver.Decode(payload)
	if err != nil {
		return stats, fmt.Errorf("decoding payload: %w", err)
	}
	stats.records = int64(len(records))

	// Archive the raw records before reshaping. Best effort: the CSV
	// projections below are the durable product.
	if g.archive != nil {
		if err := g.archive.WriteMentions(ctx, records); err != nil {
			g.log.Warn("archiving raw records failed", "err", err)
		}
	}

	parts, err := Partition(records, g.now().UTC(), g.master)
	if err != nil {
		return stats, err
	}

	histDir := HistoryDir(g.dataDir)
	for _, ticker := range sortedKeys(parts.History) {
		path := filepath.Join(histDir, ticker+".csv")
		if err := MergeLines(path, parts.History[ticker], OrderByDate); err != nil {
			g.log.Error("merging history file failed", "ticker", ticker, "err", err)
			continue
		}
		stats.historyFiles++
	}

	uniDir := UniverseDir(g.dataDir)
	for _, date := range sortedKeys(parts.Universe) {
		path := filepath.Join(uniDir, date+".csv")
		if err := MergeLines(path, parts.Universe[date], OrderLexicographic); err != nil {
			g.log.Error("merging universe file failed", "date", date, "err", err)
			continue
		}
		stats.universeFiles++
	}

	g.log.Info("run complete",
		"records", stats.records,
		"history_files", stats.historyFiles,
		"universe_files", stats.universeFiles,
	)
	return stats, nil
}

// HistoryDir returns the per-ticker history directory under dataDir.
func HistoryDir(dataDir string) string {
	return filepath.Join(dataDir, "alternative", "quiver", "wallstreetbets")
}

// UniverseDir returns the per-date universe directory under dataDir.
func UniverseDir(dataDir string) string {
	return filepath.Join(HistoryDir(dataDir), "universes")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
