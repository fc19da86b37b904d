package wsb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quiverwsb/internal/domain"
	"quiverwsb/internal/resolve"
)

// Partitions holds one run's pending output lines keyed by destination file.
type Partitions struct {
	History  map[string][]string // lowercased ticker → "YYYYMMDD,mentions,rank,sentiment"
	Universe map[string][]string // YYYYMMDD → "security_id,TICKER,mentions,rank,sentiment"
}

// Partition reshapes decoded records into the two on-disk projections:
// per-ticker history buckets and per-date universe buckets.
//
// Records dated exactly today are dropped: the upstream counts for the
// current day are still moving and must not be persisted. When master is
// nil (no local reference data this run) no universe buckets are produced
// at all; history buckets are unaffected. A ticker the master cannot
// resolve is an error; the caller aborts the run.
func Partition(records []domain.MentionRecord, today time.Time, master *resolve.SecurityMaster) (*Partitions, error) {
	todayKey := today.UTC().Format("20060102")

	parts := &Partitions{
		History:  make(map[string][]string),
		Universe: make(map[string][]string),
	}

	for _, rec := range records {
		date := rec.Date.UTC()
		dateKey := date.Format("20060102")
		if dateKey == todayKey {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(rec.Ticker))
		if ticker == "" {
			continue
		}

		fileKey := strings.ToLower(ticker)
		parts.History[fileKey] = append(parts.History[fileKey], historyLine(dateKey, rec))

		if master != nil {
			sid, err := master.Resolve(ticker, date)
			if err != nil {
				return nil, fmt.Errorf("partitioning %s/%s: %w", ticker, dateKey, err)
			}
			parts.Universe[dateKey] = append(parts.Universe[dateKey], universeLine(sid, ticker, rec))
		}
	}

	return parts, nil
}

func historyLine(dateKey string, rec domain.MentionRecord) string {
	return fmt.Sprintf("%s,%d,%d,%s", dateKey, rec.Mentions, rec.Rank, formatSentiment(rec.Sentiment))
}

func universeLine(sid, ticker string, rec domain.MentionRecord) string {
	return fmt.Sprintf("%s,%s,%d,%d,%s", sid, ticker, rec.Mentions, rec.Rank, formatSentiment(rec.Sentiment))
}

// formatSentiment renders a sentiment score with the shortest decimal form
// that round-trips, so 0.2 stays "0.2" rather than "0.200000".
func formatSentiment(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
