// Package domain defines the core data types shared across the pipeline:
// decoded mention records and ingest run bookkeeping.
package domain

import "time"

// MentionRecord is one day of WallStreetBets activity for a single ticker,
// as decoded from the Quiver API payload. Records are ephemeral: they exist
// only between the decode and partition steps of a run.
type MentionRecord struct {
	Ticker    string    // raw ticker as reported upstream
	Date      time.Time // calendar date, UTC midnight
	Mentions  int64     // post/comment mentions for the day, >= 0
	Rank      int64     // popularity rank for the day, 1 = most mentioned
	Sentiment float64   // average sentiment, nominally in [-1, 1]
}

// RunStatus describes the terminal state of an ingest run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a single ingest run's bookkeeping row.
type Run struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Records       int64 // decoded records in the payload
	HistoryFiles  int64 // per-ticker files merged
	UniverseFiles int64 // per-date universe files merged
	Status        RunStatus
	Error         string
}
