// Package store defines storage interfaces for the raw mention archive and
// ingest run bookkeeping.
package store

import (
	"context"
	"time"

	"quiverwsb/internal/domain"
)

// MentionStore persists and retrieves raw mention records.
type MentionStore interface {
	// WriteMentions archives a batch of decoded mention records.
	WriteMentions(ctx context.Context, records []domain.MentionRecord) error

	// ReadMentions returns archived records dated within [start, end].
	ReadMentions(ctx context.Context, start, end time.Time) ([]domain.MentionRecord, error)
}

// RunStore persists and retrieves ingest run records.
type RunStore interface {
	// BeginRun inserts a new run in the running state and returns its ID.
	BeginRun(ctx context.Context, startedAt time.Time) (int64, error)

	// FinishRun records a run's terminal state and counters by run.ID.
	FinishRun(ctx context.Context, run *domain.Run) error

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}
