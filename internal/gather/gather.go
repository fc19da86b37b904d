// Package gather defines the common interface for data gathering jobs.
package gather

import "context"

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes one gathering pass. It returns when the pass completes
	// or fails; scheduling repeated passes is the caller's concern.
	Run(ctx context.Context) error
}
