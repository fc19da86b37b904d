package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateGate bounds outbound request rate to an upstream API quota: at most
// limit permits are granted in any rolling window of length window.
type RateGate struct {
	limiter *rate.Limiter
}

// NewRateGate creates a RateGate allowing limit permits per rolling window.
// Permits are spaced evenly at window/limit with no burst allowance, so the
// quota holds even when waiting callers are queued back-to-back.
func NewRateGate(limit int, window time.Duration) *RateGate {
	if limit < 1 {
		limit = 1
	}
	interval := window / time.Duration(limit)
	return &RateGate{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until a permit is available or the context is cancelled.
func (g *RateGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
