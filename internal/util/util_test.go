package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRateGateNew(t *testing.T) {
	g := NewRateGate(10, 1100*time.Millisecond)
	if g == nil {
		t.Fatal("NewRateGate returned nil")
	}
}

func TestRateGateSpacing(t *testing.T) {
	// 2 permits per 200ms window → 100ms spacing. Three permits must take
	// at least 200ms in total.
	g := NewRateGate(2, 200*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Wait(context.Background()); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 200*time.Millisecond {
		t.Errorf("3 permits granted in %v, want >= 200ms", elapsed)
	}
}

func TestRateGateCancel(t *testing.T) {
	g := NewRateGate(1, time.Hour)

	// Consume the single available permit.
	if err := g.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := g.Wait(ctx); err == nil {
		t.Error("Wait should fail when the context expires before a permit is free")
	}
}
