package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testBase = 10 * time.Millisecond

func TestRetryWithBackoff_SuccessFirstTry(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, testBase, func(attempt int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, testBase, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("transient error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls (2 failures + 1 success), got %d", calls)
	}
}

func TestRetryWithBackoff_AllAttemptsExhausted(t *testing.T) {
	persistent := errors.New("persistent error")
	calls := 0
	err := RetryWithBackoff(context.Background(), 2, testBase, func(attempt int) error {
		calls++
		return persistent
	})
	if !errors.Is(err, persistent) {
		t.Fatalf("Expected wrapped persistent error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls (maxRetries+1), got %d", calls)
	}
}

func TestRetryWithBackoff_PermanentStops(t *testing.T) {
	notFound := errors.New("404 not found")
	calls := 0
	err := RetryWithBackoff(context.Background(), 5, testBase, func(attempt int) error {
		calls++
		return Permanent(notFound)
	})
	if !errors.Is(err, notFound) {
		t.Fatalf("Expected %v, got %v", notFound, err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for a permanent error, got %d", calls)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, 3, testBase, func(attempt int) error {
		calls++
		return errors.New("should not retry after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected only the first attempt to run, got %d", calls)
	}
}

func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 0, testBase, func(attempt int) error {
		calls++
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("Expected error with 0 retries")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call with 0 retries, got %d", calls)
	}
}

func TestRetryWithBackoff_BackoffIncreases(t *testing.T) {
	start := time.Now()
	_ = RetryWithBackoff(context.Background(), 2, 50*time.Millisecond, func(attempt int) error {
		return errors.New("fail")
	})
	elapsed := time.Since(start)
	// 50ms + 100ms
	if elapsed < 140*time.Millisecond {
		t.Errorf("Expected at least ~150ms of backoff, got %v", elapsed)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
