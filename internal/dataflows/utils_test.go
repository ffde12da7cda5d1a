package dataflows

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicyLinearDelay(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond}

	for attempt := 1; attempt <= 4; attempt++ {
		want := time.Duration(attempt) * 100 * time.Millisecond
		if got := policy.Delay(attempt); got != want {
			t.Fatalf("attempt %d: expected delay %s, got %s", attempt, want, got)
		}
	}
	if got := policy.Delay(0); got != 0 {
		t.Fatalf("attempt 0 should not sleep, got %s", got)
	}
}

func TestWithRetryStopsAfterMaxAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := WithRetry(policy, func() error {
		calls++
		return fmt.Errorf("boom %d", calls)
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetrySucceedsMidway(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := WithRetry(policy, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryDoesNotRetryUnavailableData(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := WithRetry(policy, func() error {
		calls++
		return fmt.Errorf("no rows: %w", ErrDataUnavailable)
	})
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("data-unavailable must not retry, got %d calls", calls)
	}
}

func TestCacheManagerRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	type payload struct {
		Value string `json:"value"`
	}
	in := payload{Value: "cached"}
	if err := cm.Set("yahoo", "quote", "AAPL", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	if !cm.Get("yahoo", "quote", "AAPL", &out) {
		t.Fatal("expected cache hit")
	}
	if out.Value != "cached" {
		t.Fatalf("expected cached value, got %q", out.Value)
	}

	var miss payload
	if cm.Get("yahoo", "quote", "MSFT", &miss) {
		t.Fatal("expected cache miss for different params")
	}
}

func TestCacheManagerDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)
	if err := cm.Set("a", "b", "c", map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Set with cache disabled: %v", err)
	}
	var out map[string]string
	if cm.Get("a", "b", "c", &out) {
		t.Fatal("disabled cache must miss")
	}
}
