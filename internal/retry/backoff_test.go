package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})

	if !result.Success {
		t.Fatal("expected success")
	}
	if calls != 1 || result.Attempts != 1 {
		t.Fatalf("calls=%d attempts=%d, want 1/1", calls, result.Attempts)
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})

	if !result.Success {
		t.Fatalf("expected eventual success, last error: %v", result.LastError)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(result.RetryReasons) != 2 {
		t.Fatalf("expected 2 retry reasons, got %v", result.RetryReasons)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid api key")
	result := Do(context.Background(), fastConfig(), func() error {
		calls++
		return permanent
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d calls", calls)
	}
	if !errors.Is(result.LastError, permanent) {
		t.Fatalf("last error = %v", result.LastError)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(), func() error {
		calls++
		return fmt.Errorf("503 service unavailable (call %d)", calls)
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if calls != 4 {
		t.Fatalf("expected MaxRetries+1 = 4 calls, got %d", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := fastConfig()
	config.BaseDelay = time.Hour // would hang without cancellation
	config.MaxDelay = time.Hour

	done := make(chan Result, 1)
	go func() {
		done <- Do(ctx, config, func() error {
			return errors.New("timeout")
		})
	}()
	cancel()

	select {
	case result := <-done:
		if result.Success {
			t.Fatal("expected failure after cancellation")
		}
		if !errors.Is(result.LastError, context.Canceled) {
			t.Fatalf("last error = %v, want context.Canceled", result.LastError)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	config := Config{
		BaseDelay:  time.Second,
		MaxDelay:   4 * time.Second,
		Multiplier: 10.0,
		Jitter:     false,
	}

	if got := backoffDelay(config, 5); got != 4*time.Second {
		t.Fatalf("delay = %v, want capped at %v", got, config.MaxDelay)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Rate Limit exceeded"), true},
		{errors.New("googleapi: Error 429: quota exceeded"), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("invalid request payload"), false},
		{errors.New("model not found"), false},
	}

	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
