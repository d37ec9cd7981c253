package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config controls exponential backoff behavior for external capability
// calls.
type Config struct {
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay"`
	Multiplier float64       `json:"multiplier"`
	Jitter     bool          `json:"jitter"` // random jitter to avoid thundering herd
}

// Result describes how an attempted operation went.
type Result struct {
	Attempts      int           `json:"attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	LastError     error         `json:"-"`
	Success       bool          `json:"success"`
	RetryReasons  []string      `json:"retry_reasons"`
}

// DefaultConfig returns sensible defaults for short operations.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// ModelCallConfig returns a configuration tuned for LLM requests, which are
// slower and rate-limited more aggressively than ordinary HTTP calls.
func ModelCallConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.5,
		Jitter:     true,
	}
}

// Do executes the operation with exponential backoff. Non-retryable errors
// stop the loop immediately; retryable ones wait out the computed delay
// unless the context is cancelled first.
func Do(ctx context.Context, config Config, operation func() error) Result {
	startTime := time.Now()
	result := Result{RetryReasons: make([]string, 0)}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(startTime)
			if attempt > 0 {
				log.Debug().Int("retries", attempt).Dur("took", result.TotalDuration).Msg("Operation succeeded after retries")
			}
			return result
		}

		result.LastError = err
		result.RetryReasons = append(result.RetryReasons, err.Error())

		if attempt >= config.MaxRetries || !IsRetryable(err) {
			result.TotalDuration = time.Since(startTime)
			log.Debug().
				Err(err).
				Int("attempts", result.Attempts).
				Bool("retryable", IsRetryable(err)).
				Msg("Operation failed, giving up")
			return result
		}

		delay := backoffDelay(config, attempt)
		log.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Int("max", config.MaxRetries+1).
			Dur("delay", delay).
			Msg("Operation failed, retrying")

		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		case <-time.After(delay):
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

// backoffDelay computes baseDelay * multiplier^attempt capped at MaxDelay,
// with up to 10% jitter either way when enabled.
func backoffDelay(config Config, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(config.BaseDelay)
		}
	}

	return time.Duration(delay)
}

// IsRetryable reports whether an error looks transient. Model providers
// surface throttling and upstream hiccups as plain text, so this is a
// substring classification rather than errors.Is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retryable := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"quota",
		"429",
		"500",
		"502",
		"503",
		"504",
		"no such host",
		"network unreachable",
		"broken pipe",
		"context deadline exceeded",
	}

	for _, marker := range retryable {
		if strings.Contains(errStr, marker) {
			return true
		}
	}

	return false
}
