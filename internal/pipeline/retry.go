package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-wood-dashboard/internal/model"
)

// DefaultRetryConfigs holds the retry behavior per fetch kind.
var DefaultRetryConfigs = map[string]model.RetryConfig{
	"records": {
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	},
	"boundaries": {
		MaxAttempts:       2,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	},
}

// errPermanent marks failures that retrying cannot fix.
type errPermanent struct{ err error }

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

func permanent(err error) error { return errPermanent{err: err} }

var nonRetryable = []string{"no such file", "permission denied", "invalid url", "unsupported protocol"}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var p errPermanent
	if errors.As(err, &p) || errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range nonRetryable {
		if strings.Contains(msg, s) {
			return false
		}
	}
	return true
}

// backoffDelay returns the wait before attempt+1, with exponential growth capped at
// MaxDelay and up to 10% jitter.
func backoffDelay(cfg model.RetryConfig, attempt int) time.Duration {
	mult := cfg.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(mult, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		delay += time.Duration(float64(delay) * 0.1 * (rand.Float64() - 0.5))
	}
	return delay
}

// withRetry runs op until it succeeds, fails permanently, the attempts run out or ctx is done.
func withRetry(ctx context.Context, cfg model.RetryConfig, logger *zap.Logger, name string, op func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !isRetryableError(err) || attempt == attempts {
			break
		}

		delay := backoffDelay(cfg, attempt)
		logger.Warn("fetch failed, retrying",
			zap.String("source", name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}
