package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/contactbook/contactbook-api/pkg/logger"
	"go.uber.org/zap"
)

// Config controls how many times and how fast an operation is retried
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool

	// Retryable decides whether a failure is worth another attempt.
	// nil retries everything.
	Retryable func(error) bool
}

// DefaultConfig is a short exponential backoff for local dependencies
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
		Retryable:    IsRetryable,
	}
}

// StorageConfig is tuned for object storage round trips
func StorageConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = 500 * time.Millisecond
	cfg.MaxDelay = 10 * time.Second
	return cfg
}

// Do runs fn until it succeeds, fails permanently or runs out of attempts
func Do(ctx context.Context, cfg Config, op string, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for operations that produce a value
func DoWithResult[T any](ctx context.Context, cfg Config, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation recovered", zap.String("operation", op), zap.Int("attempts", attempt+1))
			}
			return result, nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff(cfg, attempt)
		logger.Warn("Retrying operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	logger.Error("Operation failed after retries",
		zap.String("operation", op),
		zap.Int("attempts", cfg.MaxRetries+1),
		zap.Error(lastErr))
	return zero, lastErr
}

// backoff returns the wait before the attempt following the given one
func backoff(cfg Config, attempt int) time.Duration {
	wait := float64(cfg.InitialDelay)
	for range attempt {
		wait *= cfg.Multiplier
		if wait >= float64(cfg.MaxDelay) {
			wait = float64(cfg.MaxDelay)
			break
		}
	}

	if cfg.Jitter {
		// spread by up to a quarter either way
		wait += wait * 0.25 * (2*rand.Float64() - 1)
	}
	if ceiling := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && wait > ceiling {
		wait = ceiling
	}
	return time.Duration(wait)
}

// IsRetryable treats every error as transient except cancellation
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
