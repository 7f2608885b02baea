package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	minRequests      = 3
	tripRatio        = 0.6
	halfOpenRequests = 3
	countWindow      = time.Minute
	defaultCooldown  = 30 * time.Second
)

// Breaker guards calls to one downstream dependency
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// Option tweaks a Breaker before it is built
type Option func(*gobreaker.Settings)

// WithCooldown sets how long the breaker stays open before probing again
func WithCooldown(d time.Duration) Option {
	return func(s *gobreaker.Settings) { s.Timeout = d }
}

// WithSuccess lets errors the caller considers expected count as successes
func WithSuccess(fn func(error) bool) Option {
	return func(s *gobreaker.Settings) { s.IsSuccessful = fn }
}

// New builds a breaker that opens once at least three calls were made in the
// window and 60% of them failed.
func New(name string, opts ...Option) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenRequests,
		Interval:    countWindow,
		Timeout:     defaultCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= minRequests && float64(c.TotalFailures)/float64(c.Requests) >= tripRatio
		},
		OnStateChange: onStateChange,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

func onStateChange(name string, from, to gobreaker.State) {
	logger.Info("Circuit breaker state changed",
		zap.String("breaker", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
}

// Name returns the breaker name
func (b *Breaker) Name() string { return b.cb.Name() }

// Open reports whether calls are currently refused
func (b *Breaker) Open() bool { return b.cb.State() == gobreaker.StateOpen }

// Call runs fn through the breaker
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	out, err := b.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		if IsRejected(err) {
			return zero, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return zero, err
	}

	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", b.Name(), out)
	}
	return v, nil
}

// IsRejected reports whether err came from the breaker refusing the call
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
