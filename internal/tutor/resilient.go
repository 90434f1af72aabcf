package tutor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
)

// Resilient wraps a Completer with a circuit breaker and retry from fortify.
type Resilient struct {
	next           Completer
	circuitBreaker circuitbreaker.CircuitBreaker[string]
	retrier        retry.Retry[string]
}

// ResilientConfig holds configuration for the wrapper
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	OpenTimeout      time.Duration
	Logger           *zap.Logger
}

// DefaultResilientConfig returns the production settings
func DefaultResilientConfig(logger *zap.Logger) ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		InitialDelay:     500 * time.Millisecond,
		FailureThreshold: 3,
		OpenTimeout:      60 * time.Second,
		Logger:           logger,
	}
}

// NewResilient builds the wrapper around next.
func NewResilient(next Completer, cfg ResilientConfig) *Resilient {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = 3
	}
	logger := cfg.Logger

	return &Resilient{
		next: next,
		circuitBreaker: circuitbreaker.New[string](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    10 * time.Second,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("tutor circuit breaker state change",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		retrier: retry.New[string](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      10 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		}),
	}
}

func (r *Resilient) Complete(ctx context.Context, req *Request) (string, error) {
	return r.circuitBreaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return r.retrier.Do(ctx, func(ctx context.Context) (string, error) {
			return r.next.Complete(ctx, req)
		})
	})
}

func isRetryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
