// Package resilience wraps outbound calls with a per-attempt timeout, bounded
// retry, a per-dependency circuit breaker and an explicit fallback mapping.
// Gateways build one Caller per operation class (reads vs writes) and execute
// through Do.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/bancore/transaction-service/internal/apperr"
)

// Caller executes remote operations against a single named dependency. The
// breaker is shared with every other Caller holding the same name; timeout
// and retry budget are per-Caller.
type Caller struct {
	name          string
	breaker       *gobreaker.CircuitBreaker
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	log           zerolog.Logger
}

// NewCaller binds a Caller to the dependency's breaker in reg. timeout caps
// each individual attempt; maxRetries is the number of re-attempts after the
// first failure (transient failures only).
func NewCaller(reg *Registry, name string, timeout time.Duration, maxRetries uint64, log zerolog.Logger) *Caller {
	return &Caller{
		name:          name,
		breaker:       reg.Breaker(name),
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryInterval: 100 * time.Millisecond,
		log:           log.With().Str("dependency", name).Logger(),
	}
}

// Name returns the dependency name the Caller is keyed by.
func (c *Caller) Name() string { return c.name }

// Do runs op through c's breaker with retries. Each attempt gets its own
// timeout context; an expired attempt counts as a failure for both retry and
// breaker purposes. Not-found outcomes are never retried and propagate as-is.
// When retries are exhausted or the breaker is open, every remaining failure
// maps to an Unavailable error naming the dependency.
func Do[T any](ctx context.Context, c *Caller, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempt := func() (T, error) {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			return op(attemptCtx)
		})
		if err != nil {
			if apperr.IsNotFound(err) {
				return zero, backoff.Permanent(err)
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				c.log.Warn().Msg("circuit open, short-circuiting call")
				return zero, backoff.Permanent(err)
			}
			c.log.Debug().Err(err).Msg("attempt failed")
			return zero, err
		}
		v, ok := result.(T)
		if !ok {
			return zero, backoff.Permanent(apperr.Wrap("unexpected response shape", nil))
		}
		return v, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, c.maxRetries), ctx)

	v, err := backoff.RetryWithData(attempt, policy)
	if err == nil {
		return v, nil
	}
	if apperr.IsNotFound(err) {
		return zero, err
	}
	c.log.Error().Err(err).Msg("call failed after retries")
	return zero, apperr.Unavailable(c.name, err)
}
