package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bancore/transaction-service/internal/apperr"
	"github.com/bancore/transaction-service/internal/logger"
)

func newTestCaller(t *testing.T, name string, timeout time.Duration, maxRetries uint64) *Caller {
	t.Helper()
	c := NewCaller(NewRegistry(), name, timeout, maxRetries, logger.NewWithWriter(discard{}))
	c.retryInterval = time.Millisecond
	return c
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDoReturnsResult(t *testing.T) {
	c := newTestCaller(t, "account", time.Second, 2)

	got, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	c := newTestCaller(t, "account", time.Second, 2)

	calls := 0
	got, err := Do(context.Background(), c, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoDoesNotRetryNotFound(t *testing.T) {
	c := newTestCaller(t, "account", time.Second, 2)

	calls := 0
	_, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		calls++
		return "", apperr.NotFound("account", "A1")
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestDoMapsExhaustedRetriesToUnavailable(t *testing.T) {
	c := newTestCaller(t, "credit", time.Second, 1)

	calls := 0
	_, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	})
	if !apperr.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDoHonoursAttemptTimeout(t *testing.T) {
	c := newTestCaller(t, "account", 10*time.Millisecond, 0)

	_, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	})
	if !apperr.IsUnavailable(err) {
		t.Fatalf("expected unavailable after timeout, got %v", err)
	}
}

func TestDoShortCircuitsWhenBreakerOpen(t *testing.T) {
	c := newTestCaller(t, "commission", time.Second, 0)

	// Trip the breaker: 6 straight failures exceed the 60% threshold.
	for i := 0; i < 6; i++ {
		_, _ = Do(context.Background(), c, func(ctx context.Context) (string, error) {
			return "", errors.New("down")
		})
	}

	calls := 0
	_, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if !apperr.IsUnavailable(err) {
		t.Fatalf("expected unavailable while open, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected the operation to be short-circuited, got %d calls", calls)
	}
}

func TestDoNotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestCaller(t, "account", time.Second, 0)

	for i := 0; i < 10; i++ {
		_, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
			return "", apperr.NotFound("account", fmt.Sprintf("A%d", i))
		})
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected not-found on attempt %d, got %v", i, err)
		}
	}

	got, err := Do(context.Background(), c, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("breaker should stay closed after not-found outcomes, got %q, %v", got, err)
	}
}
