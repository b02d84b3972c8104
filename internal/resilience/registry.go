package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/bancore/transaction-service/internal/apperr"
)

// Registry owns one circuit breaker per downstream dependency, keyed by name.
// Its lifecycle is tied to process start; gateways receive it at construction
// and share breakers by asking for the same name.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// Breaker returns the breaker for name, creating it on first use. The breaker
// opens once at least 6 calls in the rolling window have failed at a 60%+
// rate, and probes again after 10 seconds. Domain not-found outcomes are not
// counted as failures: an absent account says nothing about service health.
func (r *Registry) Breaker(name string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 6 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperr.IsNotFound(err)
		},
	})
	r.breakers[name] = cb
	return cb
}

// BreakerStatus is a read-only snapshot of one breaker, exposed through the
// diagnostic endpoint only. It is not part of the orchestration contract.
type BreakerStatus struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalSuccesses      uint32 `json:"totalSuccesses"`
	TotalFailures       uint32 `json:"totalFailures"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
}

// Status snapshots every registered breaker.
func (r *Registry) Status() []BreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]BreakerStatus, 0, len(r.breakers))
	for _, cb := range r.breakers {
		statuses = append(statuses, snapshot(cb))
	}
	return statuses
}

// StatusOf snapshots a single breaker by dependency name.
func (r *Registry) StatusOf(name string) (BreakerStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cb, ok := r.breakers[name]
	if !ok {
		return BreakerStatus{}, false
	}
	return snapshot(cb), true
}

func snapshot(cb *gobreaker.CircuitBreaker) BreakerStatus {
	counts := cb.Counts()
	return BreakerStatus{
		Name:                cb.Name(),
		State:               cb.State().String(),
		Requests:            counts.Requests,
		TotalSuccesses:      counts.TotalSuccesses,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}
