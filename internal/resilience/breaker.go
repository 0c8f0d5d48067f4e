package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewBreaker builds the circuit breaker used around outbound analysis and
// generation calls. There is no retry layer on purpose: a failed call
// degrades the response, and the breaker only keeps a flapping upstream from
// absorbing every request's timeout budget.
func NewBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
