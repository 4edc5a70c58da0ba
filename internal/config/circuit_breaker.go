package config

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Circuit breaker names.
const (
	BreakerMembershipAPI = "Membership-API"
	BreakerRedisCache    = "Redis-Cache"
	BreakerPostgres      = "PostgreSQL"
	BreakerRelayPostgres = "Relay-PostgreSQL"
	BreakerRabbitMQ      = "RabbitMQ-Publisher"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return NewCircuitBreakerWithCheck(name, nil)
}

// NewCircuitBreakerWithCheck is NewCircuitBreaker with a custom success
// predicate, so callers can keep expected errors from tripping the breaker.
func NewCircuitBreakerWithCheck(name string, isSuccessful func(error) bool) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	// Timeouts line up with the 5s health check budget.
	switch name {
	case BreakerRedisCache:
		timeout = time.Second * 5
	case BreakerPostgres, BreakerRelayPostgres, BreakerMembershipAPI:
		timeout = time.Second * 10
	default:
		timeout = time.Second * 30
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit after 3 consecutive failures
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Error("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
