/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/projectbeskar/smctl/internal/obs/metrics"
)

// ErrCircuitOpen is returned without calling the endpoint while its circuit is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	// StateClosed means calls flow normally
	StateClosed State = iota
	// StateHalfOpen means a limited number of trial calls are let through
	StateHalfOpen
	// StateOpen means calls fail fast
	StateOpen
)

// String returns string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds circuit breaker configuration
type Config struct {
	FailureThreshold int           `yaml:"failureThreshold"` // Consecutive failures that open the circuit
	ResetTimeout     time.Duration `yaml:"resetTimeout"`     // Time before an open circuit lets a trial call through
	HalfOpenMaxCalls int           `yaml:"halfOpenMaxCalls"` // Trial calls allowed while half-open
}

// DefaultConfig returns default circuit breaker configuration
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker stops calling a Service Management endpoint that keeps
// answering with server side errors. Only retryable errors count; a 404 says
// nothing about the endpoint's health.
type CircuitBreaker struct {
	mu       sync.Mutex
	config   *Config
	endpoint string
	metrics  *metrics.CircuitBreakerMetrics
	now      func() time.Time

	state    State
	failures int
	openedAt time.Time
	trials   int
}

// NewCircuitBreaker creates a closed circuit breaker for endpoint
func NewCircuitBreaker(endpoint string, config *Config) *CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}
	cb := &CircuitBreaker{
		config:   config,
		endpoint: endpoint,
		metrics:  metrics.NewCircuitBreakerMetrics(endpoint),
		now:      time.Now,
	}
	cb.setState(StateClosed)
	return cb
}

// Call runs fn unless the circuit is open, in which case ErrCircuitOpen is
// returned without contacting the endpoint
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if !cb.admit() {
		return fmt.Errorf("%s: %w", cb.endpoint, ErrCircuitOpen)
	}
	err := fn(ctx)
	cb.observe(IsRetryable(err))
	return err
}

// admit reports whether a call may go out, moving an open circuit to
// half-open once ResetTimeout has passed since it opened
func (cb *CircuitBreaker) admit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) <= cb.config.ResetTimeout {
			return false
		}
		cb.setState(StateHalfOpen)
	}
	if cb.state == StateHalfOpen {
		if cb.trials >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.trials++
	}
	return true
}

func (cb *CircuitBreaker) observe(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !failed {
		if cb.state == StateClosed || cb.trials >= cb.config.HalfOpenMaxCalls {
			cb.setState(StateClosed)
		}
		return
	}

	cb.failures++
	cb.metrics.RecordFailure()
	if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.openedAt = cb.now()
		cb.setState(StateOpen)
	}
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(s State) {
	cb.state = s
	cb.trials = 0
	switch s {
	case StateClosed:
		cb.failures = 0
		cb.metrics.SetState(metrics.CircuitBreakerClosed)
	case StateHalfOpen:
		cb.metrics.SetState(metrics.CircuitBreakerHalfOpen)
	case StateOpen:
		cb.metrics.SetState(metrics.CircuitBreakerOpen)
	}
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetFailures returns the failures counted since the circuit last closed
func (cb *CircuitBreaker) GetFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
