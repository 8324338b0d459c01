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

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build information
	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smctl_build_info",
			Help: "Build information for smctl components",
		},
		[]string{"version", "git_sha", "go_version", "component"},
	)

	// Client metrics
	clientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_client_requests_total",
			Help: "Total number of Service Management requests by operation and HTTP status code",
		},
		[]string{"operation", "code"},
	)

	clientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smctl_client_request_duration_seconds",
			Help:    "Latency of Service Management requests by operation",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"operation"},
	)

	clientRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_client_retries_total",
			Help: "Total number of retried Service Management requests by operation",
		},
		[]string{"operation"},
	)

	// Projection metrics
	projectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_projections_total",
			Help: "Total number of context projections by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	// Fake endpoint metrics
	fakeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_fake_requests_total",
			Help: "Total number of requests served by the fake endpoint by route and code",
		},
		[]string{"route", "code"},
	)

	fakeInjectedFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smctl_fake_injected_failures_total",
			Help: "Total number of failures injected by the fake endpoint",
		},
	)

	// Error metrics
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_errors_total",
			Help: "Total number of errors by reason and component",
		},
		[]string{"reason", "component"},
	)

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smctl_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"endpoint"},
	)

	circuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smctl_circuit_breaker_failures_total",
			Help: "Total number of failures counted by the circuit breaker",
		},
		[]string{"endpoint"},
	)
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Components
const (
	ComponentClient = "client"
	ComponentCLI    = "cli"
	ComponentFake   = "fake"
)

// Circuit breaker states
const (
	CircuitBreakerClosed   = 0
	CircuitBreakerHalfOpen = 1
	CircuitBreakerOpen     = 2
)

// SetupMetrics initializes metrics with build information
func SetupMetrics(version, gitSHA, component string) {
	buildInfo.WithLabelValues(version, gitSHA, runtime.Version(), component).Set(1)
}

// RecordRequest records one client request. A code of zero means the request
// never got a response.
func RecordRequest(operation string, code int, duration time.Duration) {
	label := "none"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	clientRequestsTotal.WithLabelValues(operation, label).Inc()
	clientRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRetry records a retried client request
func RecordRetry(operation string) {
	clientRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordProjection records the outcome of projecting a command's result
func RecordProjection(command string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	projectionsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordFakeRequest records a request served by the fake endpoint
func RecordFakeRequest(route string, code int) {
	fakeRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordInjectedFailure records a failure the fake endpoint injected
func RecordInjectedFailure() {
	fakeInjectedFailures.Inc()
}

// RecordError records an error with its reason and component
func RecordError(reason, component string) {
	errorsTotal.WithLabelValues(reason, component).Inc()
}

// CircuitBreakerMetrics provides metrics for one endpoint's circuit breaker
type CircuitBreakerMetrics struct {
	endpoint string
}

// NewCircuitBreakerMetrics creates metrics for circuit breakers
func NewCircuitBreakerMetrics(endpoint string) *CircuitBreakerMetrics {
	return &CircuitBreakerMetrics{endpoint: endpoint}
}

// SetState sets the circuit breaker state
func (m *CircuitBreakerMetrics) SetState(state int) {
	circuitBreakerState.WithLabelValues(m.endpoint).Set(float64(state))
}

// RecordFailure records a circuit breaker failure
func (m *CircuitBreakerMetrics) RecordFailure() {
	circuitBreakerFailures.WithLabelValues(m.endpoint).Inc()
}

// RequestTimer measures one Service Management call
type RequestTimer struct {
	operation string
	start     time.Time
}

// NewRequestTimer starts timing operation
func NewRequestTimer(operation string) *RequestTimer {
	return &RequestTimer{operation: operation, start: time.Now()}
}

// Finish records the call with its HTTP status code, 0 when no response arrived
func (rt *RequestTimer) Finish(code int) {
	RecordRequest(rt.operation, code, time.Since(rt.start))
}

// GetRegistry returns the registry every smctl metric is registered with
func GetRegistry() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}
