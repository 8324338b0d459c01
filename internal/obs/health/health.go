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

// Package health reports the readiness of the fake endpoint over HTTP and
// the gRPC health protocol
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Status of one check or of the whole endpoint
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// Check returns nil when the checked component can serve
type Check func(ctx context.Context) error

// FunctionCheck adapts a function that needs no context
func FunctionCheck(fn func() error) Check {
	return func(context.Context) error { return fn() }
}

// Result is the outcome of one check
type Result struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// Report is the outcome of every registered check, in registration order
type Report struct {
	Status Status   `json:"status"`
	Checks []Result `json:"checks"`
}

// Result returns the named result, if the check ran
func (r *Report) Result(name string) (Result, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Result{}, false
}

type entry struct {
	name  string
	check Check
	last  *Result
}

// Checker runs named checks, reusing a result for ttl
type Checker struct {
	mu      sync.Mutex
	entries []*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewChecker creates a checker. A zero ttl runs every check on every report.
func NewChecker(ttl time.Duration) *Checker {
	return &Checker{ttl: ttl, now: time.Now}
}

// Register adds a check, replacing any check of the same name
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.name == name {
			e.check, e.last = check, nil
			return
		}
	}
	c.entries = append(c.entries, &entry{name: name, check: check})
}

// Run evaluates every check. The endpoint is unhealthy as soon as one check
// fails, and unknown when nothing is registered.
func (c *Checker) Run(ctx context.Context) *Report {
	c.mu.Lock()
	entries := make([]*entry, len(c.entries))
	copy(entries, c.entries)
	c.mu.Unlock()

	report := &Report{Status: StatusHealthy, Checks: make([]Result, 0, len(entries))}
	if len(entries) == 0 {
		report.Status = StatusUnknown
	}
	for _, e := range entries {
		res := c.run(ctx, e)
		if res.Status != StatusHealthy {
			report.Status = StatusUnhealthy
		}
		report.Checks = append(report.Checks, res)
	}
	return report
}

func (c *Checker) run(ctx context.Context, e *entry) Result {
	c.mu.Lock()
	if e.last != nil && c.now().Sub(e.last.CheckedAt) < c.ttl {
		cached := *e.last
		c.mu.Unlock()
		return cached
	}
	check := e.check
	c.mu.Unlock()

	start := c.now()
	err := check(ctx)
	res := Result{Name: e.name, Status: StatusHealthy, Duration: c.now().Sub(start), CheckedAt: c.now()}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	}

	c.mu.Lock()
	e.last = &res
	c.mu.Unlock()
	return res
}

// Handler serves the report as JSON, with 503 unless healthy
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		report := c.Run(ctx)
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report) //nolint:errcheck // headers already sent
	}
}

// LivenessHandler answers 200 while the process can serve HTTP at all
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// ServingStatus maps a report status onto the gRPC health protocol
func ServingStatus(s Status) grpc_health_v1.HealthCheckResponse_ServingStatus {
	switch s {
	case StatusHealthy:
		return grpc_health_v1.HealthCheckResponse_SERVING
	case StatusUnhealthy:
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	default:
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
}

// Publish sets the status of service on srv from a fresh report every
// interval until ctx ends, then marks every service NOT_SERVING
func (c *Checker) Publish(ctx context.Context, srv *grpchealth.Server, service string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		srv.SetServingStatus(service, ServingStatus(c.Run(ctx).Status))
		select {
		case <-ctx.Done():
			srv.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
