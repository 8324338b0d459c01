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
	"time"

	"github.com/projectbeskar/smctl/internal/util"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"` // Maximum number of attempts, the first included
	BaseDelay   time.Duration `yaml:"baseDelay"`   // Delay before the first retry
	MaxDelay    time.Duration `yaml:"maxDelay"`    // Maximum delay between retries
	Multiplier  float64       `yaml:"multiplier"`  // Backoff multiplier
	Jitter      bool          `yaml:"jitter"`      // Whether to add jitter to delays
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// Retryable is implemented by errors that know whether repeating the call
// can succeed
type Retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether any error in err's chain asks to be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r Retryable
	return errors.As(err, &r) && r.IsRetryable()
}

// Retry calls fn until it succeeds, returns an error that is not retryable,
// or runs out of attempts. The last error is returned.
func Retry(ctx context.Context, config *RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)

	for attempt := 0; ; attempt++ {
		err := fn(ctx, attempt)
		if err == nil || !IsRetryable(err) || attempt+1 >= attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(calculateDelay(config, attempt)):
		}
	}
}

func calculateDelay(config *RetryConfig, attempt int) time.Duration {
	return util.CalculateBackoff(util.BackoffConfig{
		InitialDelay: config.BaseDelay,
		MaxDelay:     config.MaxDelay,
		Multiplier:   config.Multiplier,
		Jitter:       config.Jitter,
	}, attempt)
}

// Policy retries calls that fail with retryable errors, routing each
// attempt through an optional circuit breaker
type Policy struct {
	retry   *RetryConfig
	breaker *CircuitBreaker
	onRetry func(attempt int, err error)
}

// NewPolicy creates a policy. breaker may be nil.
func NewPolicy(retry *RetryConfig, breaker *CircuitBreaker) *Policy {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &Policy{retry: retry, breaker: breaker}
}

// OnRetry registers a hook called before every repeated attempt
func (p *Policy) OnRetry(hook func(attempt int, err error)) *Policy {
	p.onRetry = hook
	return p
}

// Execute runs fn under the policy
func (p *Policy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var previous error
	return Retry(ctx, p.retry, func(ctx context.Context, attempt int) error {
		if attempt > 0 && p.onRetry != nil {
			p.onRetry(attempt, previous)
		}
		if p.breaker != nil {
			previous = p.breaker.Call(ctx, fn)
		} else {
			previous = fn(ctx)
		}
		return previous
	})
}
