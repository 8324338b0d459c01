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

package util

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig configures the delay between polls of a long-running operation
type BackoffConfig struct {
	// InitialDelay is the delay before the second poll
	InitialDelay time.Duration
	// MaxDelay caps the delay between polls
	MaxDelay time.Duration
	// Multiplier grows the delay after every poll
	Multiplier float64
	// Jitter adds up to 10% of randomness to each delay
	Jitter bool
}

// DefaultBackoffConfig returns the operation polling defaults
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.5,
		Jitter:       true,
	}
}

// CalculateBackoff returns the delay to wait after the given poll attempt
func CalculateBackoff(config BackoffConfig, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt))
	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		delay += delay * 0.1 * rand.Float64()
	}

	return time.Duration(delay)
}
