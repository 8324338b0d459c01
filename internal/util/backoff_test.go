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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	polling := DefaultBackoffConfig()
	polling.Jitter = false

	tests := []struct {
		name    string
		config  BackoffConfig
		attempt int
		want    time.Duration
	}{
		{name: "first poll", config: polling, attempt: 0, want: 500 * time.Millisecond},
		{name: "grows by the multiplier", config: polling, attempt: 1, want: 750 * time.Millisecond},
		{name: "keeps growing", config: polling, attempt: 3, want: 1687500 * time.Microsecond},
		{name: "last poll under the cap", config: polling, attempt: 7, want: 8542968750 * time.Nanosecond},
		{name: "capped at max delay", config: polling, attempt: 8, want: 10 * time.Second},
		{name: "stays capped", config: polling, attempt: 40, want: 10 * time.Second},
		{name: "negative attempt", config: polling, attempt: -3, want: 500 * time.Millisecond},
		{
			name:    "multiplier below one holds the delay",
			config:  BackoffConfig{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 0.5},
			attempt: 5,
			want:    time.Second,
		},
		{
			name:    "no cap",
			config:  BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2},
			attempt: 10,
			want:    102400 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateBackoff(tt.config, tt.attempt))
		})
	}
}

func TestCalculateBackoffJitter(t *testing.T) {
	polling := DefaultBackoffConfig()

	for attempt := 0; attempt < 12; attempt++ {
		base := polling
		base.Jitter = false
		floor := CalculateBackoff(base, attempt)

		got := CalculateBackoff(polling, attempt)
		assert.GreaterOrEqual(t, got, floor)
		assert.LessOrEqual(t, got, floor+floor/10)
	}
}
