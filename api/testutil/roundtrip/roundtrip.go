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

// Package roundtrip checks that values survive a trip through the mapping
// registry into another model and back.
package roundtrip

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Mapper converts src into the value dst points at
type Mapper interface {
	MapInto(src, dst any) error
}

// RoundTripTest maps original into B and back into A, then diffs the result
// against original
func RoundTripTest[A, B any](t *testing.T, m Mapper, original A) {
	t.Helper()

	var intermediate B
	if err := m.MapInto(original, &intermediate); err != nil {
		t.Fatalf("Failed to map %T to %T: %v", original, intermediate, err)
	}

	var final A
	if err := m.MapInto(intermediate, &final); err != nil {
		t.Fatalf("Failed to map %T back to %T: %v", intermediate, final, err)
	}

	if diff := cmp.Diff(original, final, Options()...); diff != "" {
		t.Errorf("Round-trip mapping mismatch (-original +final):\n%s", diff)
	}
}

// ExpectMappingError maps src into a fresh T and fails the test unless the
// mapping errors with a message containing substr
func ExpectMappingError[T any](t *testing.T, m Mapper, src any, substr string) {
	t.Helper()

	var dst T
	err := m.MapInto(src, &dst)
	if err == nil {
		t.Fatalf("Expected mapping %T to %T to fail, but it succeeded", src, dst)
	}
	if substr != "" && !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error to contain %q, but got: %v", substr, err)
	}
}

// Options returns the comparison options used for round-trip diffs
func Options() []cmp.Option {
	return []cmp.Option{
		// nil and empty collections are the same document
		cmpopts.EquateEmpty(),

		cmp.Comparer(func(x, y netip.Addr) bool {
			return x == y
		}),
	}
}
