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

// Package mapping holds the rule table translating between the legacy and
// current compute models, and from wire responses to user-facing contexts.
package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Pair identifies a rule by its source and target types
type Pair struct {
	Source reflect.Type
	Target reflect.Type
}

func (p Pair) String() string {
	return fmt.Sprintf("%s -> %s", typeName(p.Source), typeName(p.Target))
}

type rule func(src, dst any) error

// Builder collects rules before the table is frozen
type Builder struct {
	rules map[Pair]rule
	order []Pair
	errs  []error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{rules: make(map[Pair]rule)}
}

// Register adds the rule converting S into T. The rule writes into the
// target it is given and leaves fields it does not own untouched.
func Register[S, T any](b *Builder, fn func(S, *T) error) {
	p := Pair{Source: reflect.TypeFor[S](), Target: reflect.TypeFor[T]()}
	if _, dup := b.rules[p]; dup {
		b.errs = append(b.errs, &ConfigurationError{Source: p.Source, Target: p.Target, Reason: "rule registered twice"})
		return
	}

	b.rules[p] = func(src, dst any) error {
		return fn(src.(S), dst.(*T))
	}
	b.order = append(b.order, p)
}

// Build freezes the collected rules. Registration errors are reported
// together.
func (b *Builder) Build() (*Registry, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	r := &Registry{
		rules: make(map[Pair]rule, len(b.rules)),
		pairs: make([]Pair, len(b.order)),
	}
	for k, v := range b.rules {
		r.rules[k] = v
	}
	copy(r.pairs, b.order)
	return r, nil
}

// Registry is an immutable rule table, safe for concurrent use
type Registry struct {
	rules map[Pair]rule
	pairs []Pair
}

// Pairs returns the registered pairs in registration order
func (r *Registry) Pairs() []Pair {
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Len returns the number of registered rules
func (r *Registry) Len() int {
	return len(r.pairs)
}

// Has reports whether a rule exists for the pair
func (r *Registry) Has(source, target reflect.Type) bool {
	_, ok := r.rules[Pair{Source: source, Target: target}]
	return ok
}

// MapInto applies the rule for (type of src, type of *dst) onto dst. An
// untyped nil src leaves dst untouched, as does a nil pointer of a type with
// a registered rule. A pointer src with no rule of its own is dereferenced
// and looked up again.
func (r *Registry) MapInto(src, dst any) error {
	dv := reflect.ValueOf(dst)
	if !dv.IsValid() || dv.Kind() != reflect.Pointer || dv.IsNil() {
		return &ConfigurationError{Source: reflect.TypeOf(src), Target: reflect.TypeOf(dst), Reason: "target must be a non-nil pointer"}
	}
	target := dv.Type().Elem()

	if src == nil {
		return nil
	}
	sv := reflect.ValueOf(src)
	if sv.Kind() == reflect.Pointer && sv.IsNil() {
		if r.Has(sv.Type(), target) || r.Has(sv.Type().Elem(), target) {
			return nil
		}
		return &ConfigurationError{Source: sv.Type(), Target: target, Reason: "no rule registered"}
	}

	if fn, ok := r.rules[Pair{Source: sv.Type(), Target: target}]; ok {
		return fn(src, dst)
	}
	if sv.Kind() == reflect.Pointer {
		elem := sv.Elem()
		if fn, ok := r.rules[Pair{Source: elem.Type(), Target: target}]; ok {
			return fn(elem.Interface(), dst)
		}
	}
	return &ConfigurationError{Source: sv.Type(), Target: target, Reason: "no rule registered"}
}

// Map converts src into a new T
func Map[T any](r *Registry, src any) (T, error) {
	var out T
	err := r.MapInto(src, &out)
	return out, err
}

// MapSlice converts every element of in, preserving order and count. A nil
// input yields nil.
func MapSlice[S, T any](r *Registry, in []S) ([]T, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]T, len(in))
	for i := range in {
		if err := r.MapInto(in[i], &out[i]); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

var (
	initOnce sync.Once
	shared   *Registry
	initErr  error
)

// Initialize builds the process-wide registry on first call. Concurrent
// callers block until it is ready and all observe the same result.
func Initialize() (*Registry, error) {
	initOnce.Do(func() {
		shared, initErr = NewRegistry()
	})
	return shared, initErr
}

// NewRegistry builds a registry holding every rule
func NewRegistry() (*Registry, error) {
	b := NewBuilder()
	registerLegacyToCurrent(b)
	registerCurrentToLegacy(b)
	registerOperations(b)
	registerContexts(b)
	return b.Build()
}
