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

package mapping

import (
	"fmt"
	"reflect"
)

// ConfigurationError reports a problem with the rule table itself: a pair
// registered twice, or a mapping requested for a pair with no rule.
type ConfigurationError struct {
	// Source is the source type of the pair
	Source reflect.Type
	// Target is the target type of the pair
	Target reflect.Type
	// Reason describes what is wrong with the pair
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mapping %s -> %s: %s", typeName(e.Source), typeName(e.Target), e.Reason)
}

// MappingError reports a source value that cannot be converted
type MappingError struct {
	// Field is the target field that failed
	Field string
	// SourceType names the type the value came from
	SourceType string
	// Value is the offending source value
	Value string
	// Cause contains the underlying error
	Cause error
}

// Error implements the error interface
func (e *MappingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot map %s.%s from %q: %v", e.SourceType, e.Field, e.Value, e.Cause)
	}
	return fmt.Sprintf("cannot map %s.%s from %q", e.SourceType, e.Field, e.Value)
}

// Unwrap returns the underlying error
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// NewMappingError creates a mapping error for field of sourceType
func NewMappingError(sourceType, field, value string, cause error) *MappingError {
	return &MappingError{
		Field:      field,
		SourceType: sourceType,
		Value:      value,
		Cause:      cause,
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
