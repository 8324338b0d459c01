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
	"os"
	"strconv"
	"time"
)

// EnvValue is a type an environment variable can be parsed into
type EnvValue interface {
	string | bool | int | float64 | time.Duration
}

// Env returns the value of the environment variable key, or def when it is
// unset or does not parse as T
func Env[T EnvValue](key string, def T) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}

	var (
		parsed any
		err    error
	)
	switch any(def).(type) {
	case time.Duration:
		parsed, err = time.ParseDuration(raw)
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case int:
		parsed, err = strconv.Atoi(raw)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case string:
		parsed = raw
	default:
		return def
	}
	if err != nil {
		return def
	}
	return parsed.(T)
}
