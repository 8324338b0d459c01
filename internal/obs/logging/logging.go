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

package logging

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/projectbeskar/smctl/internal/util"
)

// ContextKey represents the type for context keys
type ContextKey string

const (
	// CommandKey is the context key for the command path being run
	CommandKey ContextKey = "command"
	// SubscriptionKey is the context key for the subscription id
	SubscriptionKey ContextKey = "subscription"
	// ServiceKey is the context key for the hosted service name
	ServiceKey ContextKey = "service"
	// RequestIDKey is the context key for the x-ms-request-id of a call
	RequestIDKey ContextKey = "requestID"
	// OperationIDKey is the context key for the polled operation id
	OperationIDKey ContextKey = "operationID"
)

// Config holds logging configuration
type Config struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"` // json or console
	Sampling     bool   `yaml:"sampling"`
	Development  bool   `yaml:"development"`
	SamplingRate int    `yaml:"samplingRate"`
}

// DefaultConfig returns default logging configuration. A CLI is quiet by
// default, so only warnings and errors are written.
func DefaultConfig() *Config {
	return &Config{
		Level:        util.Env("SMCTL_LOG_LEVEL", "warn"),
		Format:       util.Env("SMCTL_LOG_FORMAT", "console"),
		Sampling:     util.Env("SMCTL_LOG_SAMPLING", false),
		Development:  util.Env("SMCTL_LOG_DEVELOPMENT", false),
		SamplingRate: util.Env("SMCTL_LOG_SAMPLING_RATE", 100),
	}
}

// Setup builds a zap-backed logr.Logger writing to stderr
func Setup(config *Config) (logr.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zapConfig.Encoding = "json"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	level, err := ParseLevel(config.Level)
	if err != nil {
		return logr.Discard(), err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapConfig.Sampling = nil
	if config.Sampling {
		zapConfig.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: config.SamplingRate,
		}
	}
	zapConfig.DisableStacktrace = !config.Development

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build logger: %w", err)
	}

	return zapr.NewLogger(zapLogger), nil
}

// ParseLevel converts a level name into a zap level
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// IntoContext stores logger in ctx
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// FromContext returns the logger stored in ctx with correlation fields added.
// Without a stored logger it discards.
func FromContext(ctx context.Context) logr.Logger {
	return enrichLogger(ctx, logr.FromContextOrDiscard(ctx))
}

// WithCommand adds the command path to context
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// WithSubscription adds the subscription id to context
func WithSubscription(ctx context.Context, subscriptionID string) context.Context {
	return context.WithValue(ctx, SubscriptionKey, subscriptionID)
}

// WithService adds the hosted service name to context
func WithService(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, ServiceKey, service)
}

// WithRequestID adds a request id to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithOperationID adds an operation id to context
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, OperationIDKey, operationID)
}

// enrichLogger adds correlation fields from context to logger
func enrichLogger(ctx context.Context, logger logr.Logger) logr.Logger {
	fields := make([]interface{}, 0, 10)

	for _, key := range []ContextKey{CommandKey, SubscriptionKey, ServiceKey, RequestIDKey, OperationIDKey} {
		if val := ctx.Value(key); val != nil {
			fields = append(fields, string(key), val)
		}
	}

	if len(fields) > 0 {
		return logger.WithValues(fields...)
	}
	return logger
}

// Redactor scrubs credentials and key material from text before it is logged
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor for the secrets found in management traffic
func NewRedactor() *Redactor {
	patterns := []*regexp.Regexp{
		// Bearer tokens in headers
		regexp.MustCompile(`(?i)bearer\s+([A-Za-z0-9\-._~+/]+=*)`),
		// Passwords and keys in XML bodies
		regexp.MustCompile(`(?i)<(?:AdminPassword|UserPassword|Primary|Secondary|Data)>([^<]*)</`),
		// key=value and key: value pairs
		regexp.MustCompile(`(?i)(?:password|token|secret|primary|secondary)\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
		// Passwords in URLs
		regexp.MustCompile(`://[^:/]*:([^@]*?)@`),
	}

	return &Redactor{patterns: patterns}
}

// Redact replaces the secret part of every match with [REDACTED]
func (r *Redactor) Redact(input string) string {
	result := input
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			submatches := pattern.FindStringSubmatch(match)
			if len(submatches) > 1 && submatches[1] != "" {
				return strings.Replace(match, submatches[1], "[REDACTED]", 1)
			}
			return match
		})
	}
	return result
}

// RedactMap redacts values in a map
func (r *Redactor) RedactMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}

	result := make(map[string]string, len(input))
	for k, v := range input {
		if isSensitiveKey(k) {
			result[k] = "[REDACTED]"
		} else {
			result[k] = r.Redact(v)
		}
	}
	return result
}

var globalRedactor = NewRedactor()

// RedactString is a convenience function for global redaction
func RedactString(input string) string {
	return globalRedactor.Redact(input)
}

// RedactMap is a convenience function for global map redaction
func RedactMap(input map[string]string) map[string]string {
	return globalRedactor.RedactMap(input)
}

func isSensitiveKey(key string) bool {
	sensitiveKeys := []string{
		"password", "secret", "token", "authorization", "key", "credential", "certificate",
	}

	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}
