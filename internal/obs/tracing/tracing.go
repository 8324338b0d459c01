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

package tracing

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	otrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/projectbeskar/smctl/internal/util"
)

const (
	// Service names
	ServiceCLI  = "smctl"
	ServiceFake = "smctl-fake"

	tracerName = "smctl"
)

// Config holds tracing configuration
type Config struct {
	Enabled           bool    `yaml:"enabled"`
	Endpoint          string  `yaml:"endpoint"`
	ServiceName       string  `yaml:"serviceName"`
	ServiceVersion    string  `yaml:"serviceVersion"`
	SamplingRatio     float64 `yaml:"samplingRatio"`
	InsecureTransport bool    `yaml:"insecureTransport"`
}

// DefaultConfig returns default tracing configuration
func DefaultConfig(serviceName, version string) *Config {
	return &Config{
		Enabled:           util.Env("SMCTL_TRACING_ENABLED", false),
		Endpoint:          util.Env("SMCTL_TRACING_ENDPOINT", ""),
		ServiceName:       serviceName,
		ServiceVersion:    version,
		SamplingRatio:     util.Env("SMCTL_TRACING_SAMPLING_RATIO", 1.0),
		InsecureTransport: util.Env("SMCTL_TRACING_INSECURE", true),
	}
}

// Setup initializes OpenTelemetry tracing. The returned function flushes and
// stops the provider.
func Setup(ctx context.Context, config *Config) (func(), error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !config.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func() {}, nil
	}

	if config.Endpoint == "" {
		return nil, fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Endpoint),
	}
	if config.InsecureTransport {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("service.namespace", "smctl"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(config.SamplingRatio))),
	)
	otel.SetTracerProvider(tp)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error shutting down tracer provider: %v\n", err)
		}
	}, nil
}

// StartSpan starts a new span with the given name and options
func StartSpan(ctx context.Context, name string, opts ...otrace.SpanStartOption) (context.Context, otrace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// SetAttributes sets attributes on the current span
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	otrace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// RecordError records err on the current span and marks it failed
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := otrace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Attribute keys
var (
	AttrSubscription = attribute.Key("sm.subscription")
	AttrOperation    = attribute.Key("sm.operation")
	AttrOperationID  = attribute.Key("sm.operation_id")
	AttrRequestID    = attribute.Key("sm.request_id")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
)

// Span names
const (
	SpanProjection    = "projection"
	SpanOperationPoll = "sm.operation.poll"
)

// StartClientSpan starts a span for one Service Management call
func StartClientSpan(ctx context.Context, operation, method, path string) (context.Context, otrace.Span) {
	return StartSpan(ctx, fmt.Sprintf("sm.%s", operation),
		otrace.WithSpanKind(otrace.SpanKindClient),
		otrace.WithAttributes(
			AttrOperation.String(operation),
			AttrHTTPMethod.String(method),
			AttrHTTPRoute.String(path),
		),
	)
}

// InjectHTTP writes the trace context of ctx into request headers
func InjectHTTP(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// ExtractHTTP reads a trace context from request headers
func ExtractHTTP(ctx context.Context, header http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(header))
}

// Middleware starts a server span for every request, continuing the caller's trace
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ExtractHTTP(r.Context(), r.Header)
		ctx, span := StartSpan(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			otrace.WithSpanKind(otrace.SpanKindServer),
			otrace.WithAttributes(
				AttrHTTPMethod.String(r.Method),
				AttrHTTPRoute.String(r.URL.Path),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		span.SetAttributes(AttrHTTPStatusCode.Int(rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
