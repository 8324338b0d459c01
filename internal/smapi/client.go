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

// Package smapi is a thin client for the XML Service Management API
package smapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/internal/config"
	"github.com/projectbeskar/smctl/internal/obs/logging"
	"github.com/projectbeskar/smctl/internal/obs/metrics"
	"github.com/projectbeskar/smctl/internal/obs/tracing"
	"github.com/projectbeskar/smctl/internal/resilience"
	"github.com/projectbeskar/smctl/internal/util"
	"github.com/projectbeskar/smctl/internal/util/closer"
)

// Header names
const (
	HeaderVersion   = "x-ms-version"
	HeaderRequestID = "x-ms-request-id"
)

const maxResponseBytes = 16 << 20

// Config holds the Service Management client configuration
type Config struct {
	Endpoint           string
	SubscriptionID     string
	Token              string
	APIVersion         string
	InsecureSkipVerify bool
	ReadTimeout        time.Duration
	MutatingTimeout    time.Duration
	OperationTimeout   time.Duration
	Polling            util.BackoffConfig
	Retry              *resilience.RetryConfig
	CircuitBreaker     *resilience.Config
}

// ConfigFrom derives a client configuration from the process configuration
func ConfigFrom(cfg *config.Config) *Config {
	retry := cfg.Retry
	breaker := cfg.CircuitBreaker
	return &Config{
		Endpoint:           cfg.Endpoint.URL,
		SubscriptionID:     cfg.Endpoint.SubscriptionID,
		Token:              cfg.Endpoint.Token,
		APIVersion:         cfg.Endpoint.APIVersion,
		InsecureSkipVerify: cfg.Endpoint.InsecureSkipVerify,
		ReadTimeout:        cfg.RPC.TimeoutRead,
		MutatingTimeout:    cfg.RPC.TimeoutMutating,
		OperationTimeout:   cfg.RPC.TimeoutOperation,
		Polling:            util.DefaultBackoffConfig(),
		Retry:              &retry,
		CircuitBreaker:     &breaker,
	}
}

// Client talks to one subscription of a Service Management endpoint
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    *url.URL
	breaker    *resilience.CircuitBreaker
}

// NewClient creates a new Service Management client
func NewClient(config *Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}

	baseURL, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	if config.APIVersion == "" {
		config.APIVersion = "2014-06-01"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 30 * time.Second
	}
	if config.MutatingTimeout == 0 {
		config.MutatingTimeout = 4 * time.Minute
	}
	if config.OperationTimeout == 0 {
		config.OperationTimeout = 10 * time.Minute
	}
	if config.Polling.InitialDelay == 0 {
		config.Polling = util.DefaultBackoffConfig()
	}
	if config.Retry == nil {
		config.Retry = resilience.DefaultRetryConfig()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: config.InsecureSkipVerify, //nolint:gosec // opt-in for test endpoints
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Transport: transport},
		baseURL:    baseURL,
		breaker:    resilience.NewCircuitBreaker(baseURL.Host, config.CircuitBreaker),
	}, nil
}

// Config returns the client configuration
func (c *Client) Config() *Config {
	return c.config
}

// envelope is implemented by every response through the embedded
// management.OperationResponse
type envelope interface {
	Envelope() *management.OperationResponse
}

// call describes one request
type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
	mutating  bool
	expect    []int
}

// do performs c under the retry policy and decodes a success body into out
func (c *Client) do(ctx context.Context, cl call, out envelope) error {
	ctx, span := tracing.StartClientSpan(ctx, cl.operation, cl.method, cl.path)
	defer span.End()
	span.SetAttributes(tracing.AttrSubscription.String(c.config.SubscriptionID))

	timeout := c.config.ReadTimeout
	if cl.mutating {
		timeout = c.config.MutatingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload []byte
	if cl.body != nil {
		data, err := xml.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = append([]byte(xml.Header), data...)
	}

	log := logging.FromContext(ctx)
	policy := resilience.NewPolicy(c.config.Retry, c.breaker).OnRetry(func(attempt int, err error) {
		metrics.RecordRetry(cl.operation)
		log.V(1).Info("Retrying request", "operation", cl.operation, "attempt", attempt, "error", err.Error())
	})

	err := policy.Execute(ctx, func(ctx context.Context) error {
		return c.attempt(ctx, cl, payload, out)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		metrics.RecordError(cl.operation, metrics.ComponentClient)
	}
	return err
}

func (c *Client) attempt(ctx context.Context, cl call, payload []byte, out envelope) error {
	log := logging.FromContext(ctx)

	reqURL := c.baseURL.JoinPath(c.config.SubscriptionID, cl.path)
	if len(cl.query) > 0 {
		reqURL.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(HeaderVersion, c.config.APIVersion)
	req.Header.Set("Accept", "application/xml")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/xml")
	}
	tracing.InjectHTTP(ctx, req.Header)

	log.V(1).Info("Service Management request", "operation", cl.operation, "method", cl.method, "url", logging.RedactString(reqURL.String()))
	if payload != nil {
		log.V(2).Info("Request body", "body", logging.RedactString(string(payload)))
	}

	timer := metrics.NewRequestTimer(cl.operation)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		timer.Finish(0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Message: cl.operation, Cause: err}
	}
	defer closer.DrainAndClose(resp.Body, log)
	timer.Finish(resp.StatusCode)

	requestID := resp.Header.Get(HeaderRequestID)
	tracing.SetAttributes(ctx,
		tracing.AttrHTTPStatusCode.Int(resp.StatusCode),
		tracing.AttrRequestID.String(requestID),
	)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, RequestID: requestID, Message: "failed to read response", Cause: err}
	}
	log.V(1).Info("Service Management response", "operation", cl.operation, "status", resp.StatusCode, "requestID", requestID)
	log.V(2).Info("Response body", "body", logging.RedactString(string(data)))

	if !slices.Contains(cl.expect, resp.StatusCode) {
		return parseError(resp.StatusCode, requestID, data)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err := xml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", cl.operation, err)
		}
	}
	env := out.Envelope()
	env.RequestID = requestID
	env.StatusCode = resp.StatusCode
	return nil
}

// get fetches path and decodes it into a new T
func get[T any, PT interface {
	*T
	envelope
}](ctx context.Context, c *Client, operation, path string, query url.Values) (*T, error) {
	out := new(T)
	cl := call{
		operation: operation,
		method:    http.MethodGet,
		path:      path,
		query:     query,
		expect:    []int{http.StatusOK},
	}
	if err := c.do(ctx, cl, PT(out)); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return out, nil
}

// submit starts an asynchronous operation and waits for it to finish
func (c *Client) submit(ctx context.Context, operation, method, path string, body any) (*management.OperationStatusResponse, error) {
	var accepted management.OperationResponse
	cl := call{
		operation: operation,
		method:    method,
		path:      path,
		body:      body,
		mutating:  true,
		expect:    []int{http.StatusOK, http.StatusCreated, http.StatusAccepted},
	}
	if err := c.do(ctx, cl, &accepted); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	status, err := c.WaitForOperation(ctx, accepted.RequestID)
	if err != nil {
		return status, fmt.Errorf("%s: %w", operation, err)
	}
	return status, nil
}

// GetOperationStatus fetches the state of the operation started by requestID
func (c *Client) GetOperationStatus(ctx context.Context, requestID string) (*management.OperationStatusResponse, error) {
	if requestID == "" {
		return nil, ErrNoRequestID
	}
	return get[management.OperationStatusResponse](ctx, c, "GetOperationStatus", "operations/"+url.PathEscape(requestID), nil)
}

// WaitForOperation polls the operation started by requestID until it leaves
// InProgress. A failed operation is returned together with an error wrapping
// ErrOperationFailed.
func (c *Client) WaitForOperation(ctx context.Context, requestID string) (*management.OperationStatusResponse, error) {
	if requestID == "" {
		return nil, ErrNoRequestID
	}

	ctx = logging.WithOperationID(ctx, requestID)
	ctx, span := tracing.StartSpan(ctx, tracing.SpanOperationPoll)
	defer span.End()
	span.SetAttributes(tracing.AttrOperationID.String(requestID))

	ctx, cancel := context.WithTimeout(ctx, c.config.OperationTimeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		status, err := c.GetOperationStatus(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if status.Done() {
			if status.Status == management.OperationStatusFailed {
				reason := "no error details"
				if status.Error != nil {
					reason = status.Error.Code + ": " + status.Error.Message
				}
				return status, fmt.Errorf("%w: %s", ErrOperationFailed, reason)
			}
			return status, nil
		}

		logging.FromContext(ctx).V(1).Info("Operation in progress", "attempt", attempt)

		select {
		case <-ctx.Done():
			return status, fmt.Errorf("waiting for operation %s: %w", requestID, ctx.Err())
		case <-time.After(util.CalculateBackoff(c.config.Polling, attempt)):
		}
	}
}
