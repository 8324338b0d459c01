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

package smapi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Custom errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrOperationFailed  = errors.New("operation failed")
	ErrNoRequestID      = errors.New("response carried no request id")
	ErrMissingParameter = errors.New("missing parameter")
)

// Error is a non-success answer from the Service Management endpoint, or a
// request that never got one
type Error struct {
	// StatusCode is zero when no response was received
	StatusCode int
	// Code is the service error code, e.g. ResourceNotFound
	Code string
	// Message describes the error
	Message string
	// RequestID is the x-ms-request-id of the failed call
	RequestID string
	// Cause contains the underlying transport error
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	} else {
		b.WriteString("transport error")
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " [request %s]", e.RequestID)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is maps status codes onto the package sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRetryable reports whether the same request may succeed later
func (e *Error) IsRetryable() bool {
	switch e.StatusCode {
	case 0:
		return e.Cause != nil
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// errorBody is the XML error document returned by the endpoint
type errorBody struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// parseError builds an Error from a non-success response. A body that is not
// an error document becomes the message.
func parseError(statusCode int, requestID string, body []byte) *Error {
	e := &Error{StatusCode: statusCode, RequestID: requestID}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}

	var doc errorBody
	if err := xml.Unmarshal(trimmed, &doc); err == nil {
		e.Code = doc.Code
		e.Message = doc.Message
		return e
	}

	const maxMessage = 256
	msg := string(trimmed)
	if len(msg) > maxMessage {
		msg = msg[:maxMessage]
	}
	e.Message = msg
	return e
}
