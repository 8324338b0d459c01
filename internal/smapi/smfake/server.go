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

// Package smfake provides a fake Service Management endpoint for testing
package smfake

import (
	"encoding/xml"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/storage"
	"github.com/projectbeskar/smctl/internal/config"
	"github.com/projectbeskar/smctl/internal/obs/metrics"
)

const (
	headerVersion   = "x-ms-version"
	headerRequestID = "x-ms-request-id"

	operationsRoute = "/{subscription}/operations/{id}"
	publicHost      = "https://management.fake.local"
)

// Config holds fake server configuration
type Config struct {
	// FailureMode can be "none", "random", "always"
	FailureMode string
	// FailureRate for random failures (0.0-1.0)
	FailureRate float64
	// Latency is added to every request
	Latency time.Duration
	// OperationDelay is how long asynchronous operations stay InProgress
	OperationDelay time.Duration
	// Token, when set, must be presented as a bearer token
	Token string
}

// ConfigFrom derives the fake configuration from the process configuration
func ConfigFrom(cfg config.FakeConfig) Config {
	return Config{
		FailureMode:    cfg.FailureMode,
		FailureRate:    cfg.FailureRate,
		Latency:        cfg.Latency,
		OperationDelay: 200 * time.Millisecond,
	}
}

// Operation is a request the fake has accepted, as reported by the
// operation status resource
type Operation struct {
	ID             string
	Method         string
	Path           string
	HTTPStatusCode int
	Error          *management.OperationError
	ReadyAt        time.Time
}

// Status returns the state of the operation at the given time
func (o *Operation) Status(now time.Time) management.OperationStatus {
	switch {
	case now.Before(o.ReadyAt):
		return management.OperationStatusInProgress
	case o.Error != nil:
		return management.OperationStatusFailed
	default:
		return management.OperationStatusSucceeded
	}
}

type hostedService struct {
	properties   compute.HostedServiceProperties
	deployments  map[compute.DeploymentSlot]*compute.DeploymentGetResponse
	certificates []compute.Certificate
	extensions   []compute.Extension
}

type storageAccount struct {
	properties   storage.StorageServiceProperties
	primaryKey   string
	secondaryKey string
}

// Server represents a fake Service Management endpoint
type Server struct {
	router *mux.Router
	mu     sync.RWMutex
	log    logr.Logger
	config Config

	failNext int

	// opsMu guards operations and order; it may be taken while holding mu
	opsMu      sync.Mutex
	operations map[string]*Operation
	order      []string

	services         map[string]*hostedService
	storageServices  map[string]*storageAccount
	affinityGroups   map[string]*management.AffinityGroupGetResponse
	locations        []management.Location
	operatingSystems []compute.OperatingSystem
	disks            []compute.VirtualMachineDisk
	images           []compute.VirtualMachineImage
}

// NewServer creates a new fake server with seeded subscription content
func NewServer(cfg Config, log logr.Logger) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		log:             log,
		config:          cfg,
		operations:      make(map[string]*Operation),
		services:        make(map[string]*hostedService),
		storageServices: make(map[string]*storageAccount),
		affinityGroups:  make(map[string]*management.AffinityGroupGetResponse),
	}

	s.setupRoutes()
	s.seedData()

	return s
}

// setupRoutes configures the fake API routes
func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", "The requested resource does not exist.")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "The requested method is not supported.")
	})

	sub := s.router.PathPrefix("/{subscription}").Subrouter()

	sub.HandleFunc("/operations/{id}", s.handleGetOperation).Methods(http.MethodGet)

	sub.HandleFunc("/affinitygroups", s.handleListAffinityGroups).Methods(http.MethodGet)
	sub.HandleFunc("/affinitygroups/{name}", s.handleGetAffinityGroup).Methods(http.MethodGet)
	sub.HandleFunc("/locations", s.handleListLocations).Methods(http.MethodGet)
	sub.HandleFunc("/operatingsystems", s.handleListOperatingSystems).Methods(http.MethodGet)

	sub.HandleFunc("/services/hostedservices", s.handleListHostedServices).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}", s.handleGetHostedService).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}", s.handleDeleteHostedService).Methods(http.MethodDelete)
	sub.HandleFunc("/services/hostedservices/{service}/certificates", s.handleListCertificates).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}/certificates/{certificate}", s.handleGetCertificate).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}/extensions", s.handleListExtensions).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}/deploymentslots/{slot}", s.handleGetDeploymentBySlot).Methods(http.MethodGet)
	sub.HandleFunc("/services/hostedservices/{service}/deployments/{deployment}/roles", s.handleCreateRole).Methods(http.MethodPost)

	sub.HandleFunc("/services/disks", s.handleListDisks).Methods(http.MethodGet)
	sub.HandleFunc("/services/images", s.handleListImages).Methods(http.MethodGet)

	sub.HandleFunc("/services/storageservices", s.handleListStorageServices).Methods(http.MethodGet)
	sub.HandleFunc("/services/storageservices/{account}", s.handleGetStorageService).Methods(http.MethodGet)
	sub.HandleFunc("/services/storageservices/{account}", s.handleDeleteStorageService).Methods(http.MethodDelete)
	sub.HandleFunc("/services/storageservices/{account}/keys", s.handleGetStorageKeys).Methods(http.MethodGet)
}

// Handler returns the fake as an http.Handler
func (s *Server) Handler() http.Handler {
	return s
}

// SetConfig replaces the failure and latency settings
func (s *Server) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// FailNext makes the next n requests fail with 503
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Operations returns the recorded operations in arrival order
func (s *Server) Operations() []Operation {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	out := make([]Operation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.operations[id])
	}
	return out
}

// ServiceCount returns the number of hosted services, used by health checks
func (s *Server) ServiceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.services)
}

// statusRecorder captures the response code written by a handler and runs
// onHeader before the header reaches the client
type statusRecorder struct {
	http.ResponseWriter
	code     int
	written  bool
	onHeader func(code int)
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.written {
		return
	}
	r.written = true
	r.code = code
	if r.onHeader != nil {
		r.onHeader(code)
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(headerRequestID, requestID)

	route := "unmatched"
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			route = tpl
		}
	}

	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	if route != operationsRoute {
		rec.onHeader = func(code int) { s.recordCompleted(requestID, r, code) }
	}
	defer func() {
		metrics.RecordFakeRequest(route, rec.code)
		s.log.V(1).Info("Fake Service Management request",
			"method", r.Method, "path", r.URL.Path, "status", rec.code, "requestID", requestID)
	}()

	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg.Latency > 0 {
		time.Sleep(cfg.Latency)
	}

	if r.Header.Get(headerVersion) == "" {
		s.writeError(rec, http.StatusBadRequest, "MissingOrInvalidRequiredHeader", "The x-ms-version header is required.")
		return
	}

	if cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+cfg.Token {
		s.writeError(rec, http.StatusForbidden, "ForbiddenError", "The server failed to authenticate the request.")
		return
	}

	if s.shouldFail(cfg) {
		metrics.RecordInjectedFailure()
		s.writeError(rec, http.StatusServiceUnavailable, "ServerBusy", "Simulated failure")
		return
	}

	s.router.ServeHTTP(rec, r)
}

// recordCompleted records a synchronous request unless the handler already
// registered an asynchronous operation under the same id
func (s *Server) recordCompleted(requestID string, r *http.Request, code int) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if _, recorded := s.operations[requestID]; recorded {
		return
	}
	op := &Operation{
		ID:             requestID,
		Method:         r.Method,
		Path:           r.URL.Path,
		HTTPStatusCode: code,
		ReadyAt:        time.Now(),
	}
	if code >= http.StatusBadRequest {
		op.Error = &management.OperationError{
			Code:    strings.ReplaceAll(http.StatusText(code), " ", ""),
			Message: http.StatusText(code),
		}
	}
	s.operations[op.ID] = op
	s.order = append(s.order, op.ID)
}

// shouldFail determines if this request should fail based on configuration
func (s *Server) shouldFail(cfg Config) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return true
	}

	switch cfg.FailureMode {
	case config.FailureModeAlways:
		return true
	case config.FailureModeRandom:
		return rand.Float64() < cfg.FailureRate //nolint:gosec // failure injection
	default:
		return false
	}
}

// accept registers an asynchronous operation for the request id already set
// on w and answers 202. s.mu must be held.
func (s *Server) accept(w http.ResponseWriter, r *http.Request, opErr *management.OperationError) {
	code := http.StatusOK
	if opErr != nil {
		code = http.StatusConflict
	}
	op := &Operation{
		ID:             w.Header().Get(headerRequestID),
		Method:         r.Method,
		Path:           r.URL.Path,
		HTTPStatusCode: code,
		Error:          opErr,
		ReadyAt:        time.Now().Add(s.config.OperationDelay),
	}

	s.opsMu.Lock()
	s.operations[op.ID] = op
	s.order = append(s.order, op.ID)
	s.opsMu.Unlock()

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) serviceURL(path string) string {
	return publicHost + "/" + path
}

// writeResponse writes data as an XML document
func (s *Server) writeResponse(w http.ResponseWriter, data any) {
	body, err := xml.Marshal(data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}

type errorDocument struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// writeError writes an XML error document
func (s *Server) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(statusCode)
	body, _ := xml.Marshal(errorDocument{Code: code, Message: message})
	_, _ = w.Write(body)
}

// StartFakeServer starts a fake server on a random port
func StartFakeServer(cfg Config, log logr.Logger) (*Server, string, error) {
	server := NewServer(cfg, log)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("failed to start fake server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	endpoint := fmt.Sprintf("http://127.0.0.1:%d", port)

	go func() {
		if err := http.Serve(listener, server); err != nil {
			log.Error(err, "Fake Service Management server error")
		}
	}()

	return server, endpoint, nil
}
