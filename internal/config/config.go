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

package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/projectbeskar/smctl/internal/obs/logging"
	"github.com/projectbeskar/smctl/internal/obs/tracing"
	"github.com/projectbeskar/smctl/internal/resilience"
	"github.com/projectbeskar/smctl/internal/util"
)

// DefaultAPIVersion is sent as x-ms-version when none is configured
const DefaultAPIVersion = "2014-06-01"

// Failure modes of the fake endpoint
const (
	FailureModeNone   = "none"
	FailureModeAlways = "always"
	FailureModeRandom = "random"
)

// Config holds all configuration for smctl and the fake endpoint
type Config struct {
	// Logging configuration
	Log logging.Config `yaml:"log"`

	// Tracing configuration
	Tracing tracing.Config `yaml:"tracing"`

	// Service Management endpoint
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Per-call timeouts
	RPC RPCConfig `yaml:"rpc"`

	// Retry configuration
	Retry resilience.RetryConfig `yaml:"retry"`

	// Circuit breaker configuration
	CircuitBreaker resilience.Config `yaml:"circuitBreaker"`

	// Output rendering
	Output OutputConfig `yaml:"output"`

	// Fake endpoint behaviour
	Fake FakeConfig `yaml:"fake"`
}

// EndpointConfig identifies the Service Management endpoint and subscription
type EndpointConfig struct {
	URL                string `yaml:"url" validate:"required,url"`
	SubscriptionID     string `yaml:"subscriptionId" validate:"required"`
	Token              string `yaml:"token"`
	APIVersion         string `yaml:"apiVersion" validate:"required"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
}

// RPCConfig holds timeout configuration
type RPCConfig struct {
	TimeoutRead      time.Duration `yaml:"timeoutRead" validate:"gt=0"`
	TimeoutMutating  time.Duration `yaml:"timeoutMutating" validate:"gt=0"`
	TimeoutOperation time.Duration `yaml:"timeoutOperation" validate:"gt=0"`
}

// OutputConfig holds rendering configuration
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=table json yaml"`
}

// FakeConfig holds the fake endpoint configuration
type FakeConfig struct {
	Addr        string        `yaml:"addr"`
	FailureMode string        `yaml:"failureMode" validate:"oneof=none always random"`
	FailureRate float64       `yaml:"failureRate" validate:"gte=0,lte=1"`
	Latency     time.Duration `yaml:"latency" validate:"gte=0"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Log:     *logging.DefaultConfig(),
		Tracing: *tracing.DefaultConfig(tracing.ServiceCLI, ""),
		Endpoint: EndpointConfig{
			URL:                util.Env("SMCTL_ENDPOINT", "http://127.0.0.1:8443"),
			SubscriptionID:     util.Env("SMCTL_SUBSCRIPTION_ID", "00000000-0000-0000-0000-000000000000"),
			Token:              util.Env("SMCTL_TOKEN", ""),
			APIVersion:         util.Env("SMCTL_API_VERSION", DefaultAPIVersion),
			InsecureSkipVerify: util.Env("SMCTL_INSECURE_SKIP_VERIFY", false),
		},
		RPC: RPCConfig{
			TimeoutRead:      util.Env("SMCTL_TIMEOUT_READ", 30*time.Second),
			TimeoutMutating:  util.Env("SMCTL_TIMEOUT_MUTATING", 4*time.Minute),
			TimeoutOperation: util.Env("SMCTL_TIMEOUT_OPERATION", 10*time.Minute),
		},
		Retry: resilience.RetryConfig{
			MaxAttempts: util.Env("SMCTL_RETRY_MAX_ATTEMPTS", 4),
			BaseDelay:   util.Env("SMCTL_RETRY_BASE_DELAY", 250*time.Millisecond),
			MaxDelay:    util.Env("SMCTL_RETRY_MAX_DELAY", 5*time.Second),
			Multiplier:  util.Env("SMCTL_RETRY_MULTIPLIER", 2.0),
			Jitter:      util.Env("SMCTL_RETRY_JITTER", true),
		},
		CircuitBreaker: resilience.Config{
			FailureThreshold: util.Env("SMCTL_CB_FAILURE_THRESHOLD", 5),
			ResetTimeout:     util.Env("SMCTL_CB_RESET_TIMEOUT", 30*time.Second),
			HalfOpenMaxCalls: util.Env("SMCTL_CB_HALF_OPEN_MAX_CALLS", 1),
		},
		Output: OutputConfig{
			Format: util.Env("SMCTL_OUTPUT", "table"),
		},
		Fake: FakeConfig{
			Addr:        util.Env("SMCTL_FAKE_ADDR", ":8443"),
			FailureMode: util.Env("SMCTL_FAKE_FAILURE_MODE", FailureModeNone),
			FailureRate: util.Env("SMCTL_FAKE_FAILURE_RATE", 0.2),
			Latency:     util.Env("SMCTL_FAKE_LATENCY", time.Duration(0)),
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetRPCTimeout returns the timeout for one call. Mutating calls get the
// longer budget.
func (c *Config) GetRPCTimeout(mutating bool) time.Duration {
	if mutating {
		return c.RPC.TimeoutMutating
	}
	return c.RPC.TimeoutRead
}

// Load returns the defaults overlayed with configFile, when one is given
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()
	if configFile != "" {
		if err := loadFromFile(configFile, config); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}
	return config, nil
}

// Manager manages configuration with hot-reload capability
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	watchers []chan *Config
	watcher  *fsnotify.Watcher
	file     string
	log      logr.Logger
}

// NewManager creates a new configuration manager. When configFile is set the
// file is watched and every write republishes the configuration.
func NewManager(configFile string, log logr.Logger) (*Manager, error) {
	config, err := Load(configFile)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		config:   config,
		watchers: make([]chan *Config, 0),
		file:     configFile,
		log:      log,
	}

	if configFile != "" {
		if err := manager.setupFileWatcher(); err != nil {
			log.Error(err, "Failed to set up config file watcher", "file", configFile)
		}
	}

	return manager, nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Watch returns a channel that receives configuration updates, starting with
// the current one
func (m *Manager) Watch() <-chan *Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *Config, 1)
	m.watchers = append(m.watchers, ch)
	ch <- m.config

	return ch
}

// Update replaces the configuration and notifies watchers
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	m.config = config
	watchers := make([]chan *Config, len(m.watchers))
	copy(watchers, m.watchers)
	m.mu.Unlock()

	for _, watcher := range watchers {
		// drop the stale value so the latest one always lands
		select {
		case <-watcher:
		default:
		}
		select {
		case watcher <- config:
		default:
		}
	}
}

// Close closes the configuration manager and cleans up resources
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, watcher := range m.watchers {
		close(watcher)
	}
	m.watchers = nil

	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func (m *Manager) setupFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					m.reloadConfig()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Error(err, "Config file watcher error")
			}
		}
	}()

	return watcher.Add(m.file)
}

func (m *Manager) reloadConfig() {
	config, err := Load(m.file)
	if err == nil {
		err = config.Validate()
	}
	if err != nil {
		m.log.Error(err, "Ignoring config reload", "file", m.file)
		return
	}

	m.log.Info("Configuration reloaded", "file", m.file)
	m.Update(config)
}

func loadFromFile(filename string, config *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}
