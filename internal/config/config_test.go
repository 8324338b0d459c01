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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultAPIVersion, cfg.Endpoint.APIVersion)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, FailureModeNone, cfg.Fake.FailureMode)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("SMCTL_SUBSCRIPTION_ID", "sub-1")
	t.Setenv("SMCTL_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("SMCTL_TIMEOUT_READ", "3s")

	cfg := DefaultConfig()
	assert.Equal(t, "sub-1", cfg.Endpoint.SubscriptionID)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.GetRPCTimeout(false))
	assert.Equal(t, 4*time.Minute, cfg.GetRPCTimeout(true))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing subscription", func(c *Config) { c.Endpoint.SubscriptionID = "" }},
		{"bad endpoint url", func(c *Config) { c.Endpoint.URL = "not a url" }},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }},
		{"bad failure mode", func(c *Config) { c.Fake.FailureMode = "sometimes" }},
		{"failure rate above one", func(c *Config) { c.Fake.FailureRate = 1.5 }},
		{"zero read timeout", func(c *Config) { c.RPC.TimeoutRead = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint:
  url: https://management.example.com
  subscriptionId: 1111
rpc:
  timeoutRead: 12s
fake:
  failureMode: always
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://management.example.com", cfg.Endpoint.URL)
	assert.Equal(t, "1111", cfg.Endpoint.SubscriptionID)
	assert.Equal(t, 12*time.Second, cfg.RPC.TimeoutRead)
	assert.Equal(t, FailureModeAlways, cfg.Fake.FailureMode)
	assert.Equal(t, DefaultAPIVersion, cfg.Endpoint.APIVersion, "unset keys keep defaults")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestManagerReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fake:\n  failureMode: none\n"), 0o600))

	m, err := NewManager(path, logr.Discard())
	require.NoError(t, err)
	defer m.Close()

	updates := m.Watch()
	assert.Equal(t, FailureModeNone, (<-updates).Fake.FailureMode)

	require.NoError(t, os.WriteFile(path, []byte("fake:\n  failureMode: random\n"), 0o600))

	select {
	case cfg := <-updates:
		assert.Equal(t, FailureModeRandom, cfg.Fake.FailureMode)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
	assert.Equal(t, FailureModeRandom, m.Get().Fake.FailureMode)
}

func TestManagerUpdateKeepsLatest(t *testing.T) {
	m, err := NewManager("", logr.Discard())
	require.NoError(t, err)
	defer m.Close()

	updates := m.Watch()
	first := DefaultConfig()
	first.Output.Format = "json"
	second := DefaultConfig()
	second.Output.Format = "yaml"

	m.Update(first)
	m.Update(second)
	assert.Equal(t, "yaml", (<-updates).Output.Format)
}
