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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectbeskar/smctl/internal/config"
	"github.com/projectbeskar/smctl/internal/smapi"
	"github.com/projectbeskar/smctl/internal/smapi/smfake"
)

func newFake(t *testing.T) (*smfake.Server, *config.Config) {
	t.Helper()
	fake := smfake.NewServer(smfake.Config{}, logr.Discard())
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Endpoint.URL = server.URL
	cfg.Endpoint.Token = ""
	cfg.Output.Format = FormatTable
	cfg.Log.Level = "error"
	cfg.Tracing.Enabled = false
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	cfg.RPC.TimeoutOperation = 10 * time.Second
	return fake, cfg
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	log := logr.Discard()
	cmd := NewRootCommand(Options{Out: &out, Config: cfg, Logger: &log})
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestServiceList(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "service", "list", "-o", "json")
	require.NoError(t, err)

	services := decode[[]map[string]any](t, out)
	require.Len(t, services, 2)
	names := []any{services[0]["ServiceName"], services[1]["ServiceName"]}
	assert.ElementsMatch(t, []any{smfake.SeedService, smfake.SeedEmptyService}, names)
	for _, s := range services {
		assert.Equal(t, "Succeeded", s["OperationStatus"])
		assert.Equal(t, "smctl service list", s["OperationDescription"])
		assert.NotEmpty(t, s["OperationId"])
	}
}

// withoutRequestID drops the request id header from every response
type withoutRequestID struct {
	http.ResponseWriter
}

func (w withoutRequestID) WriteHeader(code int) {
	w.Header().Del(smapi.HeaderRequestID)
	w.ResponseWriter.WriteHeader(code)
}

func (w withoutRequestID) Write(b []byte) (int, error) {
	w.Header().Del(smapi.HeaderRequestID)
	return w.ResponseWriter.Write(b)
}

func TestResponsesWithoutRequestIDKeepOperationStatus(t *testing.T) {
	fake, cfg := newFake(t)
	handler := fake.Handler()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(withoutRequestID{w}, r)
	}))
	t.Cleanup(server.Close)
	cfg.Endpoint.URL = server.URL

	out, err := run(t, cfg, "service", "list", "-o", "json")
	require.NoError(t, err)
	services := decode[[]map[string]any](t, out)
	require.NotEmpty(t, services)
	for _, svc := range services {
		assert.Equal(t, "OK", svc["OperationStatus"], "service %v", svc["ServiceName"])
		assert.Equal(t, "smctl service list", svc["OperationDescription"])
	}

	out, err = run(t, cfg, "service", "get", smfake.SeedService, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "OK", decode[map[string]any](t, out)["OperationStatus"])

	out, err = run(t, cfg, "vm", "get", smfake.SeedService, smfake.SeedLinuxRole, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "OK", decode[map[string]any](t, out)["OperationStatus"])
}

func TestServiceGetYAML(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "service", "get", smfake.SeedService, "-o", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OperationDescription: smctl service get\n"), out)
	assert.Contains(t, out, "ServiceName: "+smfake.SeedService)
	assert.Contains(t, out, "Owner: web-team")
}

func TestServiceRemoveRefusesServiceWithDeployments(t *testing.T) {
	_, cfg := newFake(t)

	_, err := run(t, cfg, "service", "remove", smfake.SeedService)
	require.Error(t, err)
	var apiErr *smapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
}

func TestServiceRemove(t *testing.T) {
	fake, cfg := newFake(t)

	out, err := run(t, cfg, "service", "remove", smfake.SeedEmptyService, "-o", "json")
	require.NoError(t, err)

	op := decode[map[string]any](t, out)
	assert.Equal(t, "Succeeded", op["OperationStatus"])
	assert.Equal(t, "smctl service remove", op["OperationDescription"])
	assert.Equal(t, 1, fake.ServiceCount())
}

func TestDeploymentGetAcceptsAnySlotCase(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "deployment", "get", smfake.SeedService, "--slot", "staging", "-o", "json")
	require.NoError(t, err)

	dep := decode[map[string]any](t, out)
	assert.Equal(t, smfake.SeedService, dep["ServiceName"])
	assert.Equal(t, "Staging", dep["Slot"])
	assert.Equal(t, smfake.SeedStagingDeployment, dep["DeploymentName"])
	assert.Equal(t, true, dep["Locked"])
	assert.EqualValues(t, 1, dep["CurrentUpgradeDomain"])
}

func TestInvalidSlotMakesNoCall(t *testing.T) {
	fake, cfg := newFake(t)

	_, err := run(t, cfg, "deployment", "get", smfake.SeedService, "--slot", "blue")
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "slot")
	assert.Empty(t, fake.Operations())
}

func TestRemoteDesktopExtensions(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "extension", "rdp", "get", smfake.SeedService, "-o", "json")
	require.NoError(t, err)

	exts := decode[[]map[string]any](t, out)
	require.Len(t, exts, 2)

	assert.Equal(t, smfake.SeedRDPWebUser, exts[0]["UserName"])
	assert.Equal(t, map[string]any{"RoleName": smfake.SeedWebRole, "RoleType": "NamedRoles"}, exts[0]["Role"])

	assert.Equal(t, smfake.SeedRDPUser, exts[1]["UserName"])
	assert.Equal(t, smfake.SeedRDPExpiration, exts[1]["Expiration"])
	assert.Equal(t, "AllRoles", exts[1]["Role"].(map[string]any)["RoleType"])
	for _, e := range exts {
		assert.Equal(t, smfake.SeedService, e["ServiceName"])
	}
}

func TestVMGet(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "vm", "get", smfake.SeedService, strings.ToUpper(smfake.SeedLinuxRole), "-o", "json")
	require.NoError(t, err)

	vm := decode[map[string]any](t, out)
	assert.Equal(t, smfake.SeedLinuxRole, vm["Name"])
	assert.Equal(t, smfake.SeedDeployment, vm["DeploymentName"])
	assert.Equal(t, "10.0.1.4", vm["IpAddress"])
}

func TestVMGetUnknownRole(t *testing.T) {
	_, cfg := newFake(t)

	_, err := run(t, cfg, "vm", "get", smfake.SeedService, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role not found")
}

const webVM = `RoleName: web-02
RoleSize: Small
ConfigurationSets:
  - ConfigurationSetType: NetworkConfiguration
    InputEndpoints:
      - Name: http
        Protocol: tcp
        Port: 80
        LocalPort: 80
  - ConfigurationSetType: LinuxProvisioningConfiguration
    HostName: web-02
    UserName: ops
OSVirtualHardDisk:
  SourceImageName: Ubuntu-22_04-LTS
`

func TestVMImport(t *testing.T) {
	_, cfg := newFake(t)
	file := filepath.Join(t.TempDir(), "web-02.yaml")
	require.NoError(t, os.WriteFile(file, []byte(webVM), 0o600))

	out, err := run(t, cfg, "vm", "import", smfake.SeedService, smfake.SeedDeployment, file)
	require.NoError(t, err)
	assert.Contains(t, out, "OPERATION")
	assert.Contains(t, out, "Succeeded")

	out, err = run(t, cfg, "vm", "get", smfake.SeedService, "web-02", "-o", "json")
	require.NoError(t, err)
	vm := decode[map[string]any](t, out)
	assert.Equal(t, "web-02", vm["Name"])
}

func TestVMImportRejectsUnknownFields(t *testing.T) {
	fake, cfg := newFake(t)
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("RoleName: x\nColour: blue\n"), 0o600))

	_, err := run(t, cfg, "vm", "import", smfake.SeedService, smfake.SeedDeployment, file)
	require.Error(t, err)
	assert.Empty(t, fake.Operations())
}

func TestVMImportRejectsMisspelledConfigurationSetField(t *testing.T) {
	fake, cfg := newFake(t)
	file := filepath.Join(t.TempDir(), "typo.yaml")
	doc := strings.Replace(webVM, "UserName: ops", "UsrName: ops", 1)
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o600))

	_, err := run(t, cfg, "vm", "import", smfake.SeedService, smfake.SeedDeployment, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UsrName")
	assert.Empty(t, fake.Operations())
}

func TestVMImportMissingFile(t *testing.T) {
	_, cfg := newFake(t)

	_, err := run(t, cfg, "vm", "import", smfake.SeedService, smfake.SeedDeployment, filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCertificateGet(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "certificate", "get", smfake.SeedService, "SHA1", strings.ToLower(smfake.SeedThumbprint), "-o", "json")
	require.NoError(t, err)

	cert := decode[map[string]any](t, out)
	assert.Equal(t, smfake.SeedThumbprintAlg, cert["ThumbprintAlgorithm"])
	assert.Equal(t, smfake.SeedThumbprint, cert["Thumbprint"])
	assert.NotEmpty(t, cert["Data"])
}

func TestStorageTables(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "storage", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^NAME\s+LOCATION\s+AFFINITY GROUP`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], smfake.SeedStorageAccount))

	out, err = run(t, cfg, "storage", "keys", smfake.SeedStorageAccount, "-o", "json")
	require.NoError(t, err)
	keys := decode[map[string]any](t, out)
	assert.Equal(t, smfake.SeedStorageAccount, keys["StorageAccountName"])
	assert.NotEmpty(t, keys["Primary"])
	assert.NotEmpty(t, keys["Secondary"])
}

func TestStorageRemove(t *testing.T) {
	_, cfg := newFake(t)

	out, err := run(t, cfg, "storage", "remove", smfake.SeedStorageAccount, "-o", "json")
	require.NoError(t, err)
	op := decode[map[string]any](t, out)
	assert.Equal(t, "Succeeded", op["OperationStatus"])
	assert.Equal(t, "smctl storage remove", op["OperationDescription"])

	_, err = run(t, cfg, "storage", "get", smfake.SeedStorageAccount)
	require.ErrorIs(t, err, smapi.ErrNotFound)
}

func TestNotFoundIsReported(t *testing.T) {
	_, cfg := newFake(t)

	_, err := run(t, cfg, "storage", "get", "nosuchaccount")
	require.ErrorIs(t, err, smapi.ErrNotFound)
}

func TestSubscriptionListings(t *testing.T) {
	_, cfg := newFake(t)

	for _, args := range [][]string{
		{"affinity-group", "list"},
		{"affinity-group", "get", smfake.SeedAffinityGroup},
		{"location", "list"},
		{"os", "list"},
		{"disk", "list"},
		{"image", "list"},
		{"certificate", "list", smfake.SeedService},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, err := run(t, cfg, append(args, "-o", "yaml")...)
			require.NoError(t, err)
			assert.Contains(t, out, "OperationStatus: Succeeded")
		})
	}
}

func TestLocalCommandsNeedNoEndpoint(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(Options{Out: &out})
	cmd.SetArgs([]string{"mappings", "-o", "json"})
	require.NoError(t, cmd.Execute())

	rows := decode[[]mappingRow](t, out.String())
	require.NotEmpty(t, rows)
	assert.Contains(t, rows, mappingRow{Source: "pvm.PersistentVM", Target: "compute.VirtualMachineCreateParameters"})

	out.Reset()
	cmd = NewRootCommand(Options{Out: &out})
	cmd.SetArgs([]string{"version", "-o", "yaml"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "goVersion:")

	out.Reset()
	cmd = NewRootCommand(Options{Out: &out})
	cmd.SetArgs([]string{"vm", "schema"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"const": "LinuxProvisioningConfiguration"`)

	cmd = NewRootCommand(Options{Out: &out})
	cmd.SetArgs([]string{"version", "-o", "xml"})
	require.ErrorIs(t, cmd.Execute(), ErrInvalidParameter)
}

func TestCanonicalSlot(t *testing.T) {
	tests := map[string]string{
		"production": "Production",
		"STAGING":    "Staging",
		" Staging ":  "Staging",
		"Production": "Production",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, string(canonicalSlot(in)), "input %q", in)
	}
}

func TestCheckParams(t *testing.T) {
	assert.NoError(t, checkParams(certificateParams{Service: "svc", Algorithm: "sha1", Thumbprint: "ABCDEF0123"}))

	err := checkParams(certificateParams{Service: "a/b", Algorithm: "sha-1", Thumbprint: "xyz"})
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "service must satisfy excludesall")
	assert.Contains(t, err.Error(), "algorithm must satisfy alphanum")
	assert.Contains(t, err.Error(), "thumbprint must satisfy hexadecimal")
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer

	p := NewPrinter(&out, FormatYAML)
	require.NoError(t, p.Print([]string{}, nil))
	assert.Equal(t, "[]\n", out.String())

	out.Reset()
	p = NewPrinter(&out, "")
	require.NoError(t, p.Print(nil, func() Table {
		t := Table{Header: []string{"A", "B"}}
		t.AddRow("", []string{"x", "y"})
		return t
	}))
	assert.Equal(t, "A        B\n<none>   x,y\n", out.String())
}
