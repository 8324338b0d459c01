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

package smfake

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
)

const testSubscription = "sub"

func serve(t *testing.T, s *Server, method, path string, header http.Header, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/"+testSubscription+"/"+path, strings.NewReader(body))
	req.Header.Set(headerVersion, "2014-06-01")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestRequiresVersionHeader(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	req := httptest.NewRequest(http.MethodGet, "/sub/locations", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MissingOrInvalidRequiredHeader")
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestTokenEnforced(t *testing.T) {
	s := NewServer(Config{Token: "secret"}, logr.Discard())

	rec := serve(t, s, http.MethodGet, "locations", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, s, http.MethodGet, "locations", http.Header{"Authorization": {"Bearer secret"}}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFailNext(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	s.FailNext(1)

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "locations", nil, "").Code)
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "locations", nil, "").Code)

	s.SetConfig(Config{FailureMode: "always"})
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "locations", nil, "").Code)
}

func TestUnknownRouteReturnsErrorDocument(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	rec := serve(t, s, http.MethodGet, "services/unknown", nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var doc errorDocument
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "ResourceNotFound", doc.Code)
}

func TestAsyncOperationLifecycle(t *testing.T) {
	s := NewServer(Config{OperationDelay: time.Hour}, logr.Discard())

	rec := serve(t, s, http.MethodDelete, "services/storageservices/"+SeedStorageAccount, nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := rec.Header().Get(headerRequestID)

	poll := func() management.OperationStatusResponse {
		rec := serve(t, s, http.MethodGet, "operations/"+id, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var status management.OperationStatusResponse
		require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &status))
		return status
	}

	assert.Equal(t, management.OperationStatusInProgress, poll().Status)

	s.opsMu.Lock()
	s.operations[id].ReadyAt = time.Now()
	s.opsMu.Unlock()

	status := poll()
	assert.Equal(t, management.OperationStatusSucceeded, status.Status)
	assert.Equal(t, http.StatusOK, status.HTTPStatusCode)

	ops := s.Operations()
	require.Len(t, ops, 1, "polls are not recorded as operations")
	assert.Equal(t, http.MethodDelete, ops[0].Method)
}

func TestCreateRoleConflictFailsOperation(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	body, err := xml.Marshal(&compute.VirtualMachineCreateParameters{RoleName: SeedLinuxRole, RoleType: "PersistentVMRole"})
	require.NoError(t, err)

	rec := serve(t, s, http.MethodPost, "services/hostedservices/"+SeedService+"/deployments/"+SeedDeployment+"/roles", nil, string(body))
	require.Equal(t, http.StatusAccepted, rec.Code)

	op := s.Operations()[0]
	assert.Equal(t, management.OperationStatusFailed, op.Status(time.Now()))
	assert.Equal(t, "ConflictError", op.Error.Code)
}

func TestCreateRoleRejectsUnknownDeployment(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	body, err := xml.Marshal(&compute.VirtualMachineCreateParameters{RoleName: "new", RoleType: "PersistentVMRole"})
	require.NoError(t, err)

	rec := serve(t, s, http.MethodPost, "services/hostedservices/"+SeedService+"/deployments/nope/roles", nil, string(body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeploymentSlotIsCaseInsensitive(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())
	rec := serve(t, s, http.MethodGet, "services/hostedservices/"+SeedService+"/deploymentslots/staging", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var deployment compute.DeploymentGetResponse
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &deployment))
	assert.Equal(t, SeedStagingDeployment, deployment.Name)
	require.NotNil(t, deployment.UpgradeStatus)
	assert.Equal(t, 1, deployment.UpgradeStatus.CurrentUpgradeDomain)
}

func TestHostedServiceDetailIsOptIn(t *testing.T) {
	s := NewServer(Config{}, logr.Discard())

	var plain compute.HostedServiceGetResponse
	rec := serve(t, s, http.MethodGet, "services/hostedservices/"+SeedService, nil, "")
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &plain))
	assert.Empty(t, plain.Properties.ExtendedProperties)

	var detailed compute.HostedServiceGetResponse
	rec = serve(t, s, http.MethodGet, "services/hostedservices/"+SeedService+"?embed-detail=true", nil, "")
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &detailed))
	assert.Len(t, detailed.Properties.ExtendedProperties, 2)
}
