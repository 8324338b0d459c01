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
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/storage"
)

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.opsMu.Lock()
	op, ok := s.operations[id]
	var resp management.OperationStatusResponse
	if ok {
		resp = management.OperationStatusResponse{
			ID:             op.ID,
			Status:         op.Status(time.Now()),
			HTTPStatusCode: op.HTTPStatusCode,
		}
		if resp.Status == management.OperationStatusFailed {
			resp.Error = op.Error
		}
	}
	s.opsMu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The operation %s does not exist.", id))
		return
	}
	s.writeResponse(w, &resp)
}

func (s *Server) handleListAffinityGroups(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &management.AffinityGroupListResponse{}
	for _, name := range sortedKeys(s.affinityGroups) {
		g := s.affinityGroups[name]
		resp.AffinityGroups = append(resp.AffinityGroups, management.AffinityGroup{
			Name:         g.Name,
			Label:        g.Label,
			Description:  g.Description,
			Location:     g.Location,
			Capabilities: g.Capabilities,
		})
	}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleGetAffinityGroup(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.RLock()
	g, ok := s.affinityGroups[name]
	s.mu.RUnlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The affinity group %s does not exist.", name))
		return
	}
	s.writeResponse(w, g)
}

func (s *Server) handleListLocations(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &management.LocationsListResponse{Locations: slices.Clone(s.locations)}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleListOperatingSystems(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &compute.OperatingSystemListResponse{OperatingSystems: slices.Clone(s.operatingSystems)}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleListHostedServices(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &compute.HostedServiceListResponse{}
	for _, name := range sortedKeys(s.services) {
		props := s.services[name].properties
		props.ExtendedProperties = nil
		resp.HostedServices = append(resp.HostedServices, compute.HostedService{
			ServiceName: name,
			URI:         s.serviceURL("services/hostedservices/" + name),
			Properties:  props,
		})
	}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleGetHostedService(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["service"]

	s.mu.RLock()
	svc, ok := s.services[name]
	var resp *compute.HostedServiceGetResponse
	if ok {
		resp = &compute.HostedServiceGetResponse{
			ServiceName: name,
			URI:         s.serviceURL("services/hostedservices/" + name),
			Properties:  svc.properties,
		}
	}
	s.mu.RUnlock()

	if !ok {
		s.serviceNotFound(w, name)
		return
	}
	if r.URL.Query().Get("embed-detail") != "true" {
		resp.Properties.ExtendedProperties = nil
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleDeleteHostedService(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["service"]

	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[name]
	if !ok {
		s.serviceNotFound(w, name)
		return
	}
	if len(svc.deployments) > 0 {
		s.writeError(w, http.StatusConflict, "ConflictError", fmt.Sprintf("The hosted service %s still has deployments.", name))
		return
	}

	delete(s.services, name)
	s.accept(w, r, nil)
}

func (s *Server) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["service"]

	s.mu.RLock()
	svc, ok := s.services[name]
	resp := &compute.ServiceCertificateListResponse{}
	if ok {
		for _, cert := range svc.certificates {
			cert.CertificateURI = s.certificateURL(name, cert)
			resp.Certificates = append(resp.Certificates, cert)
		}
	}
	s.mu.RUnlock()

	if !ok {
		s.serviceNotFound(w, name)
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["service"]

	algorithm, thumbprint, found := strings.Cut(vars["certificate"], "-")
	if !found {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "The certificate must be addressed as algorithm-thumbprint.")
		return
	}

	s.mu.RLock()
	svc, ok := s.services[name]
	var resp *compute.ServiceCertificateGetResponse
	if ok {
		for _, cert := range svc.certificates {
			if strings.EqualFold(cert.ThumbprintAlgorithm, algorithm) && strings.EqualFold(cert.Thumbprint, thumbprint) {
				resp = &compute.ServiceCertificateGetResponse{Data: cert.Data}
				break
			}
		}
	}
	s.mu.RUnlock()

	switch {
	case !ok:
		s.serviceNotFound(w, name)
	case resp == nil:
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The certificate %s-%s does not exist.", algorithm, thumbprint))
	default:
		s.writeResponse(w, resp)
	}
}

func (s *Server) handleListExtensions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["service"]

	s.mu.RLock()
	svc, ok := s.services[name]
	resp := &compute.HostedServiceListExtensionsResponse{}
	if ok {
		resp.Extensions = slices.Clone(svc.extensions)
	}
	s.mu.RUnlock()

	if !ok {
		s.serviceNotFound(w, name)
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleGetDeploymentBySlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["service"]

	s.mu.RLock()
	svc, ok := s.services[name]
	var deployment *compute.DeploymentGetResponse
	if ok {
		for slot, d := range svc.deployments {
			if strings.EqualFold(string(slot), vars["slot"]) {
				copied := *d
				deployment = &copied
				break
			}
		}
	}
	s.mu.RUnlock()

	switch {
	case !ok:
		s.serviceNotFound(w, name)
	case deployment == nil:
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("No deployments were found in slot %s.", vars["slot"]))
	default:
		s.writeResponse(w, deployment)
	}
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["service"]
	deploymentName := vars["deployment"]

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "Failed to read request body.")
		return
	}
	var params compute.VirtualMachineCreateParameters
	if err := xml.Unmarshal(body, &params); err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", fmt.Sprintf("The request body is not a valid role: %v", err))
		return
	}
	if strings.TrimSpace(params.RoleName) == "" {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "RoleName is required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[name]
	if !ok {
		s.serviceNotFound(w, name)
		return
	}
	var deployment *compute.DeploymentGetResponse
	for _, d := range svc.deployments {
		if d.Name == deploymentName {
			deployment = d
			break
		}
	}
	if deployment == nil {
		s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The deployment %s does not exist.", deploymentName))
		return
	}

	exists := slices.ContainsFunc(deployment.Roles, func(role compute.Role) bool {
		return strings.EqualFold(role.RoleName, params.RoleName)
	})
	if exists {
		s.accept(w, r, &management.OperationError{
			Code:    "ConflictError",
			Message: fmt.Sprintf("A role named %s already exists in deployment %s.", params.RoleName, deploymentName),
		})
		return
	}

	deployment.Roles = append(slices.Clone(deployment.Roles), compute.Role{
		RoleName:             params.RoleName,
		RoleType:             params.RoleType,
		RoleSize:             params.RoleSize,
		AvailabilitySetName:  params.AvailabilitySetName,
		ProvisionGuestAgent:  params.ProvisionGuestAgent,
		ConfigurationSets:    params.ConfigurationSets,
		DataVirtualHardDisks: params.DataVirtualHardDisks,
		OSVirtualHardDisk:    params.OSVirtualHardDisk,
	})
	deployment.RoleInstances = append(slices.Clone(deployment.RoleInstances), compute.RoleInstance{
		RoleName:       params.RoleName,
		InstanceName:   params.RoleName,
		InstanceStatus: "Provisioning",
		InstanceSize:   params.RoleSize,
		PowerState:     "Starting",
	})
	s.accept(w, r, nil)
}

func (s *Server) handleListDisks(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &compute.VirtualMachineDiskListResponse{Disks: slices.Clone(s.disks)}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleListImages(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &compute.VirtualMachineImageListResponse{Images: slices.Clone(s.images)}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleListStorageServices(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := &storage.StorageServiceListResponse{}
	for _, name := range sortedKeys(s.storageServices) {
		resp.StorageServices = append(resp.StorageServices, storage.StorageService{
			ServiceName: name,
			URI:         s.serviceURL("services/storageservices/" + name),
			Properties:  s.storageServices[name].properties,
		})
	}
	s.mu.RUnlock()

	s.writeResponse(w, resp)
}

func (s *Server) handleGetStorageService(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["account"]

	s.mu.RLock()
	account, ok := s.storageServices[name]
	var resp *storage.StorageServiceGetResponse
	if ok {
		resp = &storage.StorageServiceGetResponse{
			ServiceName: name,
			URI:         s.serviceURL("services/storageservices/" + name),
			Properties:  account.properties,
		}
	}
	s.mu.RUnlock()

	if !ok {
		s.storageNotFound(w, name)
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleGetStorageKeys(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["account"]

	s.mu.RLock()
	account, ok := s.storageServices[name]
	var resp *storage.StorageAccountGetKeysResponse
	if ok {
		resp = &storage.StorageAccountGetKeysResponse{
			URI:          s.serviceURL("services/storageservices/" + name),
			PrimaryKey:   account.primaryKey,
			SecondaryKey: account.secondaryKey,
		}
	}
	s.mu.RUnlock()

	if !ok {
		s.storageNotFound(w, name)
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleDeleteStorageService(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["account"]

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.storageServices[name]; !ok {
		s.storageNotFound(w, name)
		return
	}
	delete(s.storageServices, name)
	s.accept(w, r, nil)
}

func (s *Server) serviceNotFound(w http.ResponseWriter, name string) {
	s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The hosted service %s does not exist.", name))
}

func (s *Server) storageNotFound(w http.ResponseWriter, name string) {
	s.writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The storage account %s does not exist.", name))
}

func (s *Server) certificateURL(service string, cert compute.Certificate) string {
	return s.serviceURL(fmt.Sprintf("services/hostedservices/%s/certificates/%s-%s", service, cert.ThumbprintAlgorithm, cert.Thumbprint))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
