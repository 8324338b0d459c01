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
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/storage"
)

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return nil
}

// ListAffinityGroups lists the affinity groups of the subscription
func (c *Client) ListAffinityGroups(ctx context.Context) (*management.AffinityGroupListResponse, error) {
	return get[management.AffinityGroupListResponse](ctx, c, "ListAffinityGroups", "affinitygroups", nil)
}

// GetAffinityGroup retrieves one affinity group with the services in it
func (c *Client) GetAffinityGroup(ctx context.Context, name string) (*management.AffinityGroupGetResponse, error) {
	if err := required("affinity group name", name); err != nil {
		return nil, err
	}
	return get[management.AffinityGroupGetResponse](ctx, c, "GetAffinityGroup", "affinitygroups/"+url.PathEscape(name), nil)
}

// ListLocations lists the regions available to the subscription
func (c *Client) ListLocations(ctx context.Context) (*management.LocationsListResponse, error) {
	return get[management.LocationsListResponse](ctx, c, "ListLocations", "locations", nil)
}

// ListServiceCertificates lists the certificates of a hosted service
func (c *Client) ListServiceCertificates(ctx context.Context, service string) (*compute.ServiceCertificateListResponse, error) {
	if err := required("service name", service); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("services/hostedservices/%s/certificates", url.PathEscape(service))
	return get[compute.ServiceCertificateListResponse](ctx, c, "ListServiceCertificates", path, nil)
}

// GetServiceCertificate retrieves one certificate of a hosted service
func (c *Client) GetServiceCertificate(ctx context.Context, service, algorithm, thumbprint string) (*compute.ServiceCertificateGetResponse, error) {
	for name, value := range map[string]string{"service name": service, "thumbprint algorithm": algorithm, "thumbprint": thumbprint} {
		if err := required(name, value); err != nil {
			return nil, err
		}
	}
	path := fmt.Sprintf("services/hostedservices/%s/certificates/%s-%s",
		url.PathEscape(service), url.PathEscape(algorithm), url.PathEscape(thumbprint))
	return get[compute.ServiceCertificateGetResponse](ctx, c, "GetServiceCertificate", path, nil)
}

// ListOperatingSystems lists the guest operating systems
func (c *Client) ListOperatingSystems(ctx context.Context) (*compute.OperatingSystemListResponse, error) {
	return get[compute.OperatingSystemListResponse](ctx, c, "ListOperatingSystems", "operatingsystems", nil)
}

// ListHostedServices lists the hosted services of the subscription
func (c *Client) ListHostedServices(ctx context.Context) (*compute.HostedServiceListResponse, error) {
	return get[compute.HostedServiceListResponse](ctx, c, "ListHostedServices", "services/hostedservices", nil)
}

// GetHostedService retrieves a hosted service with its extended properties
func (c *Client) GetHostedService(ctx context.Context, name string) (*compute.HostedServiceGetResponse, error) {
	if err := required("service name", name); err != nil {
		return nil, err
	}
	query := url.Values{"embed-detail": []string{"true"}}
	return get[compute.HostedServiceGetResponse](ctx, c, "GetHostedService", "services/hostedservices/"+url.PathEscape(name), query)
}

// DeleteHostedService deletes a hosted service and waits for the operation
func (c *Client) DeleteHostedService(ctx context.Context, name string) (*compute.OperationStatusResponse, error) {
	if err := required("service name", name); err != nil {
		return nil, err
	}
	status, err := c.submit(ctx, "DeleteHostedService", http.MethodDelete, "services/hostedservices/"+url.PathEscape(name), nil)
	return (*compute.OperationStatusResponse)(status), err
}

// ListDisks lists the disks in the subscription's image repository
func (c *Client) ListDisks(ctx context.Context) (*compute.VirtualMachineDiskListResponse, error) {
	return get[compute.VirtualMachineDiskListResponse](ctx, c, "ListDisks", "services/disks", nil)
}

// ListImages lists the OS images available to the subscription
func (c *Client) ListImages(ctx context.Context) (*compute.VirtualMachineImageListResponse, error) {
	return get[compute.VirtualMachineImageListResponse](ctx, c, "ListImages", "services/images", nil)
}

// ListStorageServices lists the storage accounts of the subscription
func (c *Client) ListStorageServices(ctx context.Context) (*storage.StorageServiceListResponse, error) {
	return get[storage.StorageServiceListResponse](ctx, c, "ListStorageServices", "services/storageservices", nil)
}

// GetStorageService retrieves one storage account
func (c *Client) GetStorageService(ctx context.Context, name string) (*storage.StorageServiceGetResponse, error) {
	if err := required("storage account name", name); err != nil {
		return nil, err
	}
	return get[storage.StorageServiceGetResponse](ctx, c, "GetStorageService", "services/storageservices/"+url.PathEscape(name), nil)
}

// GetStorageKeys retrieves the access keys of a storage account
func (c *Client) GetStorageKeys(ctx context.Context, name string) (*storage.StorageAccountGetKeysResponse, error) {
	if err := required("storage account name", name); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("services/storageservices/%s/keys", url.PathEscape(name))
	return get[storage.StorageAccountGetKeysResponse](ctx, c, "GetStorageKeys", path, nil)
}

// DeleteStorageService deletes a storage account and waits for the operation
func (c *Client) DeleteStorageService(ctx context.Context, name string) (*storage.OperationStatusResponse, error) {
	if err := required("storage account name", name); err != nil {
		return nil, err
	}
	status, err := c.submit(ctx, "DeleteStorageService", http.MethodDelete, "services/storageservices/"+url.PathEscape(name), nil)
	return (*storage.OperationStatusResponse)(status), err
}

// GetDeploymentBySlot retrieves the deployment in a slot of a hosted service
func (c *Client) GetDeploymentBySlot(ctx context.Context, service string, slot compute.DeploymentSlot) (*compute.DeploymentGetResponse, error) {
	if err := required("service name", service); err != nil {
		return nil, err
	}
	if err := required("deployment slot", string(slot)); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("services/hostedservices/%s/deploymentslots/%s", url.PathEscape(service), url.PathEscape(slot.String()))
	return get[compute.DeploymentGetResponse](ctx, c, "GetDeploymentBySlot", path, nil)
}

// ListExtensions lists the extensions of a hosted service. Public
// configurations arrive base64 encoded and are returned decoded.
func (c *Client) ListExtensions(ctx context.Context, service string) (*compute.HostedServiceListExtensionsResponse, error) {
	if err := required("service name", service); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("services/hostedservices/%s/extensions", url.PathEscape(service))
	resp, err := get[compute.HostedServiceListExtensionsResponse](ctx, c, "ListExtensions", path, nil)
	if err != nil {
		return nil, err
	}
	for i := range resp.Extensions {
		resp.Extensions[i].PublicConfiguration = decodePublicConfiguration(resp.Extensions[i].PublicConfiguration)
	}
	return resp, nil
}

// decodePublicConfiguration returns the decoded payload, or s unchanged when
// it is not base64
func decodePublicConfiguration(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return s
	}
	return string(decoded)
}

// CreateVirtualMachine adds a virtual machine role to a deployment and waits
// for the operation
func (c *Client) CreateVirtualMachine(ctx context.Context, service, deployment string, params *compute.VirtualMachineCreateParameters) (*compute.OperationStatusResponse, error) {
	if err := required("service name", service); err != nil {
		return nil, err
	}
	if err := required("deployment name", deployment); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, fmt.Errorf("%w: virtual machine parameters", ErrMissingParameter)
	}
	path := fmt.Sprintf("services/hostedservices/%s/deployments/%s/roles", url.PathEscape(service), url.PathEscape(deployment))
	status, err := c.submit(ctx, "CreateVirtualMachine", http.MethodPost, path, params)
	return (*compute.OperationStatusResponse)(status), err
}
