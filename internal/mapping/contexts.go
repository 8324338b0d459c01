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

package mapping

import (
	"encoding/base64"
	"slices"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/api/storage"
	"github.com/projectbeskar/smctl/internal/model"
)

// registerContexts registers the response to context rules
func registerContexts(b *Builder) {
	// affinity groups
	Register(b, affinityGroupGetToContext)
	Register(b, affinityGroupToContext)
	Register(b, hostedServiceRefToService)
	Register(b, storageServiceRefToService)

	// locations
	Register(b, locationToContext)

	// certificates
	Register(b, certificateGetToContext)
	Register(b, certificateToContext)

	// operating systems
	Register(b, operatingSystemToContext)

	// hosted services
	Register(b, hostedServiceGetToContext)
	Register(b, hostedServicePropertiesToContext)
	Register(b, hostedServiceToContext)

	// disks and images
	Register(b, diskToContext)
	Register(b, diskUsageToRoleReference)
	Register(b, imageToContext)

	// storage
	Register(b, storageServiceGetToContext)
	Register(b, storagePropertiesToContext)
	Register(b, storageServiceToContext)
	Register(b, storageKeysToContext)

	// deployments
	Register(b, deploymentToContext)
	Register(b, virtualIPToContext)

	// extensions and roles
	Register(b, extensionToContext)
	Register(b, extensionToRemoteDesktopContext)
	Register(b, roleInstanceToRoleContext)
	Register(b, roleToRoleContext)
}

func affinityGroupGetToContext(src management.AffinityGroupGetResponse, dst *model.AffinityGroupContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)

	hosted, err := mapEach(src.HostedServices, hostedServiceRefToService)
	if err != nil {
		return err
	}
	stored, err := mapEach(src.StorageServices, storageServiceRefToService)
	if err != nil {
		return err
	}

	dst.Name = src.Name
	dst.Label = src.Label
	dst.Description = src.Description
	dst.Location = src.Location
	dst.HostedServices = hosted
	dst.StorageServices = stored
	dst.Capabilities = slices.Clone(src.Capabilities)
	return nil
}

func affinityGroupToContext(src management.AffinityGroup, dst *model.AffinityGroupContext) error {
	dst.Name = src.Name
	dst.Label = src.Label
	dst.Description = src.Description
	dst.Location = src.Location
	dst.Capabilities = slices.Clone(src.Capabilities)
	return nil
}

func hostedServiceRefToService(src management.HostedServiceReference, dst *model.AffinityGroupService) error {
	dst.ServiceName = src.ServiceName
	dst.URL = src.URI
	return nil
}

func storageServiceRefToService(src management.StorageServiceReference, dst *model.AffinityGroupService) error {
	dst.ServiceName = src.ServiceName
	dst.URL = src.URI
	return nil
}

func locationToContext(src management.Location, dst *model.LocationsContext) error {
	dst.Name = src.Name
	dst.DisplayName = src.DisplayName
	dst.AvailableServices = slices.Clone(src.AvailableServices)
	return nil
}

// encodeData renders certificate bytes as base64, keeping nil distinct from empty
func encodeData(data []byte) *string {
	if data == nil {
		return nil
	}
	s := base64.StdEncoding.EncodeToString(data)
	return &s
}

func certificateGetToContext(src compute.ServiceCertificateGetResponse, dst *model.CertificateContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)
	dst.Data = encodeData(src.Data)
	return nil
}

func certificateToContext(src compute.Certificate, dst *model.CertificateContext) error {
	dst.URL = src.CertificateURI
	dst.Thumbprint = src.Thumbprint
	dst.ThumbprintAlgorithm = src.ThumbprintAlgorithm
	dst.Data = encodeData(src.Data)
	return nil
}

func operatingSystemToContext(src compute.OperatingSystem, dst *model.OSVersionsContext) error {
	dst.Family = src.Family
	dst.FamilyLabel = src.FamilyLabel
	dst.IsActive = src.IsActive
	dst.IsDefault = src.IsDefault
	dst.Label = src.Label
	dst.Version = src.Version
	return nil
}

func hostedServiceGetToContext(src compute.HostedServiceGetResponse, dst *model.HostedServiceDetailedContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)
	dst.ServiceName = src.ServiceName
	dst.URL = src.URI
	return hostedServicePropertiesToContext(src.Properties, dst)
}

func hostedServiceToContext(src compute.HostedService, dst *model.HostedServiceDetailedContext) error {
	dst.ServiceName = src.ServiceName
	dst.URL = src.URI
	return hostedServicePropertiesToContext(src.Properties, dst)
}

func hostedServicePropertiesToContext(src compute.HostedServiceProperties, dst *model.HostedServiceDetailedContext) error {
	dst.Description = src.Description
	dst.AffinityGroup = src.AffinityGroup
	dst.Location = src.Location
	dst.Label = src.Label
	dst.Status = src.Status
	dst.DateCreated = src.DateCreated
	dst.DateModified = src.DateLastModified
	dst.ReverseDNSFqdn = src.ReverseDNSFqdn

	dst.ExtendedProperties = nil
	if src.ExtendedProperties != nil {
		dst.ExtendedProperties = make(map[string]string, len(src.ExtendedProperties))
		for _, p := range src.ExtendedProperties {
			dst.ExtendedProperties[p.Name] = p.Value
		}
	}
	return nil
}

func diskToContext(src compute.VirtualMachineDisk, dst *model.DiskContext) error {
	dst.AffinityGroup = src.AffinityGroup
	dst.IsCorrupted = src.IsCorrupted
	dst.Label = src.Label
	dst.Location = src.Location
	dst.DiskSizeInGB = src.LogicalSizeInGB
	dst.MediaLink = src.MediaLinkURI
	dst.DiskName = src.Name
	dst.OS = src.OperatingSystemType
	dst.SourceImageName = src.SourceImageName

	dst.AttachedTo = nil
	if src.UsageDetails != nil {
		ref := &model.RoleReference{}
		if err := diskUsageToRoleReference(*src.UsageDetails, ref); err != nil {
			return err
		}
		dst.AttachedTo = ref
	}
	return nil
}

func diskUsageToRoleReference(src compute.VirtualMachineDiskUsageDetails, dst *model.RoleReference) error {
	dst.HostedServiceName = src.HostedServiceName
	dst.DeploymentName = src.DeploymentName
	dst.RoleName = src.RoleName
	return nil
}

func imageToContext(src compute.VirtualMachineImage, dst *model.OSImageContext) error {
	dst.AffinityGroup = src.AffinityGroup
	dst.Category = src.Category
	dst.Label = src.Label
	dst.Location = src.Location
	dst.LogicalSizeInGB = src.LogicalSizeInGB
	dst.MediaLink = src.MediaLinkURI
	dst.ImageName = src.Name
	dst.OS = src.OperatingSystemType
	dst.Eula = src.Eula
	dst.Description = src.Description
	dst.ImageFamily = src.ImageFamily
	dst.IsPremium = src.IsPremium
	dst.IconURI = src.SmallIconURI
	dst.PublisherName = src.PublisherName
	dst.RecommendedVMSize = src.RecommendedVMSize

	dst.PublishedDate = nil
	if !src.PublishedDate.IsZero() {
		published := src.PublishedDate
		dst.PublishedDate = &published
	}
	return nil
}

func storageServiceGetToContext(src storage.StorageServiceGetResponse, dst *model.StorageServicePropertiesOperationContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)
	dst.StorageAccountName = src.ServiceName
	return storagePropertiesToContext(src.Properties, dst)
}

func storageServiceToContext(src storage.StorageService, dst *model.StorageServicePropertiesOperationContext) error {
	dst.StorageAccountName = src.ServiceName
	return storagePropertiesToContext(src.Properties, dst)
}

func storagePropertiesToContext(src storage.StorageServiceProperties, dst *model.StorageServicePropertiesOperationContext) error {
	dst.StorageAccountDescription = src.Description
	dst.AffinityGroup = src.AffinityGroup
	dst.Location = src.Location
	dst.Label = src.Label
	dst.StorageAccountStatus = src.Status
	dst.Endpoints = slices.Clone(src.Endpoints)
	dst.GeoReplicationEnabled = src.GeoReplicationEnabled
	dst.GeoPrimaryLocation = src.GeoPrimaryRegion
	dst.GeoSecondaryLocation = src.GeoSecondaryRegion
	dst.StatusOfPrimary = src.StatusOfGeoPrimaryRegion
	dst.StatusOfSecondary = src.StatusOfGeoSecondaryRegion
	return nil
}

func storageKeysToContext(src storage.StorageAccountGetKeysResponse, dst *model.StorageServiceKeyOperationContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)
	dst.Primary = src.PrimaryKey
	dst.Secondary = src.SecondaryKey
	return nil
}

func deploymentToContext(src compute.DeploymentGetResponse, dst *model.DeploymentInfoContext) error {
	applyResponse(&dst.OperationContext, src.OperationResponse)

	instances, err := mapEach(src.RoleInstances, roleInstanceToLegacy)
	if err != nil {
		return err
	}
	vips, err := mapEach(src.VirtualIPAddresses, virtualIPToContext)
	if err != nil {
		return err
	}

	dst.Slot = src.DeploymentSlot.String()
	dst.DeploymentName = src.Name
	dst.URL = src.URI
	dst.Status = src.Status
	dst.Label = src.Label
	dst.DeploymentID = src.PrivateID
	dst.Configuration = src.Configuration
	dst.RoleInstanceList = instances
	dst.UpgradeDomainCount = src.UpgradeDomainCount
	dst.SdkVersion = src.SdkVersion
	dst.Locked = src.Locked
	dst.RollbackAllowed = src.RollbackAllowed != ""
	dst.CreatedTime = src.CreatedTime
	dst.LastModifiedTime = src.LastModifiedTime
	dst.VNetName = src.VirtualNetworkName
	dst.VirtualIPs = vips

	var upgrade compute.UpgradeStatus
	if src.UpgradeStatus != nil {
		upgrade = *src.UpgradeStatus
	}
	dst.CurrentUpgradeDomain = upgrade.CurrentUpgradeDomain
	dst.CurrentUpgradeDomainState = upgrade.CurrentUpgradeDomainState
	dst.UpgradeType = upgrade.UpgradeType
	return nil
}

func virtualIPToContext(src compute.VirtualIPAddress, dst *model.VirtualIP) error {
	dst.Address = FormatVirtualIP(src.Address)
	dst.Name = src.Name
	dst.IsDNSProgrammed = src.IsDNSProgrammed
	return nil
}

func extensionToContext(src compute.Extension, dst *model.ExtensionContext) error {
	dst.Extension = src.Type
	dst.ProviderNameSpace = src.ProviderNamespace
	dst.ID = src.ID
	dst.Version = src.Version
	return nil
}

func extensionToRemoteDesktopContext(src compute.Extension, dst *model.RemoteDesktopExtensionContext) error {
	return extensionToContext(src, &dst.ExtensionContext)
}

// roleInstanceToRoleContext fills the instance half of a VM role context;
// the VM itself comes from the matching compute.Role
func roleInstanceToRoleContext(src compute.RoleInstance, dst *model.PersistentVMRoleContext) error {
	dst.Name = src.RoleName
	dst.InstanceName = src.InstanceName
	dst.InstanceSize = src.InstanceSize
	dst.InstanceStatus = src.InstanceStatus
	dst.InstanceUpgradeDomain = src.InstanceUpgradeDomain
	dst.InstanceFaultDomain = src.InstanceFaultDomain
	dst.IPAddress = FormatVirtualIP(src.IPAddress)
	dst.PowerState = src.PowerState
	dst.HostName = src.HostName
	return nil
}

// roleToRoleContext fills the VM half of a VM role context
func roleToRoleContext(src compute.Role, dst *model.PersistentVMRoleContext) error {
	var vm pvm.PersistentVM
	if err := roleToPersistentVM(src, &vm); err != nil {
		return err
	}
	dst.Name = src.RoleName
	dst.AvailabilitySetName = src.AvailabilitySetName
	dst.VM = vm
	return nil
}
