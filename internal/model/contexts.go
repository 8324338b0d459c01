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

package model

import (
	"time"

	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/extension"
)

// AffinityGroupService references a service placed in an affinity group
type AffinityGroupService struct {
	URL         string `json:"Url"`
	ServiceName string `json:"ServiceName"`
}

// AffinityGroupContext describes an affinity group
type AffinityGroupContext struct {
	OperationContext

	Name            string                 `json:"Name"`
	Label           string                 `json:"Label"`
	Description     string                 `json:"Description"`
	Location        string                 `json:"Location"`
	HostedServices  []AffinityGroupService `json:"HostedServices"`
	StorageServices []AffinityGroupService `json:"StorageServices"`
	Capabilities    []string               `json:"Capabilities"`
}

// LocationsContext describes a datacenter region
type LocationsContext struct {
	OperationContext

	Name              string   `json:"Name"`
	DisplayName       string   `json:"DisplayName"`
	AvailableServices []string `json:"AvailableServices"`
}

// CertificateContext describes a service certificate. Data is the base64
// certificate body, nil when the service returned none.
type CertificateContext struct {
	OperationContext

	ServiceName         string  `json:"ServiceName"`
	URL                 string  `json:"Url"`
	Thumbprint          string  `json:"Thumbprint"`
	ThumbprintAlgorithm string  `json:"ThumbprintAlgorithm"`
	Data                *string `json:"Data"`
}

// OSVersionsContext describes a guest OS version
type OSVersionsContext struct {
	OperationContext

	Family      int    `json:"Family"`
	FamilyLabel string `json:"FamilyLabel"`
	IsActive    bool   `json:"IsActive"`
	IsDefault   bool   `json:"IsDefault"`
	Label       string `json:"Label"`
	Version     string `json:"Version"`
}

// HostedServiceDetailedContext describes a hosted service
type HostedServiceDetailedContext struct {
	OperationContext

	ServiceName        string            `json:"ServiceName"`
	URL                string            `json:"Url"`
	Label              string            `json:"Label"`
	Description        string            `json:"Description"`
	Location           string            `json:"Location"`
	AffinityGroup      string            `json:"AffinityGroup"`
	Status             string            `json:"Status"`
	DateCreated        time.Time         `json:"DateCreated"`
	DateModified       time.Time         `json:"DateModified"`
	ExtendedProperties map[string]string `json:"ExtendedProperties"`
	ReverseDNSFqdn     string            `json:"ReverseDnsFqdn"`
}

// RoleReference names the role a disk is attached to
type RoleReference struct {
	HostedServiceName string `json:"HostedServiceName"`
	DeploymentName    string `json:"DeploymentName"`
	RoleName          string `json:"RoleName"`
}

// DiskContext describes a disk in the disk repository
type DiskContext struct {
	OperationContext

	AffinityGroup   string         `json:"AffinityGroup"`
	AttachedTo      *RoleReference `json:"AttachedTo"`
	IsCorrupted     bool           `json:"IsCorrupted"`
	Label           string         `json:"Label"`
	Location        string         `json:"Location"`
	DiskSizeInGB    int            `json:"DiskSizeInGB"`
	MediaLink       string         `json:"MediaLink"`
	DiskName        string         `json:"DiskName"`
	SourceImageName string         `json:"SourceImageName"`
	OS              string         `json:"OS"`
}

// OSImageContext describes an OS image. PublishedDate is nil when the
// service did not report one.
type OSImageContext struct {
	OperationContext

	AffinityGroup     string     `json:"AffinityGroup"`
	Category          string     `json:"Category"`
	Label             string     `json:"Label"`
	Location          string     `json:"Location"`
	LogicalSizeInGB   int        `json:"LogicalSizeInGB"`
	MediaLink         string     `json:"MediaLink"`
	ImageName         string     `json:"ImageName"`
	OS                string     `json:"OS"`
	Eula              string     `json:"Eula"`
	Description       string     `json:"Description"`
	ImageFamily       string     `json:"ImageFamily"`
	PublishedDate     *time.Time `json:"PublishedDate"`
	IsPremium         bool       `json:"IsPremium"`
	IconURI           string     `json:"IconUri"`
	PublisherName     string     `json:"PublisherName"`
	RecommendedVMSize string     `json:"RecommendedVMSize"`
}

// StorageServicePropertiesOperationContext describes a storage account
type StorageServicePropertiesOperationContext struct {
	OperationContext

	StorageAccountName        string   `json:"StorageAccountName"`
	StorageAccountDescription string   `json:"StorageAccountDescription"`
	AffinityGroup             string   `json:"AffinityGroup"`
	Location                  string   `json:"Location"`
	Label                     string   `json:"Label"`
	StorageAccountStatus      string   `json:"StorageAccountStatus"`
	Endpoints                 []string `json:"Endpoints"`
	GeoReplicationEnabled     bool     `json:"GeoReplicationEnabled"`
	GeoPrimaryLocation        string   `json:"GeoPrimaryLocation"`
	GeoSecondaryLocation      string   `json:"GeoSecondaryLocation"`
	StatusOfPrimary           string   `json:"StatusOfPrimary"`
	StatusOfSecondary         string   `json:"StatusOfSecondary"`
}

// StorageServiceKeyOperationContext carries the access keys of a storage account
type StorageServiceKeyOperationContext struct {
	OperationContext

	StorageAccountName string `json:"StorageAccountName"`
	Primary            string `json:"Primary"`
	Secondary          string `json:"Secondary"`
}

// VirtualIP is a public address of a deployment
type VirtualIP struct {
	Address         string `json:"Address"`
	Name            string `json:"Name"`
	IsDNSProgrammed bool   `json:"IsDnsProgrammed"`
}

// DeploymentInfoContext describes a deployment
type DeploymentInfoContext struct {
	OperationContext

	ServiceName               string             `json:"ServiceName"`
	Slot                      string             `json:"Slot"`
	DeploymentName            string             `json:"DeploymentName"`
	URL                       string             `json:"Url"`
	Status                    string             `json:"Status"`
	Label                     string             `json:"Label"`
	DeploymentID              string             `json:"DeploymentId"`
	Configuration             string             `json:"Configuration"`
	RoleInstanceList          []pvm.RoleInstance `json:"RoleInstanceList"`
	UpgradeDomainCount        int                `json:"UpgradeDomainCount"`
	CurrentUpgradeDomain      int                `json:"CurrentUpgradeDomain"`
	CurrentUpgradeDomainState string             `json:"CurrentUpgradeDomainState"`
	UpgradeType               string             `json:"UpgradeType"`
	SdkVersion                string             `json:"SdkVersion"`
	Locked                    bool               `json:"Locked"`
	RollbackAllowed           bool               `json:"RollbackAllowed"`
	CreatedTime               time.Time          `json:"CreatedTime"`
	LastModifiedTime          time.Time          `json:"LastModifiedTime"`
	VNetName                  string             `json:"VNetName"`
	VirtualIPs                []VirtualIP        `json:"VirtualIPs"`
}

// ExtensionContext describes an extension enabled on a role
type ExtensionContext struct {
	OperationContext

	ServiceName       string         `json:"ServiceName"`
	Extension         string         `json:"Extension"`
	ProviderNameSpace string         `json:"ProviderNameSpace"`
	ID                string         `json:"Id"`
	Version           string         `json:"Version"`
	Role              extension.Role `json:"Role"`
}

// RemoteDesktopExtensionContext describes a remote desktop extension
type RemoteDesktopExtensionContext struct {
	ExtensionContext

	UserName   string `json:"UserName"`
	Expiration string `json:"Expiration"`
}

// PersistentVMRoleContext describes a virtual machine role in its legacy shape
type PersistentVMRoleContext struct {
	OperationContext

	ServiceName           string           `json:"ServiceName"`
	DeploymentName        string           `json:"DeploymentName"`
	Name                  string           `json:"Name"`
	AvailabilitySetName   string           `json:"AvailabilitySetName"`
	InstanceName          string           `json:"InstanceName"`
	InstanceSize          string           `json:"InstanceSize"`
	InstanceStatus        string           `json:"InstanceStatus"`
	InstanceUpgradeDomain int              `json:"InstanceUpgradeDomain"`
	InstanceFaultDomain   int              `json:"InstanceFaultDomain"`
	IPAddress             string           `json:"IpAddress"`
	PowerState            string           `json:"PowerState"`
	HostName              string           `json:"HostName"`
	VM                    pvm.PersistentVM `json:"VM"`
}
