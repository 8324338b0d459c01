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

package compute

import (
	"encoding/base64"
	"encoding/xml"
	"net/netip"
	"time"

	"github.com/projectbeskar/smctl/api/management"
)

// DeploymentSlot identifies the production or staging slot of a service
type DeploymentSlot string

const (
	DeploymentSlotProduction DeploymentSlot = "Production"
	DeploymentSlotStaging    DeploymentSlot = "Staging"
)

// String implements fmt.Stringer
func (s DeploymentSlot) String() string {
	return string(s)
}

// Base64Data is binary content carried base64 encoded on the wire. An absent
// or empty element decodes to nil.
type Base64Data []byte

// MarshalText implements encoding.TextMarshaler
func (d Base64Data) MarshalText() ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(d)))
	base64.StdEncoding.Encode(out, d)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Base64Data) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = nil
		return nil
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(out, text)
	if err != nil {
		return err
	}
	*d = out[:n]
	return nil
}

// ExtendedProperty is a free-form name/value pair on a hosted service
type ExtendedProperty struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

// HostedServiceProperties are the descriptive properties of a hosted service
type HostedServiceProperties struct {
	Description        string             `xml:"Description"`
	AffinityGroup      string             `xml:"AffinityGroup,omitempty"`
	Location           string             `xml:"Location,omitempty"`
	Label              string             `xml:"Label"`
	Status             string             `xml:"Status"`
	DateCreated        time.Time          `xml:"DateCreated"`
	DateLastModified   time.Time          `xml:"DateLastModified"`
	ExtendedProperties []ExtendedProperty `xml:"ExtendedProperties>ExtendedProperty,omitempty"`
	ReverseDNSFqdn     string             `xml:"ReverseDnsFqdn,omitempty"`
}

// HostedServiceGetResponse describes a single hosted service
type HostedServiceGetResponse struct {
	XMLName xml.Name `xml:"HostedService" json:"-"`
	management.OperationResponse

	ServiceName string                  `xml:"ServiceName"`
	URI         string                  `xml:"Url"`
	Properties  HostedServiceProperties `xml:"HostedServiceProperties"`
}

// HostedService is one entry of a hosted service listing
type HostedService struct {
	ServiceName string                  `xml:"ServiceName"`
	URI         string                  `xml:"Url"`
	Properties  HostedServiceProperties `xml:"HostedServiceProperties"`
}

// HostedServiceListResponse lists the hosted services of a subscription
type HostedServiceListResponse struct {
	XMLName xml.Name `xml:"HostedServices" json:"-"`
	management.OperationResponse

	HostedServices []HostedService `xml:"HostedService"`
}

// UpgradeStatus reports an in-flight deployment upgrade
type UpgradeStatus struct {
	UpgradeType               string `xml:"UpgradeType"`
	CurrentUpgradeDomainState string `xml:"CurrentUpgradeDomainState"`
	CurrentUpgradeDomain      int    `xml:"CurrentUpgradeDomain"`
}

// VirtualIPAddress is a public address assigned to a deployment
type VirtualIPAddress struct {
	Address         netip.Addr `xml:"Address"`
	Name            string     `xml:"Name,omitempty"`
	IsDNSProgrammed bool       `xml:"IsDnsProgrammed"`
}

// ExtensionReference points at an extension from the extension configuration
type ExtensionReference struct {
	ID    string `xml:"Id"`
	State string `xml:"State,omitempty"`
}

// NamedRole lists the extensions enabled for a single role
type NamedRole struct {
	RoleName   string               `xml:"RoleName"`
	Extensions []ExtensionReference `xml:"Extensions>Extension"`
}

// ExtensionConfiguration is the per-deployment extension enablement
type ExtensionConfiguration struct {
	AllRoles   []ExtensionReference `xml:"AllRoles>Extension"`
	NamedRoles []NamedRole          `xml:"NamedRoles>Role"`
}

// DeploymentGetResponse describes a deployment in a slot
type DeploymentGetResponse struct {
	XMLName xml.Name `xml:"Deployment" json:"-"`
	management.OperationResponse

	Name                   string                  `xml:"Name"`
	DeploymentSlot         DeploymentSlot          `xml:"DeploymentSlot"`
	PrivateID              string                  `xml:"PrivateID"`
	Status                 string                  `xml:"Status"`
	Label                  string                  `xml:"Label"`
	URI                    string                  `xml:"Url"`
	Configuration          string                  `xml:"Configuration"`
	RoleInstances          []RoleInstance          `xml:"RoleInstanceList>RoleInstance"`
	UpgradeStatus          *UpgradeStatus          `xml:"UpgradeStatus,omitempty"`
	UpgradeDomainCount     int                     `xml:"UpgradeDomainCount"`
	Roles                  []Role                  `xml:"RoleList>Role"`
	SdkVersion             string                  `xml:"SdkVersion"`
	Locked                 bool                    `xml:"Locked"`
	RollbackAllowed        string                  `xml:"RollbackAllowed"`
	CreatedTime            time.Time               `xml:"CreatedTime"`
	LastModifiedTime       time.Time               `xml:"LastModifiedTime"`
	VirtualNetworkName     string                  `xml:"VirtualNetworkName,omitempty"`
	VirtualIPAddresses     []VirtualIPAddress      `xml:"VirtualIPs>VirtualIP"`
	ExtensionConfiguration *ExtensionConfiguration `xml:"ExtensionConfiguration,omitempty"`
}

// VirtualMachineDiskUsageDetails names the role a disk is attached to
type VirtualMachineDiskUsageDetails struct {
	HostedServiceName string `xml:"HostedServiceName"`
	DeploymentName    string `xml:"DeploymentName"`
	RoleName          string `xml:"RoleName"`
}

// VirtualMachineDisk is a disk in the subscription disk repository
type VirtualMachineDisk struct {
	AffinityGroup       string                          `xml:"AffinityGroup,omitempty"`
	IsCorrupted         bool                            `xml:"IsCorrupted"`
	Label               string                          `xml:"Label"`
	Location            string                          `xml:"Location"`
	LogicalSizeInGB     int                             `xml:"LogicalDiskSizeInGB"`
	MediaLinkURI        string                          `xml:"MediaLink"`
	Name                string                          `xml:"Name"`
	OperatingSystemType string                          `xml:"OS"`
	SourceImageName     string                          `xml:"SourceImageName,omitempty"`
	UsageDetails        *VirtualMachineDiskUsageDetails `xml:"AttachedTo,omitempty"`
}

// VirtualMachineDiskListResponse lists the disks of a subscription
type VirtualMachineDiskListResponse struct {
	XMLName xml.Name `xml:"Disks" json:"-"`
	management.OperationResponse

	Disks []VirtualMachineDisk `xml:"Disk"`
}

// VirtualMachineImage is an OS image available to the subscription
type VirtualMachineImage struct {
	AffinityGroup       string    `xml:"AffinityGroup,omitempty"`
	Category            string    `xml:"Category"`
	Label               string    `xml:"Label"`
	Location            string    `xml:"Location"`
	LogicalSizeInGB     int       `xml:"LogicalSizeInGB"`
	MediaLinkURI        string    `xml:"MediaLink"`
	Name                string    `xml:"Name"`
	OperatingSystemType string    `xml:"OS"`
	Eula                string    `xml:"Eula,omitempty"`
	Description         string    `xml:"Description,omitempty"`
	ImageFamily         string    `xml:"ImageFamily,omitempty"`
	PublishedDate       time.Time `xml:"PublishedDate"`
	IsPremium           bool      `xml:"IsPremium"`
	PublisherName       string    `xml:"PublisherName,omitempty"`
	RecommendedVMSize   string    `xml:"RecommendedVMSize,omitempty"`
	SmallIconURI        string    `xml:"SmallIconUri,omitempty"`
	IconURI             string    `xml:"IconUri,omitempty"`
}

// VirtualMachineImageListResponse lists OS images
type VirtualMachineImageListResponse struct {
	XMLName xml.Name `xml:"Images" json:"-"`
	management.OperationResponse

	Images []VirtualMachineImage `xml:"OSImage"`
}

// ServiceCertificateGetResponse carries the public data of one certificate
type ServiceCertificateGetResponse struct {
	XMLName xml.Name `xml:"Certificate" json:"-"`
	management.OperationResponse

	Data Base64Data `xml:"Data,omitempty"`
}

// Certificate is one entry of a service certificate listing
type Certificate struct {
	CertificateURI      string     `xml:"CertificateUrl"`
	Thumbprint          string     `xml:"Thumbprint"`
	ThumbprintAlgorithm string     `xml:"ThumbprintAlgorithm"`
	Data                Base64Data `xml:"Data,omitempty"`
}

// ServiceCertificateListResponse lists the certificates of a hosted service
type ServiceCertificateListResponse struct {
	XMLName xml.Name `xml:"Certificates" json:"-"`
	management.OperationResponse

	Certificates []Certificate `xml:"Certificate"`
}

// OperatingSystem is a guest OS version offered for cloud services
type OperatingSystem struct {
	Family      int    `xml:"Family"`
	FamilyLabel string `xml:"FamilyLabel"`
	IsActive    bool   `xml:"IsActive"`
	IsDefault   bool   `xml:"IsDefault"`
	Label       string `xml:"Label"`
	Version     string `xml:"Version"`
}

// OperatingSystemListResponse lists guest OS versions
type OperatingSystemListResponse struct {
	XMLName xml.Name `xml:"OperatingSystems" json:"-"`
	management.OperationResponse

	OperatingSystems []OperatingSystem `xml:"OperatingSystem"`
}

// Extension is an extension installed on a hosted service. PublicConfiguration
// is opaque text, usually XML or JSON.
type Extension struct {
	ProviderNamespace   string `xml:"ProviderNameSpace"`
	Type                string `xml:"Type"`
	ID                  string `xml:"Id"`
	Version             string `xml:"Version"`
	Thumbprint          string `xml:"Thumbprint,omitempty"`
	ThumbprintAlgorithm string `xml:"ThumbprintAlgorithm,omitempty"`
	PublicConfiguration string `xml:"PublicConfiguration,omitempty"`
	IsJSONExtension     bool   `xml:"IsJsonExtension"`
}

// HostedServiceListExtensionsResponse lists the extensions of a hosted service
type HostedServiceListExtensionsResponse struct {
	XMLName xml.Name `xml:"Extensions" json:"-"`
	management.OperationResponse

	Extensions []Extension `xml:"Extension"`
}
