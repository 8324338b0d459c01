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

// Package pvm contains the legacy persistent-VM model. Configuration sets are
// a tagged variant: every concrete set reports its own ConfigurationSetType.
package pvm

// Configuration set type tags
const (
	NetworkConfigurationSetType             = "NetworkConfiguration"
	WindowsProvisioningConfigurationSetType = "WindowsProvisioningConfiguration"
	LinuxProvisioningConfigurationSetType   = "LinuxProvisioningConfiguration"
	ProvisioningConfigurationSetType        = "ProvisioningConfiguration"
)

// ConfigurationSet is implemented by every legacy configuration set variant
type ConfigurationSet interface {
	ConfigurationSetType() string
}

// NetworkConfigurationSet carries endpoints and subnet membership of a role
type NetworkConfigurationSet struct {
	InputEndpoints                []InputEndpoint `yaml:"InputEndpoints,omitempty"`
	SubnetNames                   []string        `yaml:"SubnetNames,omitempty"`
	StaticVirtualNetworkIPAddress string          `yaml:"StaticVirtualNetworkIPAddress,omitempty"`
}

// ConfigurationSetType implements ConfigurationSet
func (*NetworkConfigurationSet) ConfigurationSetType() string {
	return NetworkConfigurationSetType
}

// ProvisioningConfigurationSet holds the fields shared by OS provisioning sets
type ProvisioningConfigurationSet struct {
	CustomData string `yaml:"CustomData,omitempty"`
}

// ConfigurationSetType implements ConfigurationSet
func (*ProvisioningConfigurationSet) ConfigurationSetType() string {
	return ProvisioningConfigurationSetType
}

// WindowsProvisioningConfigurationSet provisions a Windows guest
type WindowsProvisioningConfigurationSet struct {
	ProvisioningConfigurationSet `yaml:",inline"`

	ComputerName              string              `yaml:"ComputerName,omitempty"`
	AdminUsername             string              `yaml:"AdminUsername,omitempty"`
	AdminPassword             string              `yaml:"AdminPassword,omitempty"`
	ResetPasswordOnFirstLogon *bool               `yaml:"ResetPasswordOnFirstLogon,omitempty"`
	EnableAutomaticUpdates    *bool               `yaml:"EnableAutomaticUpdates,omitempty"`
	TimeZone                  string              `yaml:"TimeZone,omitempty"`
	WinRM                     *WinRmConfiguration `yaml:"WinRM,omitempty"`
}

// ConfigurationSetType implements ConfigurationSet
func (*WindowsProvisioningConfigurationSet) ConfigurationSetType() string {
	return WindowsProvisioningConfigurationSetType
}

// LinuxProvisioningConfigurationSet provisions a Linux guest
type LinuxProvisioningConfigurationSet struct {
	ProvisioningConfigurationSet `yaml:",inline"`

	HostName                         string `yaml:"HostName,omitempty"`
	UserName                         string `yaml:"UserName,omitempty"`
	UserPassword                     string `yaml:"UserPassword,omitempty"`
	DisableSSHPasswordAuthentication *bool  `yaml:"DisableSSHPasswordAuthentication,omitempty"`
}

// ConfigurationSetType implements ConfigurationSet
func (*LinuxProvisioningConfigurationSet) ConfigurationSetType() string {
	return LinuxProvisioningConfigurationSetType
}

// WinRmConfiguration lists the remote management listeners of a Windows guest
type WinRmConfiguration struct {
	Listeners []WinRmListenerProperties `yaml:"Listeners,omitempty"`
}

// WinRmListenerProperties describes one listener. Protocol is "Http" or "Https".
type WinRmListenerProperties struct {
	Protocol              string `yaml:"Protocol"`
	CertificateThumbprint string `yaml:"CertificateThumbprint,omitempty"`
}

// LoadBalancerProbe describes the health probe of a load-balanced endpoint set
type LoadBalancerProbe struct {
	Path     string `yaml:"Path,omitempty"`
	Port     int    `yaml:"Port"`
	Protocol string `yaml:"Protocol"`
}

// InputEndpoint is an external endpoint. Vip is the formatted virtual IP.
type InputEndpoint struct {
	LoadBalancedEndpointSetName string             `yaml:"LoadBalancedEndpointSetName,omitempty"`
	LocalPort                   *int               `yaml:"LocalPort,omitempty"`
	Name                        string             `yaml:"Name"`
	Port                        *int               `yaml:"Port,omitempty"`
	Protocol                    string             `yaml:"Protocol"`
	Vip                         string             `yaml:"Vip,omitempty"`
	EnableDirectServerReturn    *bool              `yaml:"EnableDirectServerReturn,omitempty"`
	LoadBalancerProbe           *LoadBalancerProbe `yaml:"LoadBalancerProbe,omitempty"`
}

// InstanceEndpoint is an endpoint exposed by a running role instance
type InstanceEndpoint struct {
	Name      string `yaml:"Name"`
	Vip       string `yaml:"Vip,omitempty"`
	Port      int    `yaml:"Port"`
	LocalPort int    `yaml:"LocalPort"`
	Protocol  string `yaml:"Protocol"`
}

// DataVirtualHardDisk is an attached data disk
type DataVirtualHardDisk struct {
	HostCaching         string `yaml:"HostCaching,omitempty"`
	DiskLabel           string `yaml:"DiskLabel,omitempty"`
	DiskName            string `yaml:"DiskName,omitempty"`
	Lun                 int    `yaml:"Lun"`
	LogicalDiskSizeInGB int    `yaml:"LogicalDiskSizeInGB,omitempty"`
	MediaLink           string `yaml:"MediaLink,omitempty"`
	SourceMediaLink     string `yaml:"SourceMediaLink,omitempty"`
}

// OSVirtualHardDisk is the operating system disk of a role
type OSVirtualHardDisk struct {
	HostCaching     string `yaml:"HostCaching,omitempty"`
	DiskLabel       string `yaml:"DiskLabel,omitempty"`
	DiskName        string `yaml:"DiskName,omitempty"`
	MediaLink       string `yaml:"MediaLink,omitempty"`
	SourceImageName string `yaml:"SourceImageName,omitempty"`
	OS              string `yaml:"OS,omitempty"`
}

// PersistentVM is the legacy description of a virtual machine role
type PersistentVM struct {
	RoleName             string                `yaml:"RoleName"`
	RoleSize             string                `yaml:"RoleSize,omitempty"`
	AvailabilitySetName  string                `yaml:"AvailabilitySetName,omitempty"`
	ProvisionGuestAgent  *bool                 `yaml:"ProvisionGuestAgent,omitempty"`
	ConfigurationSets    ConfigurationSetList  `yaml:"ConfigurationSets,omitempty"`
	DataVirtualHardDisks []DataVirtualHardDisk `yaml:"DataVirtualHardDisks,omitempty"`
	OSVirtualHardDisk    *OSVirtualHardDisk    `yaml:"OSVirtualHardDisk,omitempty"`
}

// RoleInstance is the legacy view of a running role instance
type RoleInstance struct {
	RoleName              string             `yaml:"RoleName"`
	InstanceName          string             `yaml:"InstanceName"`
	InstanceStatus        string             `yaml:"InstanceStatus,omitempty"`
	InstanceUpgradeDomain int                `yaml:"InstanceUpgradeDomain"`
	InstanceFaultDomain   int                `yaml:"InstanceFaultDomain"`
	InstanceSize          string             `yaml:"InstanceSize,omitempty"`
	IPAddress             string             `yaml:"IPAddress,omitempty"`
	InstanceEndpoints     []InstanceEndpoint `yaml:"InstanceEndpoints,omitempty"`
	PowerState            string             `yaml:"PowerState,omitempty"`
	HostName              string             `yaml:"HostName,omitempty"`
}
