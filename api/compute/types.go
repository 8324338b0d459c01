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

// Package compute contains the current compute-service model: the flattened
// configuration set, roles, deployments and the compute response types.
package compute

import (
	"encoding/xml"
	"net/netip"

	"github.com/projectbeskar/smctl/api/management"
)

// ListenerType is the transport of a WinRM listener
type ListenerType string

const (
	ListenerTypeHTTP  ListenerType = "Http"
	ListenerTypeHTTPS ListenerType = "Https"
)

// WindowsRemoteManagementListener is a single WinRM listener
type WindowsRemoteManagementListener struct {
	ListenerType          ListenerType `xml:"Protocol"`
	CertificateThumbprint string       `xml:"CertificateThumbprint,omitempty"`
}

// WindowsRemoteManagementSettings groups the WinRM listeners of a guest
type WindowsRemoteManagementSettings struct {
	Listeners []WindowsRemoteManagementListener `xml:"Listeners>Listener"`
}

// LoadBalancerProbe is the health probe of a load-balanced endpoint set
type LoadBalancerProbe struct {
	Path     string `xml:"Path,omitempty"`
	Port     int    `xml:"Port"`
	Protocol string `xml:"Protocol"`
}

// InputEndpoint is an external endpoint of a role. A zero VirtualIPAddress
// means no address was assigned.
type InputEndpoint struct {
	LoadBalancedEndpointSetName string             `xml:"LoadBalancedEndpointSetName,omitempty"`
	LocalPort                   *int               `xml:"LocalPort,omitempty"`
	Name                        string             `xml:"Name"`
	Port                        *int               `xml:"Port,omitempty"`
	Protocol                    string             `xml:"Protocol"`
	VirtualIPAddress            netip.Addr         `xml:"Vip,omitempty"`
	EnableDirectServerReturn    *bool              `xml:"EnableDirectServerReturn,omitempty"`
	LoadBalancerProbe           *LoadBalancerProbe `xml:"LoadBalancerProbe,omitempty"`
}

// InstanceEndpoint is an endpoint exposed by a running instance
type InstanceEndpoint struct {
	Name             string     `xml:"Name"`
	VirtualIPAddress netip.Addr `xml:"Vip,omitempty"`
	Port             int        `xml:"PublicPort"`
	LocalPort        int        `xml:"LocalPort"`
	Protocol         string     `xml:"Protocol"`
}

// ConfigurationSet is the flattened configuration set. ConfigurationSetType
// selects which of the fields are meaningful.
type ConfigurationSet struct {
	ConfigurationSetType string `xml:"ConfigurationSetType"`

	// network
	InputEndpoints                []InputEndpoint `xml:"InputEndpoints>InputEndpoint,omitempty"`
	SubnetNames                   []string        `xml:"SubnetNames>SubnetName,omitempty"`
	StaticVirtualNetworkIPAddress string          `xml:"StaticVirtualNetworkIPAddress,omitempty"`

	// windows
	ComputerName              string                           `xml:"ComputerName,omitempty"`
	AdminPassword             string                           `xml:"AdminPassword,omitempty"`
	AdminUsername             string                           `xml:"AdminUsername,omitempty"`
	ResetPasswordOnFirstLogon *bool                            `xml:"ResetPasswordOnFirstLogon,omitempty"`
	EnableAutomaticUpdates    *bool                            `xml:"EnableAutomaticUpdates,omitempty"`
	TimeZone                  string                           `xml:"TimeZone,omitempty"`
	WindowsRemoteManagement   *WindowsRemoteManagementSettings `xml:"WinRM,omitempty"`

	// linux
	HostName                         string `xml:"HostName,omitempty"`
	UserName                         string `xml:"UserName,omitempty"`
	UserPassword                     string `xml:"UserPassword,omitempty"`
	DisableSSHPasswordAuthentication *bool  `xml:"DisableSshPasswordAuthentication,omitempty"`

	CustomData string `xml:"CustomData,omitempty"`
}

// DataVirtualHardDisk is an attached data disk
type DataVirtualHardDisk struct {
	HostCaching         string `xml:"HostCaching,omitempty"`
	DiskLabel           string `xml:"DiskLabel,omitempty"`
	DiskName            string `xml:"DiskName,omitempty"`
	Lun                 int    `xml:"Lun"`
	LogicalDiskSizeInGB int    `xml:"LogicalDiskSizeInGB,omitempty"`
	MediaLink           string `xml:"MediaLink,omitempty"`
	SourceMediaLink     string `xml:"SourceMediaLink,omitempty"`
}

// OSVirtualHardDisk is the operating system disk of a role
type OSVirtualHardDisk struct {
	HostCaching     string `xml:"HostCaching,omitempty"`
	DiskLabel       string `xml:"DiskLabel,omitempty"`
	DiskName        string `xml:"DiskName,omitempty"`
	MediaLink       string `xml:"MediaLink,omitempty"`
	SourceImageName string `xml:"SourceImageName,omitempty"`
	OperatingSystem string `xml:"OS,omitempty"`
}

// Role is a role definition within a deployment
type Role struct {
	RoleName             string                `xml:"RoleName"`
	RoleType             string                `xml:"RoleType,omitempty"`
	RoleSize             string                `xml:"RoleSize,omitempty"`
	AvailabilitySetName  string                `xml:"AvailabilitySetName,omitempty"`
	ProvisionGuestAgent  *bool                 `xml:"ProvisionGuestAgent,omitempty"`
	ConfigurationSets    []ConfigurationSet    `xml:"ConfigurationSets>ConfigurationSet,omitempty"`
	DataVirtualHardDisks []DataVirtualHardDisk `xml:"DataVirtualHardDisks>DataVirtualHardDisk,omitempty"`
	OSVirtualHardDisk    *OSVirtualHardDisk    `xml:"OSVirtualHardDisk,omitempty"`
}

// RoleInstance is a running instance of a role. A zero IPAddress means the
// instance has no address yet.
type RoleInstance struct {
	RoleName              string             `xml:"RoleName"`
	InstanceName          string             `xml:"InstanceName"`
	InstanceStatus        string             `xml:"InstanceStatus"`
	InstanceUpgradeDomain int                `xml:"InstanceUpgradeDomain"`
	InstanceFaultDomain   int                `xml:"InstanceFaultDomain"`
	InstanceSize          string             `xml:"InstanceSize"`
	IPAddress             netip.Addr         `xml:"IpAddress,omitempty"`
	InstanceEndpoints     []InstanceEndpoint `xml:"InstanceEndpoints>InstanceEndpoint,omitempty"`
	PowerState            string             `xml:"PowerState,omitempty"`
	HostName              string             `xml:"HostName,omitempty"`
}

// VirtualMachineCreateParameters is the body of an add-role request
type VirtualMachineCreateParameters struct {
	XMLName xml.Name `xml:"PersistentVMRole" json:"-"`

	RoleName             string                `xml:"RoleName"`
	RoleType             string                `xml:"RoleType"`
	RoleSize             string                `xml:"RoleSize,omitempty"`
	AvailabilitySetName  string                `xml:"AvailabilitySetName,omitempty"`
	ProvisionGuestAgent  *bool                 `xml:"ProvisionGuestAgent,omitempty"`
	ConfigurationSets    []ConfigurationSet    `xml:"ConfigurationSets>ConfigurationSet,omitempty"`
	DataVirtualHardDisks []DataVirtualHardDisk `xml:"DataVirtualHardDisks>DataVirtualHardDisk,omitempty"`
	OSVirtualHardDisk    *OSVirtualHardDisk    `xml:"OSVirtualHardDisk,omitempty"`
}

// OperationStatusResponse is the compute flavour of the operation envelope
type OperationStatusResponse management.OperationStatusResponse
