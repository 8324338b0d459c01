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
	"slices"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/util"
)

// registerCurrentToLegacy registers the compute to persistent-VM rules
func registerCurrentToLegacy(b *Builder) {
	Register(b, inputEndpointToLegacy)
	Register(b, instanceEndpointToLegacy)
	Register(b, instanceEndpointsToLegacy)
	Register(b, dataDiskToLegacy)
	Register(b, osDiskToLegacy)
	Register(b, listenerToLegacy)
	Register(b, listenersToLegacy)
	Register(b, winRMToLegacy)
	Register(b, configurationSetToLegacy)
	Register(b, networkSetToLegacy)
	Register(b, windowsSetToLegacy)
	Register(b, linuxSetToLegacy)
	Register(b, provisioningSetToLegacy)
	Register(b, configurationSetsToLegacy)
	Register(b, roleToPersistentVM)
	Register(b, roleInstanceToLegacy)
}

func inputEndpointToLegacy(src compute.InputEndpoint, dst *pvm.InputEndpoint) error {
	dst.LoadBalancedEndpointSetName = src.LoadBalancedEndpointSetName
	dst.LocalPort = util.ClonePtr(src.LocalPort)
	dst.Name = src.Name
	dst.Port = util.ClonePtr(src.Port)
	dst.Protocol = src.Protocol
	dst.Vip = FormatVirtualIP(src.VirtualIPAddress)
	dst.EnableDirectServerReturn = util.ClonePtr(src.EnableDirectServerReturn)
	dst.LoadBalancerProbe = nil
	if src.LoadBalancerProbe != nil {
		dst.LoadBalancerProbe = &pvm.LoadBalancerProbe{
			Path:     src.LoadBalancerProbe.Path,
			Port:     src.LoadBalancerProbe.Port,
			Protocol: src.LoadBalancerProbe.Protocol,
		}
	}
	return nil
}

func instanceEndpointToLegacy(src compute.InstanceEndpoint, dst *pvm.InstanceEndpoint) error {
	dst.Name = src.Name
	dst.Vip = FormatVirtualIP(src.VirtualIPAddress)
	dst.Port = src.Port
	dst.LocalPort = src.LocalPort
	dst.Protocol = src.Protocol
	return nil
}

func instanceEndpointsToLegacy(src []compute.InstanceEndpoint, dst *[]pvm.InstanceEndpoint) error {
	out, err := mapEach(src, instanceEndpointToLegacy)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func dataDiskToLegacy(src compute.DataVirtualHardDisk, dst *pvm.DataVirtualHardDisk) error {
	dst.HostCaching = src.HostCaching
	dst.DiskLabel = src.DiskLabel
	dst.DiskName = src.DiskName
	dst.Lun = src.Lun
	dst.LogicalDiskSizeInGB = src.LogicalDiskSizeInGB
	dst.MediaLink = src.MediaLink
	dst.SourceMediaLink = src.SourceMediaLink
	return nil
}

func osDiskToLegacy(src compute.OSVirtualHardDisk, dst *pvm.OSVirtualHardDisk) error {
	dst.HostCaching = src.HostCaching
	dst.DiskLabel = src.DiskLabel
	dst.DiskName = src.DiskName
	dst.MediaLink = src.MediaLink
	dst.SourceImageName = src.SourceImageName
	dst.OS = src.OperatingSystem
	return nil
}

func listenerToLegacy(src compute.WindowsRemoteManagementListener, dst *pvm.WinRmListenerProperties) error {
	dst.Protocol = string(src.ListenerType)
	dst.CertificateThumbprint = src.CertificateThumbprint
	return nil
}

func listenersToLegacy(src []compute.WindowsRemoteManagementListener, dst *[]pvm.WinRmListenerProperties) error {
	out, err := mapEach(src, listenerToLegacy)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func winRMToLegacy(src compute.WindowsRemoteManagementSettings, dst *pvm.WinRmConfiguration) error {
	return listenersToLegacy(src.Listeners, &dst.Listeners)
}

func networkSetToLegacy(src compute.ConfigurationSet, dst *pvm.NetworkConfigurationSet) error {
	endpoints, err := mapEach(src.InputEndpoints, inputEndpointToLegacy)
	if err != nil {
		return err
	}
	dst.InputEndpoints = endpoints
	dst.SubnetNames = slices.Clone(src.SubnetNames)
	dst.StaticVirtualNetworkIPAddress = src.StaticVirtualNetworkIPAddress
	return nil
}

func provisioningSetToLegacy(src compute.ConfigurationSet, dst *pvm.ProvisioningConfigurationSet) error {
	dst.CustomData = src.CustomData
	return nil
}

func windowsSetToLegacy(src compute.ConfigurationSet, dst *pvm.WindowsProvisioningConfigurationSet) error {
	dst.CustomData = src.CustomData
	dst.ComputerName = src.ComputerName
	dst.AdminUsername = src.AdminUsername
	dst.AdminPassword = src.AdminPassword
	dst.ResetPasswordOnFirstLogon = util.ClonePtr(src.ResetPasswordOnFirstLogon)
	dst.EnableAutomaticUpdates = util.ClonePtr(src.EnableAutomaticUpdates)
	dst.TimeZone = src.TimeZone

	dst.WinRM = nil
	if src.WindowsRemoteManagement != nil {
		winRM := &pvm.WinRmConfiguration{}
		if err := winRMToLegacy(*src.WindowsRemoteManagement, winRM); err != nil {
			return err
		}
		dst.WinRM = winRM
	}
	return nil
}

func linuxSetToLegacy(src compute.ConfigurationSet, dst *pvm.LinuxProvisioningConfigurationSet) error {
	dst.CustomData = src.CustomData
	dst.HostName = src.HostName
	dst.UserName = src.UserName
	dst.UserPassword = src.UserPassword
	dst.DisableSSHPasswordAuthentication = util.ClonePtr(src.DisableSSHPasswordAuthentication)
	return nil
}

// configurationSetToLegacy selects the legacy variant named by the set's type tag
func configurationSetToLegacy(src compute.ConfigurationSet, dst *pvm.ConfigurationSet) error {
	set, err := pvm.NewConfigurationSet(src.ConfigurationSetType)
	if err != nil {
		return NewMappingError("compute.ConfigurationSet", pvm.TypeKey, src.ConfigurationSetType, err)
	}

	switch set := set.(type) {
	case *pvm.NetworkConfigurationSet:
		err = networkSetToLegacy(src, set)
	case *pvm.WindowsProvisioningConfigurationSet:
		err = windowsSetToLegacy(src, set)
	case *pvm.LinuxProvisioningConfigurationSet:
		err = linuxSetToLegacy(src, set)
	case *pvm.ProvisioningConfigurationSet:
		err = provisioningSetToLegacy(src, set)
	}
	if err != nil {
		return err
	}

	*dst = set
	return nil
}

func configurationSetsToLegacy(src []compute.ConfigurationSet, dst *pvm.ConfigurationSetList) error {
	out, err := mapEach(src, configurationSetToLegacy)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func roleToPersistentVM(src compute.Role, dst *pvm.PersistentVM) error {
	var sets pvm.ConfigurationSetList
	if err := configurationSetsToLegacy(src.ConfigurationSets, &sets); err != nil {
		return err
	}
	disks, err := mapEach(src.DataVirtualHardDisks, dataDiskToLegacy)
	if err != nil {
		return err
	}

	dst.RoleName = src.RoleName
	dst.RoleSize = src.RoleSize
	dst.AvailabilitySetName = src.AvailabilitySetName
	dst.ProvisionGuestAgent = util.ClonePtr(src.ProvisionGuestAgent)
	dst.ConfigurationSets = sets
	dst.DataVirtualHardDisks = disks
	dst.OSVirtualHardDisk = nil
	if src.OSVirtualHardDisk != nil {
		disk := &pvm.OSVirtualHardDisk{}
		if err := osDiskToLegacy(*src.OSVirtualHardDisk, disk); err != nil {
			return err
		}
		dst.OSVirtualHardDisk = disk
	}
	return nil
}

func roleInstanceToLegacy(src compute.RoleInstance, dst *pvm.RoleInstance) error {
	endpoints, err := mapEach(src.InstanceEndpoints, instanceEndpointToLegacy)
	if err != nil {
		return err
	}

	dst.RoleName = src.RoleName
	dst.InstanceName = src.InstanceName
	dst.InstanceStatus = src.InstanceStatus
	dst.InstanceUpgradeDomain = src.InstanceUpgradeDomain
	dst.InstanceFaultDomain = src.InstanceFaultDomain
	dst.InstanceSize = src.InstanceSize
	dst.IPAddress = FormatVirtualIP(src.IPAddress)
	dst.InstanceEndpoints = endpoints
	dst.PowerState = src.PowerState
	dst.HostName = src.HostName
	return nil
}
