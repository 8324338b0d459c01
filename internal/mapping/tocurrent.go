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
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/util"
)

var errNilConfigurationSet = errors.New("nil configuration set")

// registerLegacyToCurrent registers the persistent-VM to compute rules
func registerLegacyToCurrent(b *Builder) {
	Register(b, inputEndpointToCurrent)
	Register(b, instanceEndpointToCurrent)
	Register(b, instanceEndpointsToCurrent)
	Register(b, dataDiskToCurrent)
	Register(b, osDiskToCurrent)
	Register(b, listenerToCurrent)
	Register(b, listenersToCurrent)
	Register(b, winRMToCurrent)
	Register(b, networkSetToCurrent)
	Register(b, windowsSetToCurrent)
	Register(b, linuxSetToCurrent)
	Register(b, provisioningSetToCurrent)
	Register(b, configurationSetsToCurrent)
	Register(b, persistentVMToCreateParameters)
}

func inputEndpointToCurrent(src pvm.InputEndpoint, dst *compute.InputEndpoint) error {
	vip, err := ParseVirtualIP("pvm.InputEndpoint", "Vip", src.Vip)
	if err != nil {
		return err
	}

	dst.LoadBalancedEndpointSetName = src.LoadBalancedEndpointSetName
	dst.LocalPort = util.ClonePtr(src.LocalPort)
	dst.Name = src.Name
	dst.Port = util.ClonePtr(src.Port)
	dst.Protocol = src.Protocol
	dst.VirtualIPAddress = vip
	dst.EnableDirectServerReturn = util.ClonePtr(src.EnableDirectServerReturn)
	dst.LoadBalancerProbe = nil
	if src.LoadBalancerProbe != nil {
		dst.LoadBalancerProbe = &compute.LoadBalancerProbe{
			Path:     src.LoadBalancerProbe.Path,
			Port:     src.LoadBalancerProbe.Port,
			Protocol: src.LoadBalancerProbe.Protocol,
		}
	}
	return nil
}

func instanceEndpointToCurrent(src pvm.InstanceEndpoint, dst *compute.InstanceEndpoint) error {
	vip, err := ParseVirtualIP("pvm.InstanceEndpoint", "Vip", src.Vip)
	if err != nil {
		return err
	}

	dst.Name = src.Name
	dst.VirtualIPAddress = vip
	dst.Port = src.Port
	dst.LocalPort = src.LocalPort
	dst.Protocol = src.Protocol
	return nil
}

func instanceEndpointsToCurrent(src []pvm.InstanceEndpoint, dst *[]compute.InstanceEndpoint) error {
	out, err := mapEach(src, instanceEndpointToCurrent)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func dataDiskToCurrent(src pvm.DataVirtualHardDisk, dst *compute.DataVirtualHardDisk) error {
	dst.HostCaching = src.HostCaching
	dst.DiskLabel = src.DiskLabel
	dst.DiskName = src.DiskName
	dst.Lun = src.Lun
	dst.LogicalDiskSizeInGB = src.LogicalDiskSizeInGB
	dst.MediaLink = src.MediaLink
	dst.SourceMediaLink = src.SourceMediaLink
	return nil
}

func osDiskToCurrent(src pvm.OSVirtualHardDisk, dst *compute.OSVirtualHardDisk) error {
	dst.HostCaching = src.HostCaching
	dst.DiskLabel = src.DiskLabel
	dst.DiskName = src.DiskName
	dst.MediaLink = src.MediaLink
	dst.SourceImageName = src.SourceImageName
	dst.OperatingSystem = src.OS
	return nil
}

func listenerToCurrent(src pvm.WinRmListenerProperties, dst *compute.WindowsRemoteManagementListener) error {
	lt, err := ParseListenerType("pvm.WinRmListenerProperties", "Protocol", src.Protocol)
	if err != nil {
		return err
	}
	dst.ListenerType = lt
	dst.CertificateThumbprint = src.CertificateThumbprint
	return nil
}

func listenersToCurrent(src []pvm.WinRmListenerProperties, dst *[]compute.WindowsRemoteManagementListener) error {
	out, err := mapEach(src, listenerToCurrent)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func winRMToCurrent(src pvm.WinRmConfiguration, dst *compute.WindowsRemoteManagementSettings) error {
	return listenersToCurrent(src.Listeners, &dst.Listeners)
}

func networkSetToCurrent(src *pvm.NetworkConfigurationSet, dst *compute.ConfigurationSet) error {
	endpoints, err := mapEach(src.InputEndpoints, inputEndpointToCurrent)
	if err != nil {
		return err
	}

	dst.ConfigurationSetType = src.ConfigurationSetType()
	dst.InputEndpoints = endpoints
	dst.SubnetNames = slices.Clone(src.SubnetNames)
	dst.StaticVirtualNetworkIPAddress = src.StaticVirtualNetworkIPAddress
	return nil
}

func provisioningSetToCurrent(src *pvm.ProvisioningConfigurationSet, dst *compute.ConfigurationSet) error {
	dst.ConfigurationSetType = src.ConfigurationSetType()
	dst.CustomData = src.CustomData
	return nil
}

func windowsSetToCurrent(src *pvm.WindowsProvisioningConfigurationSet, dst *compute.ConfigurationSet) error {
	dst.ConfigurationSetType = src.ConfigurationSetType()
	dst.CustomData = src.CustomData
	dst.ComputerName = src.ComputerName
	dst.AdminUsername = src.AdminUsername
	dst.AdminPassword = src.AdminPassword
	dst.ResetPasswordOnFirstLogon = util.ClonePtr(src.ResetPasswordOnFirstLogon)
	dst.EnableAutomaticUpdates = util.ClonePtr(src.EnableAutomaticUpdates)
	dst.TimeZone = src.TimeZone

	dst.WindowsRemoteManagement = nil
	if src.WinRM != nil {
		winRM := &compute.WindowsRemoteManagementSettings{}
		if err := winRMToCurrent(*src.WinRM, winRM); err != nil {
			return err
		}
		dst.WindowsRemoteManagement = winRM
	}
	return nil
}

func linuxSetToCurrent(src *pvm.LinuxProvisioningConfigurationSet, dst *compute.ConfigurationSet) error {
	dst.ConfigurationSetType = src.ConfigurationSetType()
	dst.CustomData = src.CustomData
	dst.HostName = src.HostName
	dst.UserName = src.UserName
	dst.UserPassword = src.UserPassword
	dst.DisableSSHPasswordAuthentication = util.ClonePtr(src.DisableSSHPasswordAuthentication)
	return nil
}

// configurationSetToCurrent dispatches on the concrete legacy variant
func configurationSetToCurrent(src pvm.ConfigurationSet, dst *compute.ConfigurationSet) error {
	if src == nil {
		return NewMappingError("pvm.ConfigurationSet", pvm.TypeKey, "<nil>", nil)
	}
	if v := reflect.ValueOf(src); v.Kind() == reflect.Pointer && v.IsNil() {
		return NewMappingError("pvm.ConfigurationSet", pvm.TypeKey, src.ConfigurationSetType(), errNilConfigurationSet)
	}

	switch set := src.(type) {
	case *pvm.NetworkConfigurationSet:
		return networkSetToCurrent(set, dst)
	case *pvm.WindowsProvisioningConfigurationSet:
		return windowsSetToCurrent(set, dst)
	case *pvm.LinuxProvisioningConfigurationSet:
		return linuxSetToCurrent(set, dst)
	case *pvm.ProvisioningConfigurationSet:
		return provisioningSetToCurrent(set, dst)
	default:
		return NewMappingError("pvm.ConfigurationSet", pvm.TypeKey, fmt.Sprintf("%T", src), nil)
	}
}

func configurationSetsToCurrent(src pvm.ConfigurationSetList, dst *[]compute.ConfigurationSet) error {
	out, err := mapEach([]pvm.ConfigurationSet(src), configurationSetToCurrent)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func persistentVMToCreateParameters(src pvm.PersistentVM, dst *compute.VirtualMachineCreateParameters) error {
	sets, err := mapEach([]pvm.ConfigurationSet(src.ConfigurationSets), configurationSetToCurrent)
	if err != nil {
		return err
	}
	disks, err := mapEach(src.DataVirtualHardDisks, dataDiskToCurrent)
	if err != nil {
		return err
	}

	dst.RoleName = src.RoleName
	dst.RoleType = "PersistentVMRole"
	dst.RoleSize = src.RoleSize
	dst.AvailabilitySetName = src.AvailabilitySetName
	dst.ProvisionGuestAgent = util.ClonePtr(src.ProvisionGuestAgent)
	dst.ConfigurationSets = sets
	dst.DataVirtualHardDisks = disks
	dst.OSVirtualHardDisk = nil
	if src.OSVirtualHardDisk != nil {
		disk := &compute.OSVirtualHardDisk{}
		if err := osDiskToCurrent(*src.OSVirtualHardDisk, disk); err != nil {
			return err
		}
		dst.OSVirtualHardDisk = disk
	}
	return nil
}

// mapEach applies fn element-wise, preserving order. A nil input yields nil.
func mapEach[S, T any](in []S, fn func(S, *T) error) ([]T, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]T, len(in))
	for i := range in {
		if err := fn(in[i], &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
