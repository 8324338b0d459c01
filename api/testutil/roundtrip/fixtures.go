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

package roundtrip

import (
	"net/netip"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/util"
)

// CreateFullPersistentVM creates a legacy VM with every configuration set
// variant and all optional fields populated
func CreateFullPersistentVM() pvm.PersistentVM {
	return pvm.PersistentVM{
		RoleName:            "web-01",
		RoleSize:            "Medium",
		AvailabilitySetName: "web-set",
		ProvisionGuestAgent: util.BoolPtr(true),
		ConfigurationSets: pvm.ConfigurationSetList{
			&pvm.NetworkConfigurationSet{
				InputEndpoints: []pvm.InputEndpoint{
					{
						LoadBalancedEndpointSetName: "web",
						Name:                        "http",
						Protocol:                    "tcp",
						Port:                        util.Ptr(80),
						LocalPort:                   util.Ptr(8080),
						Vip:                         "191.238.10.4",
						EnableDirectServerReturn:    util.BoolPtr(false),
						LoadBalancerProbe: &pvm.LoadBalancerProbe{
							Path:     "/healthz",
							Port:     8080,
							Protocol: "http",
						},
					},
					{
						Name:     "rdp",
						Protocol: "tcp",
						Port:     util.Ptr(3389),
						Vip:      "2001:db8::4",
					},
					{
						Name:     "internal",
						Protocol: "udp",
					},
				},
				SubnetNames:                   []string{"frontend", "backend"},
				StaticVirtualNetworkIPAddress: "10.0.0.4",
			},
			&pvm.WindowsProvisioningConfigurationSet{
				ProvisioningConfigurationSet: pvm.ProvisioningConfigurationSet{CustomData: "aGVsbG8="},
				ComputerName:                 "web-01",
				AdminUsername:                "ops",
				AdminPassword:                "P@ssw0rd!",
				ResetPasswordOnFirstLogon:    util.BoolPtr(false),
				EnableAutomaticUpdates:       util.BoolPtr(true),
				TimeZone:                     "UTC",
				WinRM: &pvm.WinRmConfiguration{
					Listeners: []pvm.WinRmListenerProperties{
						{Protocol: "Http"},
						{Protocol: "Https", CertificateThumbprint: "3F2504E04F8911D39A0C0305E82C3301"},
					},
				},
			},
		},
		DataVirtualHardDisks: []pvm.DataVirtualHardDisk{
			{
				HostCaching:         "ReadOnly",
				DiskLabel:           "data",
				DiskName:            "web-01-data",
				Lun:                 1,
				LogicalDiskSizeInGB: 128,
				MediaLink:           "https://contoso.blob.core.windows.net/vhds/web-01-data.vhd",
			},
		},
		OSVirtualHardDisk: &pvm.OSVirtualHardDisk{
			HostCaching:     "ReadWrite",
			DiskLabel:       "os",
			DiskName:        "web-01-os",
			MediaLink:       "https://contoso.blob.core.windows.net/vhds/web-01-os.vhd",
			SourceImageName: "win2012r2-datacenter",
			OS:              "Windows",
		},
	}
}

// CreateFullLinuxRole creates a current-model role provisioned with Linux
func CreateFullLinuxRole() compute.Role {
	return compute.Role{
		RoleName:            "db-01",
		RoleType:            "PersistentVMRole",
		RoleSize:            "Large",
		ProvisionGuestAgent: util.BoolPtr(true),
		ConfigurationSets: []compute.ConfigurationSet{
			{
				ConfigurationSetType: pvm.NetworkConfigurationSetType,
				InputEndpoints: []compute.InputEndpoint{
					{
						Name:             "ssh",
						Protocol:         "tcp",
						Port:             util.Ptr(22),
						LocalPort:        util.Ptr(22),
						VirtualIPAddress: netip.MustParseAddr("191.238.10.5"),
					},
				},
				SubnetNames: []string{"backend"},
			},
			{
				ConfigurationSetType:             pvm.LinuxProvisioningConfigurationSetType,
				HostName:                         "db-01",
				UserName:                         "azureuser",
				UserPassword:                     "s3cret",
				DisableSSHPasswordAuthentication: util.BoolPtr(true),
				CustomData:                       "I2Nsb3VkLWNvbmZpZw==",
			},
			{
				ConfigurationSetType: pvm.ProvisioningConfigurationSetType,
				CustomData:           "Ym9vdA==",
			},
		},
		OSVirtualHardDisk: &compute.OSVirtualHardDisk{
			DiskName:        "db-01-os",
			SourceImageName: "ubuntu-14_04",
			OperatingSystem: "Linux",
		},
	}
}
