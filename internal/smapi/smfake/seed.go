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
	"encoding/base64"
	"net/netip"
	"time"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/storage"
	"github.com/projectbeskar/smctl/internal/util"
)

// Seeded names, exported for tests
const (
	SeedService           = "contoso-web"
	SeedEmptyService      = "fabrikam-api"
	SeedDeployment        = "contoso-prod"
	SeedStagingDeployment = "contoso-staging"
	SeedWebRole           = "WebRole1"
	SeedLinuxRole         = "db-01"
	SeedStorageAccount    = "contosostore"
	SeedAffinityGroup     = "contoso-ag"
	SeedThumbprint        = "A1B2C3D4E5F60718293A4B5C6D7E8F9012345678"
	SeedThumbprintAlg     = "sha1"
	SeedRDPUser           = "ops"
	SeedRDPExpiration     = "2026-12-31"
	SeedRDPWebUser        = "webops"
)

var seedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// seedData creates the initial subscription content
func (s *Server) seedData() {
	s.locations = []management.Location{
		{Name: "West US", DisplayName: "West US", AvailableServices: []string{"Compute", "Storage", "PersistentVMRole"}},
		{Name: "East US", DisplayName: "East US", AvailableServices: []string{"Compute", "Storage"}},
		{Name: "North Europe", DisplayName: "North Europe", AvailableServices: []string{"Compute", "Storage", "PersistentVMRole"}},
	}

	s.affinityGroups[SeedAffinityGroup] = &management.AffinityGroupGetResponse{
		Name:        SeedAffinityGroup,
		Label:       "Contoso",
		Description: "Contoso production resources",
		Location:    "West US",
		HostedServices: []management.HostedServiceReference{
			{ServiceName: SeedService, URI: s.serviceURL("services/hostedservices/" + SeedService)},
		},
		StorageServices: []management.StorageServiceReference{
			{ServiceName: SeedStorageAccount, URI: s.serviceURL("services/storageservices/" + SeedStorageAccount)},
		},
		Capabilities: []string{"PersistentVMRole", "HighMemory"},
	}

	s.operatingSystems = []compute.OperatingSystem{
		{Family: 4, FamilyLabel: "Windows Server 2012 R2", IsActive: true, IsDefault: true, Label: "Windows Azure Guest OS 4.10", Version: "WA-GUEST-OS-4.10_201406-01"},
		{Family: 3, FamilyLabel: "Windows Server 2012", IsActive: true, IsDefault: false, Label: "Windows Azure Guest OS 3.12", Version: "WA-GUEST-OS-3.12_201406-01"},
	}

	s.services[SeedService] = s.seedContosoWeb()
	s.services[SeedEmptyService] = &hostedService{
		properties: compute.HostedServiceProperties{
			Description:      "API tier",
			Location:         "East US",
			Label:            "fabrikam-api",
			Status:           "Created",
			DateCreated:      seedTime,
			DateLastModified: seedTime,
		},
		deployments: map[compute.DeploymentSlot]*compute.DeploymentGetResponse{},
	}

	s.storageServices[SeedStorageAccount] = &storageAccount{
		properties: storage.StorageServiceProperties{
			Description:                "Contoso blobs",
			AffinityGroup:              SeedAffinityGroup,
			Label:                      SeedStorageAccount,
			Status:                     "Created",
			Endpoints:                  []string{"https://contosostore.blob.core.windows.net/", "https://contosostore.queue.core.windows.net/"},
			GeoReplicationEnabled:      true,
			GeoPrimaryRegion:           "West US",
			StatusOfGeoPrimaryRegion:   "Available",
			GeoSecondaryRegion:         "East US",
			StatusOfGeoSecondaryRegion: "Available",
		},
		primaryKey:   base64.StdEncoding.EncodeToString([]byte("contoso-primary-key")),
		secondaryKey: base64.StdEncoding.EncodeToString([]byte("contoso-secondary-key")),
	}

	s.disks = []compute.VirtualMachineDisk{
		{
			AffinityGroup:       SeedAffinityGroup,
			Label:               "web-01 os disk",
			Location:            "West US",
			LogicalSizeInGB:     127,
			MediaLinkURI:        "https://contosostore.blob.core.windows.net/vhds/web-01-os.vhd",
			Name:                "web-01-os",
			OperatingSystemType: "Windows",
			SourceImageName:     "win2012r2-datacenter",
			UsageDetails: &compute.VirtualMachineDiskUsageDetails{
				HostedServiceName: SeedService,
				DeploymentName:    SeedDeployment,
				RoleName:          SeedWebRole,
			},
		},
		{
			Label:               "scratch",
			Location:            "West US",
			LogicalSizeInGB:     50,
			MediaLinkURI:        "https://contosostore.blob.core.windows.net/vhds/scratch.vhd",
			Name:                "scratch",
			OperatingSystemType: "",
		},
	}

	s.images = []compute.VirtualMachineImage{
		{
			Category:            "Public",
			Label:               "Windows Server 2012 R2 Datacenter",
			Location:            "West US;East US;North Europe",
			LogicalSizeInGB:     128,
			Name:                "win2012r2-datacenter",
			OperatingSystemType: "Windows",
			ImageFamily:         "Windows Server 2012 R2 Datacenter",
			PublishedDate:       seedTime,
			PublisherName:       "Microsoft Windows Server Group",
			RecommendedVMSize:   "Medium",
			IconURI:             "WindowsServer2012R2_100.png",
		},
		{
			Category:            "User",
			Label:               "contoso golden image",
			Location:            "West US",
			LogicalSizeInGB:     30,
			MediaLinkURI:        "https://contosostore.blob.core.windows.net/images/golden.vhd",
			Name:                "contoso-golden",
			OperatingSystemType: "Linux",
		},
	}
}

func (s *Server) seedContosoWeb() *hostedService {
	rdpAll := "<PublicConfig><UserName>" + SeedRDPUser + "</UserName><Expiration>" + SeedRDPExpiration + "</Expiration></PublicConfig>"
	rdpWeb := `{"UserName":"` + SeedRDPWebUser + `","Expiration":"2026-06-30"}`

	production := &compute.DeploymentGetResponse{
		Name:           SeedDeployment,
		DeploymentSlot: compute.DeploymentSlotProduction,
		PrivateID:      "c0ffee00c0ffee00c0ffee00c0ffee00",
		Status:         "Running",
		Label:          SeedDeployment,
		URI:            "http://contoso-web.cloudapp.net/",
		Configuration:  "<ServiceConfiguration />",
		RoleInstances: []compute.RoleInstance{
			{
				RoleName:       SeedWebRole,
				InstanceName:   SeedWebRole,
				InstanceStatus: "ReadyRole",
				InstanceSize:   "Medium",
				IPAddress:      netip.MustParseAddr("10.0.0.4"),
				PowerState:     "Started",
				HostName:       "web-01",
				InstanceEndpoints: []compute.InstanceEndpoint{
					{Name: "http", VirtualIPAddress: netip.MustParseAddr("191.238.10.4"), Port: 80, LocalPort: 80, Protocol: "tcp"},
					{Name: "RemoteDesktop", VirtualIPAddress: netip.MustParseAddr("191.238.10.4"), Port: 3389, LocalPort: 3389, Protocol: "tcp"},
				},
			},
			{
				RoleName:            SeedLinuxRole,
				InstanceName:        SeedLinuxRole,
				InstanceStatus:      "ReadyRole",
				InstanceFaultDomain: 1,
				InstanceSize:        "Large",
				IPAddress:           netip.MustParseAddr("10.0.1.4"),
				PowerState:          "Started",
				HostName:            SeedLinuxRole,
			},
		},
		UpgradeDomainCount: 2,
		Roles: []compute.Role{
			{
				RoleName:            SeedWebRole,
				RoleType:            "PersistentVMRole",
				RoleSize:            "Medium",
				AvailabilitySetName: "web",
				ProvisionGuestAgent: util.BoolPtr(true),
				ConfigurationSets: []compute.ConfigurationSet{
					{
						ConfigurationSetType: "NetworkConfiguration",
						InputEndpoints: []compute.InputEndpoint{
							{Name: "http", Port: util.Ptr(80), LocalPort: util.Ptr(80), Protocol: "tcp", VirtualIPAddress: netip.MustParseAddr("191.238.10.4")},
							{Name: "RemoteDesktop", Port: util.Ptr(3389), LocalPort: util.Ptr(3389), Protocol: "tcp"},
						},
						SubnetNames: []string{"web"},
					},
					{
						ConfigurationSetType:   "WindowsProvisioningConfiguration",
						ComputerName:           "web-01",
						AdminUsername:          "contosoadmin",
						EnableAutomaticUpdates: util.BoolPtr(true),
						TimeZone:               "UTC",
						WindowsRemoteManagement: &compute.WindowsRemoteManagementSettings{
							Listeners: []compute.WindowsRemoteManagementListener{{ListenerType: compute.ListenerTypeHTTPS, CertificateThumbprint: SeedThumbprint}},
						},
					},
				},
				OSVirtualHardDisk: &compute.OSVirtualHardDisk{
					HostCaching:     "ReadWrite",
					DiskName:        "web-01-os",
					MediaLink:       "https://contosostore.blob.core.windows.net/vhds/web-01-os.vhd",
					SourceImageName: "win2012r2-datacenter",
					OperatingSystem: "Windows",
				},
			},
			{
				RoleName: SeedLinuxRole,
				RoleType: "PersistentVMRole",
				RoleSize: "Large",
				ConfigurationSets: []compute.ConfigurationSet{
					{
						ConfigurationSetType:             "LinuxProvisioningConfiguration",
						HostName:                         SeedLinuxRole,
						UserName:                         "azureuser",
						DisableSSHPasswordAuthentication: util.BoolPtr(true),
					},
				},
				DataVirtualHardDisks: []compute.DataVirtualHardDisk{
					{HostCaching: "None", DiskName: "db-01-data", Lun: 0, LogicalDiskSizeInGB: 512},
				},
				OSVirtualHardDisk: &compute.OSVirtualHardDisk{
					DiskName:        "db-01-os",
					SourceImageName: "contoso-golden",
					OperatingSystem: "Linux",
				},
			},
		},
		SdkVersion:         "2.3",
		CreatedTime:        seedTime,
		LastModifiedTime:   seedTime,
		VirtualNetworkName: "contoso-vnet",
		VirtualIPAddresses: []compute.VirtualIPAddress{
			{Address: netip.MustParseAddr("191.238.10.4"), Name: "contoso-webContractContract", IsDNSProgrammed: true},
		},
		ExtensionConfiguration: &compute.ExtensionConfiguration{
			AllRoles: []compute.ExtensionReference{{ID: "RDP-all"}},
			NamedRoles: []compute.NamedRole{
				{RoleName: SeedWebRole, Extensions: []compute.ExtensionReference{{ID: "RDP-web"}, {ID: "Diag-web"}}},
			},
		},
	}

	staging := &compute.DeploymentGetResponse{
		Name:            SeedStagingDeployment,
		DeploymentSlot:  compute.DeploymentSlotStaging,
		PrivateID:       "feed0000feed0000feed0000feed0000",
		Status:          "Suspended",
		Label:           SeedStagingDeployment,
		URI:             "http://feed0000feed0000.cloudapp.net/",
		RollbackAllowed: "true",
		UpgradeStatus: &compute.UpgradeStatus{
			UpgradeType:               "Auto",
			CurrentUpgradeDomainState: "Before",
			CurrentUpgradeDomain:      1,
		},
		UpgradeDomainCount: 2,
		Locked:             true,
		CreatedTime:        seedTime,
		LastModifiedTime:   seedTime,
	}

	return &hostedService{
		properties: compute.HostedServiceProperties{
			Description:      "Contoso storefront",
			AffinityGroup:    SeedAffinityGroup,
			Label:            SeedService,
			Status:           "Created",
			DateCreated:      seedTime,
			DateLastModified: seedTime.Add(24 * time.Hour),
			ExtendedProperties: []compute.ExtendedProperty{
				{Name: "Owner", Value: "web-team"},
				{Name: "CostCenter", Value: "4711"},
			},
			ReverseDNSFqdn: "www.contoso.example.",
		},
		deployments: map[compute.DeploymentSlot]*compute.DeploymentGetResponse{
			compute.DeploymentSlotProduction: production,
			compute.DeploymentSlotStaging:    staging,
		},
		certificates: []compute.Certificate{
			{
				Thumbprint:          SeedThumbprint,
				ThumbprintAlgorithm: SeedThumbprintAlg,
				Data:                compute.Base64Data("contoso-certificate-der"),
			},
		},
		extensions: []compute.Extension{
			{
				ProviderNamespace:   "Microsoft.Windows.Azure.Extensions",
				Type:                "RDP",
				ID:                  "RDP-all",
				Version:             "1.*",
				PublicConfiguration: base64.StdEncoding.EncodeToString([]byte(rdpAll)),
			},
			{
				ProviderNamespace:   "Microsoft.Windows.Azure.Extensions",
				Type:                "RDP",
				ID:                  "RDP-web",
				Version:             "1.*",
				PublicConfiguration: base64.StdEncoding.EncodeToString([]byte(rdpWeb)),
				IsJSONExtension:     true,
			},
			{
				ProviderNamespace: "Microsoft.Windows.Azure.Extensions",
				Type:              "Diagnostics",
				ID:                "Diag-web",
				Version:           "1.*",
			},
		},
	}
}
