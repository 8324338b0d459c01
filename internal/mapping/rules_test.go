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
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/api/storage"
	"github.com/projectbeskar/smctl/api/testutil/roundtrip"
	"github.com/projectbeskar/smctl/internal/model"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

func TestVirtualIPMapping(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name    string
		vip     string
		want    netip.Addr
		wantErr bool
	}{
		{name: "ipv4", vip: "10.1.2.3", want: netip.MustParseAddr("10.1.2.3")},
		{name: "ipv6", vip: "2001:db8::1", want: netip.MustParseAddr("2001:db8::1")},
		{name: "empty is absent", vip: "", want: netip.Addr{}},
		{name: "malformed", vip: "10.1.2", wantErr: true},
		{name: "hostname", vip: "contoso.cloudapp.net", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Map[compute.InputEndpoint](r, pvm.InputEndpoint{Name: "ep", Vip: tt.vip})
			if tt.wantErr {
				var mapErr *MappingError
				require.True(t, errors.As(err, &mapErr))
				assert.Equal(t, "Vip", mapErr.Field)
				assert.Equal(t, tt.vip, mapErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.VirtualIPAddress)

			back, err := Map[pvm.InputEndpoint](r, out)
			require.NoError(t, err)
			assert.Equal(t, tt.vip, back.Vip)
		})
	}
}

func TestAbsentAddressNeverBecomesUnspecified(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[compute.InstanceEndpoint](r, pvm.InstanceEndpoint{Name: "ep"})
	require.NoError(t, err)
	assert.False(t, out.VirtualIPAddress.IsValid())

	back, err := Map[pvm.InstanceEndpoint](r, compute.InstanceEndpoint{Name: "ep"})
	require.NoError(t, err)
	assert.Empty(t, back.Vip)
	assert.NotEqual(t, "0.0.0.0", back.Vip)
	assert.NotEqual(t, "::", back.Vip)
}

func TestOSDiskRenameFidelity(t *testing.T) {
	r := newTestRegistry(t)

	current, err := Map[compute.OSVirtualHardDisk](r, pvm.OSVirtualHardDisk{DiskName: "os", OS: "Linux"})
	require.NoError(t, err)
	assert.Equal(t, "Linux", current.OperatingSystem)

	legacy, err := Map[pvm.OSVirtualHardDisk](r, current)
	require.NoError(t, err)
	assert.Equal(t, "Linux", legacy.OS)
	assert.Equal(t, "os", legacy.DiskName)
}

func TestListenerProtocolMapping(t *testing.T) {
	r := newTestRegistry(t)

	for _, protocol := range []string{"Http", "https", "HTTPS"} {
		out, err := Map[compute.WindowsRemoteManagementListener](r, pvm.WinRmListenerProperties{Protocol: protocol})
		require.NoError(t, err, protocol)
		assert.NotEmpty(t, out.ListenerType)
	}

	_, err := Map[compute.WindowsRemoteManagementListener](r, pvm.WinRmListenerProperties{Protocol: "Telnet"})
	var mapErr *MappingError
	require.True(t, errors.As(err, &mapErr))
	assert.Equal(t, "Protocol", mapErr.Field)

	legacy, err := Map[pvm.WinRmListenerProperties](r, compute.WindowsRemoteManagementListener{
		ListenerType:          compute.ListenerTypeHTTPS,
		CertificateThumbprint: "ABC",
	})
	require.NoError(t, err)
	assert.Equal(t, pvm.WinRmListenerProperties{Protocol: "Https", CertificateThumbprint: "ABC"}, legacy)
}

func TestConfigurationSetDispatch(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		setType string
		want    reflect.Type
	}{
		{pvm.NetworkConfigurationSetType, reflect.TypeFor[*pvm.NetworkConfigurationSet]()},
		{pvm.WindowsProvisioningConfigurationSetType, reflect.TypeFor[*pvm.WindowsProvisioningConfigurationSet]()},
		{pvm.LinuxProvisioningConfigurationSetType, reflect.TypeFor[*pvm.LinuxProvisioningConfigurationSet]()},
		{pvm.ProvisioningConfigurationSetType, reflect.TypeFor[*pvm.ProvisioningConfigurationSet]()},
	}

	for _, tt := range tests {
		t.Run(tt.setType, func(t *testing.T) {
			set, err := Map[pvm.ConfigurationSet](r, compute.ConfigurationSet{ConfigurationSetType: tt.setType})
			require.NoError(t, err)
			assert.Equal(t, tt.want, reflect.TypeOf(set))
			assert.Equal(t, tt.setType, set.ConfigurationSetType())
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		_, err := Map[pvm.ConfigurationSet](r, compute.ConfigurationSet{ConfigurationSetType: "FloppyConfiguration"})
		var mapErr *MappingError
		require.True(t, errors.As(err, &mapErr))
		assert.Equal(t, pvm.TypeKey, mapErr.Field)
		assert.Equal(t, "FloppyConfiguration", mapErr.Value)
	})

	t.Run("nil legacy element", func(t *testing.T) {
		_, err := Map[[]compute.ConfigurationSet](r, pvm.ConfigurationSetList{(*pvm.NetworkConfigurationSet)(nil)})
		var mapErr *MappingError
		assert.True(t, errors.As(err, &mapErr))
	})
}

func TestConfigurationSetRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("legacy", func(t *testing.T) {
		roundtrip.RoundTripTest[pvm.ConfigurationSetList, []compute.ConfigurationSet](t, r, roundtrip.CreateFullPersistentVM().ConfigurationSets)
	})

	t.Run("current", func(t *testing.T) {
		roundtrip.RoundTripTest[[]compute.ConfigurationSet, pvm.ConfigurationSetList](t, r, roundtrip.CreateFullLinuxRole().ConfigurationSets)
	})

	t.Run("malformed vip", func(t *testing.T) {
		sets := pvm.ConfigurationSetList{
			&pvm.NetworkConfigurationSet{InputEndpoints: []pvm.InputEndpoint{{Name: "bad", Vip: "300.1.1.1"}}},
		}
		roundtrip.ExpectMappingError[[]compute.ConfigurationSet](t, r, sets, "300.1.1.1")
	})
}

func TestPersistentVMToCreateParameters(t *testing.T) {
	r := newTestRegistry(t)
	vm := roundtrip.CreateFullPersistentVM()

	params, err := Map[compute.VirtualMachineCreateParameters](r, vm)
	require.NoError(t, err)

	assert.Equal(t, "web-01", params.RoleName)
	assert.Equal(t, "PersistentVMRole", params.RoleType)
	require.Len(t, params.ConfigurationSets, 2)
	assert.Equal(t, pvm.NetworkConfigurationSetType, params.ConfigurationSets[0].ConfigurationSetType)
	assert.Equal(t, netip.MustParseAddr("191.238.10.4"), params.ConfigurationSets[0].InputEndpoints[0].VirtualIPAddress)
	assert.Equal(t, "ops", params.ConfigurationSets[1].AdminUsername)
	require.NotNil(t, params.ConfigurationSets[1].WindowsRemoteManagement)
	assert.Equal(t, compute.ListenerTypeHTTPS, params.ConfigurationSets[1].WindowsRemoteManagement.Listeners[1].ListenerType)
	assert.Equal(t, "Windows", params.OSVirtualHardDisk.OperatingSystem)
	assert.Equal(t, 1, params.DataVirtualHardDisks[0].Lun)

	// the source must not share pointers with the result
	*params.ConfigurationSets[0].InputEndpoints[0].Port = 81
	network := vm.ConfigurationSets[0].(*pvm.NetworkConfigurationSet)
	assert.Equal(t, 80, *network.InputEndpoints[0].Port)
}

func TestRoleToPersistentVM(t *testing.T) {
	r := newTestRegistry(t)

	vm, err := Map[pvm.PersistentVM](r, roundtrip.CreateFullLinuxRole())
	require.NoError(t, err)

	require.Len(t, vm.ConfigurationSets, 3)
	linux, ok := vm.ConfigurationSets[1].(*pvm.LinuxProvisioningConfigurationSet)
	require.True(t, ok)
	assert.Equal(t, "azureuser", linux.UserName)
	assert.True(t, *linux.DisableSSHPasswordAuthentication)
	assert.Equal(t, "Linux", vm.OSVirtualHardDisk.OS)
}

func TestDeploymentRollbackAllowed(t *testing.T) {
	r := newTestRegistry(t)

	for value, want := range map[string]bool{"": false, "true": true, "false": true, "Blocked": true} {
		out, err := Map[model.DeploymentInfoContext](r, compute.DeploymentGetResponse{RollbackAllowed: value})
		require.NoError(t, err)
		assert.Equal(t, want, out.RollbackAllowed, "RollbackAllowed=%q", value)
	}
}

func TestDeploymentContext(t *testing.T) {
	r := newTestRegistry(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	resp := compute.DeploymentGetResponse{
		OperationResponse:  management.OperationResponse{RequestID: "req-1", StatusCode: 200},
		Name:               "contoso-prod",
		DeploymentSlot:     compute.DeploymentSlotProduction,
		PrivateID:          "abc123",
		URI:                "http://contoso.cloudapp.net/",
		VirtualNetworkName: "contoso-vnet",
		CreatedTime:        created,
		UpgradeStatus: &compute.UpgradeStatus{
			UpgradeType:               "Auto",
			CurrentUpgradeDomainState: "Before",
			CurrentUpgradeDomain:      2,
		},
		RoleInstances: []compute.RoleInstance{
			{RoleName: "WebRole1", InstanceName: "WebRole1_IN_0", IPAddress: netip.MustParseAddr("10.0.0.4")},
			{RoleName: "WebRole1", InstanceName: "WebRole1_IN_1"},
		},
		VirtualIPAddresses: []compute.VirtualIPAddress{{Address: netip.MustParseAddr("191.238.10.4"), IsDNSProgrammed: true}},
	}

	out, err := Map[model.DeploymentInfoContext](r, resp)
	require.NoError(t, err)

	assert.Equal(t, "req-1", out.OperationID)
	assert.Equal(t, "OK", out.OperationStatus)
	assert.Equal(t, "Production", out.Slot)
	assert.Equal(t, "contoso-prod", out.DeploymentName)
	assert.Equal(t, "abc123", out.DeploymentID)
	assert.Equal(t, "http://contoso.cloudapp.net/", out.URL)
	assert.Equal(t, "contoso-vnet", out.VNetName)
	assert.Equal(t, created, out.CreatedTime)
	assert.Equal(t, 2, out.CurrentUpgradeDomain)
	assert.Equal(t, "Before", out.CurrentUpgradeDomainState)
	assert.Equal(t, "Auto", out.UpgradeType)
	require.Len(t, out.RoleInstanceList, 2)
	assert.Equal(t, "10.0.0.4", out.RoleInstanceList[0].IPAddress)
	assert.Empty(t, out.RoleInstanceList[1].IPAddress)
	assert.Equal(t, []model.VirtualIP{{Address: "191.238.10.4", IsDNSProgrammed: true}}, out.VirtualIPs)

	resp.UpgradeStatus = nil
	out, err = Map[model.DeploymentInfoContext](r, resp)
	require.NoError(t, err)
	assert.Zero(t, out.CurrentUpgradeDomain)
	assert.Empty(t, out.CurrentUpgradeDomainState)
	assert.Empty(t, out.UpgradeType)
}

func TestCertificateData(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[model.CertificateContext](r, compute.ServiceCertificateGetResponse{})
	require.NoError(t, err)
	assert.Nil(t, out.Data)

	out, err = Map[model.CertificateContext](r, compute.Certificate{
		CertificateURI: "https://management.core.windows.net/sub/services/hostedservices/svc/certificates/sha1-ABC",
		Thumbprint:     "ABC",
		Data:           compute.Base64Data("cert"),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Data)
	assert.Equal(t, "Y2VydA==", *out.Data)
	assert.Contains(t, out.URL, "sha1-ABC")
}

func TestImagePublishedDate(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[model.OSImageContext](r, compute.VirtualMachineImage{Name: "img", SmallIconURI: "icon.png"})
	require.NoError(t, err)
	assert.Nil(t, out.PublishedDate)
	assert.Equal(t, "img", out.ImageName)
	assert.Equal(t, "icon.png", out.IconURI)

	published := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err = Map[model.OSImageContext](r, compute.VirtualMachineImage{PublishedDate: published})
	require.NoError(t, err)
	require.NotNil(t, out.PublishedDate)
	assert.True(t, published.Equal(*out.PublishedDate))
}

func TestDiskContext(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[model.DiskContext](r, compute.VirtualMachineDisk{
		Name:                "web-01-os",
		LogicalSizeInGB:     127,
		MediaLinkURI:        "https://contoso.blob.core.windows.net/vhds/web-01-os.vhd",
		OperatingSystemType: "Windows",
		UsageDetails:        &compute.VirtualMachineDiskUsageDetails{HostedServiceName: "contoso-web", RoleName: "web-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "web-01-os", out.DiskName)
	assert.Equal(t, 127, out.DiskSizeInGB)
	assert.Equal(t, "Windows", out.OS)
	require.NotNil(t, out.AttachedTo)
	assert.Equal(t, "web-01", out.AttachedTo.RoleName)

	out, err = Map[model.DiskContext](r, compute.VirtualMachineDisk{Name: "spare"})
	require.NoError(t, err)
	assert.Nil(t, out.AttachedTo)
}

func TestStorageContexts(t *testing.T) {
	r := newTestRegistry(t)

	props, err := Map[model.StorageServicePropertiesOperationContext](r, storage.StorageServiceGetResponse{
		ServiceName: "contosostore",
		Properties: storage.StorageServiceProperties{
			Description:                "logs",
			Status:                     "Created",
			GeoPrimaryRegion:           "West US",
			GeoSecondaryRegion:         "East US",
			StatusOfGeoPrimaryRegion:   "Available",
			StatusOfGeoSecondaryRegion: "Unavailable",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "contosostore", props.StorageAccountName)
	assert.Equal(t, "logs", props.StorageAccountDescription)
	assert.Equal(t, "Created", props.StorageAccountStatus)
	assert.Equal(t, "West US", props.GeoPrimaryLocation)
	assert.Equal(t, "East US", props.GeoSecondaryLocation)
	assert.Equal(t, "Available", props.StatusOfPrimary)
	assert.Equal(t, "Unavailable", props.StatusOfSecondary)

	keys, err := Map[model.StorageServiceKeyOperationContext](r, storage.StorageAccountGetKeysResponse{PrimaryKey: "p", SecondaryKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "p", keys.Primary)
	assert.Equal(t, "s", keys.Secondary)
}

func TestHostedServiceContext(t *testing.T) {
	r := newTestRegistry(t)
	modified := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	out, err := Map[model.HostedServiceDetailedContext](r, compute.HostedService{
		ServiceName: "contoso-web",
		URI:         "https://management.core.windows.net/sub/services/hostedservices/contoso-web",
		Properties: compute.HostedServiceProperties{
			Label:              "Contoso",
			DateLastModified:   modified,
			ExtendedProperties: []compute.ExtendedProperty{{Name: "owner", Value: "web-team"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "contoso-web", out.ServiceName)
	assert.Contains(t, out.URL, "contoso-web")
	assert.Equal(t, modified, out.DateModified)
	assert.Equal(t, map[string]string{"owner": "web-team"}, out.ExtendedProperties)
}

func TestAffinityGroupContext(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[model.AffinityGroupContext](r, management.AffinityGroupGetResponse{
		Name:            "contoso-ag",
		HostedServices:  []management.HostedServiceReference{{ServiceName: "a", URI: "u1"}, {ServiceName: "b", URI: "u2"}},
		StorageServices: []management.StorageServiceReference{{ServiceName: "s", URI: "u3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.AffinityGroupService{{ServiceName: "a", URL: "u1"}, {ServiceName: "b", URL: "u2"}}, out.HostedServices)
	assert.Equal(t, []model.AffinityGroupService{{ServiceName: "s", URL: "u3"}}, out.StorageServices)
}

// TestOperationMetadataForEveryContext applies the operation status to every
// context type the registry knows about
func TestOperationMetadataForEveryContext(t *testing.T) {
	r := newTestRegistry(t)
	status := management.OperationStatusResponse{ID: "op-42", Status: management.OperationStatusSucceeded}
	statusType := reflect.TypeOf(status)

	covered := 0
	for _, p := range r.Pairs() {
		if p.Source != statusType {
			continue
		}
		covered++

		t.Run(p.Target.Name(), func(t *testing.T) {
			dst := reflect.New(p.Target)
			require.NoError(t, r.MapInto(status, dst.Interface()))

			carrier, ok := dst.Interface().(model.OperationCarrier)
			require.True(t, ok, "%s does not carry operation metadata", p.Target)
			assert.Equal(t, "op-42", carrier.Operation().OperationID)
			assert.Equal(t, "Succeeded", carrier.Operation().OperationStatus)

			// a response without status fields must also populate the metadata
			require.NoError(t, r.MapInto(management.OperationResponse{RequestID: "req-7", StatusCode: 404}, dst.Interface()))
			assert.Equal(t, "req-7", carrier.Operation().OperationID)
			assert.Equal(t, "NotFound", carrier.Operation().OperationStatus)
		})
	}
	assert.Equal(t, 14, covered)
}

func TestStatusEnvelopes(t *testing.T) {
	r := newTestRegistry(t)

	out, err := Map[model.ManagementOperationContext](r, compute.OperationStatusResponse{ID: "c-1", Status: management.OperationStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "c-1", out.OperationID)
	assert.Equal(t, "InProgress", out.OperationStatus)

	out, err = Map[model.ManagementOperationContext](r, &storage.OperationStatusResponse{ID: "s-1", Status: management.OperationStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, "s-1", out.OperationID)
	assert.Equal(t, "Failed", out.OperationStatus)
}

func TestStatusCodeName(t *testing.T) {
	assert.Equal(t, "OK", statusCodeName(200))
	assert.Equal(t, "Accepted", statusCodeName(202))
	assert.Equal(t, "NotFound", statusCodeName(404))
	assert.Equal(t, "InternalServerError", statusCodeName(500))
	assert.Equal(t, "599", statusCodeName(599))
	assert.Empty(t, statusCodeName(0))
}
