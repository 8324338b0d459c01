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
	"net/netip"
	"testing"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
)

// FuzzVirtualIPRoundTrip checks that every address accepted from the legacy
// model comes back unchanged after a trip through the current model
func FuzzVirtualIPRoundTrip(f *testing.F) {
	f.Add("10.0.0.4")
	f.Add("191.238.10.4")
	f.Add("2001:db8::1")
	f.Add("::ffff:10.0.0.1")
	f.Add("fe80::1%eth0")
	f.Add("")
	f.Add("not-an-ip")

	r, err := NewRegistry()
	if err != nil {
		f.Fatalf("Failed to build registry: %v", err)
	}

	f.Fuzz(func(t *testing.T, vip string) {
		current, err := Map[compute.InstanceEndpoint](r, pvm.InstanceEndpoint{Name: "ep", Vip: vip})
		if err != nil {
			if _, parseErr := netip.ParseAddr(vip); parseErr == nil {
				t.Errorf("Valid address %q was rejected: %v", vip, err)
			}
			return
		}

		legacy, err := Map[pvm.InstanceEndpoint](r, current)
		if err != nil {
			t.Fatalf("Failed to map %q back: %v", vip, err)
		}

		again, err := Map[compute.InstanceEndpoint](r, legacy)
		if err != nil {
			t.Fatalf("Failed to re-map %q: %v", legacy.Vip, err)
		}
		if again.VirtualIPAddress != current.VirtualIPAddress {
			t.Errorf("Address changed in round trip: %v != %v", again.VirtualIPAddress, current.VirtualIPAddress)
		}
		if !current.VirtualIPAddress.IsValid() && legacy.Vip != "" {
			t.Errorf("Absent address rendered as %q", legacy.Vip)
		}
	})
}
