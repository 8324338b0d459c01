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
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"unicode"

	"github.com/projectbeskar/smctl/api/compute"
)

// ParseVirtualIP converts a textual address into a netip.Addr. An empty
// string is an absent address, never the unspecified address.
func ParseVirtualIP(sourceType, field, s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, NewMappingError(sourceType, field, s, err)
	}
	return addr, nil
}

// FormatVirtualIP renders addr, or "" for an absent address
func FormatVirtualIP(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.String()
}

// ParseListenerType converts a WinRM protocol name, ignoring case
func ParseListenerType(sourceType, field, protocol string) (compute.ListenerType, error) {
	switch {
	case strings.EqualFold(protocol, string(compute.ListenerTypeHTTP)):
		return compute.ListenerTypeHTTP, nil
	case strings.EqualFold(protocol, string(compute.ListenerTypeHTTPS)):
		return compute.ListenerTypeHTTPS, nil
	default:
		return "", NewMappingError(sourceType, field, protocol, nil)
	}
}

// statusCodeName renders an HTTP status code the way operation statuses are
// reported: the status text without separators, e.g. 404 -> "NotFound".
func statusCodeName(code int) string {
	if code == 0 {
		return ""
	}
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, text)
}
