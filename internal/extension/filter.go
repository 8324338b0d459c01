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

package extension

import (
	"github.com/projectbeskar/smctl/api/compute"
)

// Remote desktop extension identity and public configuration elements
const (
	RemoteDesktopNamespace = "Microsoft.Windows.Azure.Extensions"
	RemoteDesktopType      = "RDP"

	UserNameElement   = "UserName"
	ExpirationElement = "Expiration"
)

// Match is an extension found active on a role
type Match struct {
	Role      Role
	Extension compute.Extension
}

// CheckNamespaceType reports whether ext has the given provider namespace and type
func CheckNamespaceType(ext compute.Extension, namespace, extType string) bool {
	return ext.ProviderNamespace == namespace && ext.Type == extType
}

// CandidateRoles returns the roles an extension may be enabled on: every
// distinct named role in order, followed by the wildcard. Blank names are
// folded into the wildcard.
func CandidateRoles(roleNames []string) []Role {
	seen := make(map[string]struct{}, len(roleNames))
	roles := make([]Role, 0, len(roleNames)+1)
	for _, name := range roleNames {
		role := NewRole(name)
		if role.Default() {
			continue
		}
		if _, dup := seen[role.RoleName]; dup {
			continue
		}
		seen[role.RoleName] = struct{}{}
		roles = append(roles, role)
	}
	return append(roles, WildcardRole())
}

// Resolve evaluates every (role, extension) pair and returns the ones where
// the extension matches namespace and type and is enabled for the role.
// Results are ordered by role, then by extension.
func Resolve(roleNames []string, extensions []compute.Extension, checker ExistenceChecker, namespace, extType string) []Match {
	matches := []Match{}
	if len(extensions) == 0 || checker == nil {
		return matches
	}

	for _, role := range CandidateRoles(roleNames) {
		for _, ext := range extensions {
			if !CheckNamespaceType(ext, namespace, extType) {
				continue
			}
			if !checker.Exist(role, ext.ID) {
				continue
			}
			matches = append(matches, Match{Role: role, Extension: ext})
		}
	}
	return matches
}
