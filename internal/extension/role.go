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

// Package extension resolves which hosted service extensions are active on
// which roles of a deployment.
package extension

import "strings"

// RoleType distinguishes the wildcard role from a named role
type RoleType string

const (
	// AllRoles is the wildcard: the extension applies to every role
	AllRoles RoleType = "AllRoles"
	// NamedRoles scopes the extension to a single role
	NamedRoles RoleType = "NamedRoles"
)

// Role is the target of an extension: a named role or the wildcard
type Role struct {
	RoleName string   `json:"RoleName"`
	RoleType RoleType `json:"RoleType"`
}

// NewRole returns the role with the given name. A blank name is the wildcard.
func NewRole(name string) Role {
	name = strings.TrimSpace(name)
	if name == "" {
		return WildcardRole()
	}
	return Role{RoleName: name, RoleType: NamedRoles}
}

// WildcardRole returns the role matching every role of a deployment
func WildcardRole() Role {
	return Role{RoleType: AllRoles}
}

// Default reports whether r is the wildcard role
func (r Role) Default() bool {
	return r.RoleType == AllRoles
}

func (r Role) String() string {
	if r.Default() {
		return string(AllRoles)
	}
	return r.RoleName
}
