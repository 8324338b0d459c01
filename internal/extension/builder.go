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
	"slices"

	"github.com/projectbeskar/smctl/api/compute"
)

// ExistenceChecker reports whether an extension id is enabled for a role
type ExistenceChecker interface {
	Exist(role Role, extensionID string) bool
}

// ConfigurationBuilder is an editable view of a deployment's extension
// configuration. The wildcard role reads and writes the AllRoles list; a named
// role reads and writes only its own entry.
type ConfigurationBuilder struct {
	allRoles []string
	named    map[string][]string
	order    []string
}

var _ ExistenceChecker = (*ConfigurationBuilder)(nil)

// NewConfigurationBuilder copies cfg into a builder. A nil cfg yields an
// empty configuration.
func NewConfigurationBuilder(cfg *compute.ExtensionConfiguration) *ConfigurationBuilder {
	b := &ConfigurationBuilder{named: make(map[string][]string)}
	if cfg == nil {
		return b
	}

	for _, ref := range cfg.AllRoles {
		b.Add(WildcardRole(), ref.ID)
	}
	for _, nr := range cfg.NamedRoles {
		role := NewRole(nr.RoleName)
		for _, ref := range nr.Extensions {
			b.Add(role, ref.ID)
		}
	}
	return b
}

// Exist reports whether extensionID is enabled for role. Role names match
// exactly; an empty id never matches.
func (b *ConfigurationBuilder) Exist(role Role, extensionID string) bool {
	if b == nil || extensionID == "" {
		return false
	}
	if role.Default() {
		return slices.Contains(b.allRoles, extensionID)
	}
	return slices.Contains(b.named[role.RoleName], extensionID)
}

// Add enables extensionID for role. Adding an existing pair is a no-op.
func (b *ConfigurationBuilder) Add(role Role, extensionID string) *ConfigurationBuilder {
	if extensionID == "" || b.Exist(role, extensionID) {
		return b
	}
	if role.Default() {
		b.allRoles = append(b.allRoles, extensionID)
		return b
	}
	if _, ok := b.named[role.RoleName]; !ok {
		b.order = append(b.order, role.RoleName)
	}
	b.named[role.RoleName] = append(b.named[role.RoleName], extensionID)
	return b
}

// Remove disables extensionID for role
func (b *ConfigurationBuilder) Remove(role Role, extensionID string) *ConfigurationBuilder {
	drop := func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == extensionID })
	}
	if role.Default() {
		b.allRoles = drop(b.allRoles)
		return b
	}
	if ids, ok := b.named[role.RoleName]; ok {
		b.named[role.RoleName] = drop(ids)
	}
	return b
}

// ExtensionConfiguration renders the builder back into the wire shape. Named
// roles keep their first-seen order; roles left without extensions are omitted.
func (b *ConfigurationBuilder) ExtensionConfiguration() *compute.ExtensionConfiguration {
	cfg := &compute.ExtensionConfiguration{}
	for _, id := range b.allRoles {
		cfg.AllRoles = append(cfg.AllRoles, compute.ExtensionReference{ID: id})
	}
	for _, name := range b.order {
		ids := b.named[name]
		if len(ids) == 0 {
			continue
		}
		nr := compute.NamedRole{RoleName: name}
		for _, id := range ids {
			nr.Extensions = append(nr.Extensions, compute.ExtensionReference{ID: id})
		}
		cfg.NamedRoles = append(cfg.NamedRoles, nr)
	}
	return cfg
}
