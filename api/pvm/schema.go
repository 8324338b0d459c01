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

package pvm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// schemaReflector reads field names from the yaml tags, which are the names
// a PersistentVM document uses
func schemaReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		ExpandedStruct: true,
		DoNotReference: true,
	}
}

// JSONSchema describes the list as an array whose items are one of the
// configuration set variants, each pinned by its TypeKey
func (ConfigurationSetList) JSONSchema() *jsonschema.Schema {
	variants := []ConfigurationSet{
		&NetworkConfigurationSet{},
		&WindowsProvisioningConfigurationSet{},
		&LinuxProvisioningConfigurationSet{},
		&ProvisioningConfigurationSet{},
	}

	items := &jsonschema.Schema{}
	for _, v := range variants {
		s := schemaReflector().Reflect(v)
		s.Version = ""
		s.Properties.Set(TypeKey, &jsonschema.Schema{Type: "string", Const: v.ConfigurationSetType()})
		s.Required = append([]string{TypeKey}, s.Required...)
		items.OneOf = append(items.OneOf, s)
	}
	return &jsonschema.Schema{Type: "array", Items: items}
}

// Schema returns the indented JSON Schema of a PersistentVM document
func Schema() ([]byte, error) {
	s := schemaReflector().Reflect(&PersistentVM{})
	s.Title = "PersistentVM"
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}
