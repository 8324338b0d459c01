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
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"
)

// TypeKey is the document key carrying the configuration set tag
const TypeKey = "ConfigurationSetType"

// ConfigurationSetList is an ordered list of tagged configuration sets. It
// serializes every element with its TypeKey so documents can be read back
// into the right variant.
type ConfigurationSetList []ConfigurationSet

// NewConfigurationSet returns an empty variant for the given tag
func NewConfigurationSet(setType string) (ConfigurationSet, error) {
	switch setType {
	case NetworkConfigurationSetType:
		return &NetworkConfigurationSet{}, nil
	case WindowsProvisioningConfigurationSetType:
		return &WindowsProvisioningConfigurationSet{}, nil
	case LinuxProvisioningConfigurationSetType:
		return &LinuxProvisioningConfigurationSet{}, nil
	case ProvisioningConfigurationSetType:
		return &ProvisioningConfigurationSet{}, nil
	default:
		return nil, fmt.Errorf("unknown configuration set type %q", setType)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler
func (l *ConfigurationSetList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var items []yaml.MapSlice
	if err := unmarshal(&items); err != nil {
		return err
	}

	out := make(ConfigurationSetList, 0, len(items))
	for i, item := range items {
		setType := ""
		fields := make(yaml.MapSlice, 0, len(item))
		for _, kv := range item {
			if k, ok := kv.Key.(string); ok && k == TypeKey {
				setType, _ = kv.Value.(string)
				continue
			}
			fields = append(fields, kv)
		}
		if setType == "" {
			return fmt.Errorf("configuration set %d: missing %s", i, TypeKey)
		}

		set, err := NewConfigurationSet(setType)
		if err != nil {
			return fmt.Errorf("configuration set %d: %w", i, err)
		}

		raw, err := yaml.Marshal(fields)
		if err != nil {
			return fmt.Errorf("configuration set %d: %w", i, err)
		}
		if err := yaml.UnmarshalStrict(raw, set); err != nil {
			return fmt.Errorf("configuration set %d: %w", i, err)
		}
		out = append(out, set)
	}

	*l = out
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (l ConfigurationSetList) MarshalYAML() (interface{}, error) {
	out := make([]yaml.MapSlice, 0, len(l))
	for i, set := range l {
		if set == nil {
			return nil, fmt.Errorf("configuration set %d is nil", i)
		}

		raw, err := yaml.Marshal(set)
		if err != nil {
			return nil, err
		}
		var fields yaml.MapSlice
		if err := yaml.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}

		item := append(yaml.MapSlice{{Key: TypeKey, Value: set.ConfigurationSetType()}}, fields...)
		out = append(out, item)
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler
func (l ConfigurationSetList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, set := range l {
		if set == nil {
			return nil, fmt.Errorf("configuration set %d is nil", i)
		}
		if i > 0 {
			buf.WriteByte(',')
		}

		tag, err := json.Marshal(set.ConfigurationSetType())
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(set)
		if err != nil {
			return nil, err
		}

		buf.WriteString(`{"` + TypeKey + `":`)
		buf.Write(tag)
		// body is a JSON object; splice its members after the tag
		if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
			buf.WriteByte(',')
			buf.Write(inner)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
