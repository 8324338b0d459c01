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
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/model"
)

type widget struct{ Name string }
type gadget struct{ Label string }

func TestBuilderRejectsDuplicatePairs(t *testing.T) {
	b := NewBuilder()
	Register(b, func(src widget, dst *gadget) error { dst.Label = src.Name; return nil })
	Register(b, func(src widget, dst *gadget) error { return nil })

	r, err := b.Build()
	require.Error(t, err)
	assert.Nil(t, r)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, reflect.TypeFor[widget](), cfgErr.Source)
	assert.Equal(t, reflect.TypeFor[gadget](), cfgErr.Target)
}

func TestMapInto(t *testing.T) {
	b := NewBuilder()
	Register(b, func(src widget, dst *gadget) error { dst.Label = src.Name; return nil })
	r, err := b.Build()
	require.NoError(t, err)

	t.Run("value source", func(t *testing.T) {
		out, err := Map[gadget](r, widget{Name: "a"})
		require.NoError(t, err)
		assert.Equal(t, "a", out.Label)
	})

	t.Run("pointer source falls back to the element rule", func(t *testing.T) {
		out, err := Map[gadget](r, &widget{Name: "b"})
		require.NoError(t, err)
		assert.Equal(t, "b", out.Label)
	})

	t.Run("nil source leaves the target untouched", func(t *testing.T) {
		dst := gadget{Label: "keep"}
		require.NoError(t, r.MapInto(nil, &dst))
		require.NoError(t, r.MapInto((*widget)(nil), &dst))
		assert.Equal(t, "keep", dst.Label)
	})

	t.Run("unregistered pair", func(t *testing.T) {
		_, err := Map[widget](r, gadget{})
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "no rule registered", cfgErr.Reason)
	})

	t.Run("nil pointer of an unregistered pair", func(t *testing.T) {
		_, err := Map[widget](r, (*gadget)(nil))
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "no rule registered", cfgErr.Reason)
		assert.Equal(t, reflect.TypeOf((*gadget)(nil)), cfgErr.Source)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(r.MapInto(widget{}, gadget{}), &cfgErr))
	})
}

func TestMapSlice(t *testing.T) {
	b := NewBuilder()
	Register(b, func(src widget, dst *gadget) error { dst.Label = src.Name; return nil })
	r, err := b.Build()
	require.NoError(t, err)

	out, err := MapSlice[widget, gadget](r, nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = MapSlice[widget, gadget](r, []widget{{Name: "c"}, {Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []gadget{{Label: "c"}, {Label: "a"}, {Label: "b"}}, out)
}

func TestRegistryPairsAreUnique(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	seen := make(map[Pair]bool)
	for _, p := range r.Pairs() {
		assert.False(t, seen[p], "pair %s registered twice", p)
		seen[p] = true
	}
	assert.Equal(t, len(seen), r.Len())
}

func TestRegistryCoversEveryRuleCategory(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	pairs := []struct {
		source reflect.Type
		target reflect.Type
	}{
		{reflect.TypeFor[pvm.InputEndpoint](), reflect.TypeFor[compute.InputEndpoint]()},
		{reflect.TypeFor[compute.InputEndpoint](), reflect.TypeFor[pvm.InputEndpoint]()},
		{reflect.TypeFor[pvm.OSVirtualHardDisk](), reflect.TypeFor[compute.OSVirtualHardDisk]()},
		{reflect.TypeFor[compute.OSVirtualHardDisk](), reflect.TypeFor[pvm.OSVirtualHardDisk]()},
		{reflect.TypeFor[*pvm.NetworkConfigurationSet](), reflect.TypeFor[compute.ConfigurationSet]()},
		{reflect.TypeFor[*pvm.WindowsProvisioningConfigurationSet](), reflect.TypeFor[compute.ConfigurationSet]()},
		{reflect.TypeFor[*pvm.LinuxProvisioningConfigurationSet](), reflect.TypeFor[compute.ConfigurationSet]()},
		{reflect.TypeFor[*pvm.ProvisioningConfigurationSet](), reflect.TypeFor[compute.ConfigurationSet]()},
		{reflect.TypeFor[compute.ConfigurationSet](), reflect.TypeFor[pvm.ConfigurationSet]()},
		{reflect.TypeFor[compute.WindowsRemoteManagementListener](), reflect.TypeFor[pvm.WinRmListenerProperties]()},
		{reflect.TypeFor[compute.OperationStatusResponse](), reflect.TypeFor[model.ManagementOperationContext]()},
		{reflect.TypeFor[management.OperationResponse](), reflect.TypeFor[model.ManagementOperationContext]()},
		{reflect.TypeFor[compute.DeploymentGetResponse](), reflect.TypeFor[model.DeploymentInfoContext]()},
	}

	for _, p := range pairs {
		assert.True(t, r.Has(p.source, p.target), "missing rule %s -> %s", p.source, p.target)
	}
}

func TestInitializeConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)

	const callers = 32
	registries := make([]*Registry, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			registries[i], errs[i] = Initialize()
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Same(t, registries[0], registries[i])
	}
	assert.Positive(t, registries[0].Len())
}
