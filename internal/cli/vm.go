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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/model"
	"github.com/projectbeskar/smctl/internal/obs/logging"
	"github.com/projectbeskar/smctl/internal/obs/metrics"
	"github.com/projectbeskar/smctl/internal/obs/tracing"
	"github.com/projectbeskar/smctl/internal/projection"
)

func (a *App) importVM(cmd *cobra.Command, args []string) error {
	p := importParams{Service: args[0], Deployment: args[1], File: args[2]}
	if err := checkParams(p); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), p.Service)

	vm, err := readPersistentVM(p.File)
	if err != nil {
		return err
	}

	_, span := tracing.StartSpan(ctx, tracing.SpanProjection)
	params, err := projection.VirtualMachineCreateParameters(a.registry, vm)
	metrics.RecordProjection(cmd.CommandPath(), err)
	span.End()
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", p.File, err)
	}

	logging.FromContext(ctx).Info("Creating virtual machine role", "deployment", p.Deployment, "role", params.RoleName)
	status, err := a.client.CreateVirtualMachine(ctx, p.Service, p.Deployment, params)
	if err != nil {
		return fmt.Errorf("failed to create virtual machine %s: %w", params.RoleName, err)
	}
	out, err := a.operation(cmd, status)
	if err != nil {
		return err
	}
	return a.printOperation(out)
}

// readPersistentVM loads a legacy VM definition from a YAML document
func readPersistentVM(path string) (*pvm.PersistentVM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	vm := &pvm.PersistentVM{}
	if err := yaml.UnmarshalStrict(data, vm); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if vm.RoleName == "" {
		return nil, fmt.Errorf("%w: %s has no RoleName", ErrInvalidParameter, path)
	}
	return vm, nil
}

// operation projects the final status of an asynchronous operation. status
// is a compute or storage status envelope.
func (a *App) operation(cmd *cobra.Command, status any) (*model.ManagementOperationContext, error) {
	_, span := tracing.StartSpan(cmd.Context(), tracing.SpanProjection)
	defer span.End()

	out, err := projection.ProjectStatus[model.ManagementOperationContext](a.registry, status, cmd.CommandPath())
	metrics.RecordProjection(cmd.CommandPath(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to project operation status: %w", err)
	}
	return out, nil
}

func (a *App) remoteDesktop(cmd *cobra.Command, deployment *compute.DeploymentGetResponse, extensions *compute.HostedServiceListExtensionsResponse, status any) ([]*model.RemoteDesktopExtensionContext, error) {
	_, span := tracing.StartSpan(cmd.Context(), tracing.SpanProjection)
	defer span.End()

	out, err := projection.RemoteDesktopExtensions(a.registry, deployment, extensions, status, cmd.CommandPath())
	metrics.RecordProjection(cmd.CommandPath(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to project remote desktop extensions: %w", err)
	}
	return out, nil
}

func (a *App) persistentVMRole(cmd *cobra.Command, service string, deployment *compute.DeploymentGetResponse, name string, status any) (*model.PersistentVMRoleContext, error) {
	_, span := tracing.StartSpan(cmd.Context(), tracing.SpanProjection)
	defer span.End()

	out, err := projection.PersistentVMRole(a.registry, service, deployment, name, status, cmd.CommandPath())
	metrics.RecordProjection(cmd.CommandPath(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to project virtual machine %s: %w", name, err)
	}
	return out, nil
}
