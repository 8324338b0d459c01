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

// Package projection turns response objects into the context objects a
// command emits, stamping each with the operation that produced it.
package projection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/extension"
	"github.com/projectbeskar/smctl/internal/mapping"
	"github.com/projectbeskar/smctl/internal/model"
)

// ErrRoleNotFound is returned when a deployment has no role with the
// requested name
var ErrRoleNotFound = errors.New("role not found")

// Context is satisfied by a pointer to any context type
type Context[T any] interface {
	*T
	model.OperationCarrier
}

// Project maps resp into a new T, overlays the operation status when one is
// given, and records description as the operation description
func Project[T any, PT Context[T]](r *mapping.Registry, resp, status any, description string) (*T, error) {
	out := new(T)
	if err := r.MapInto(resp, out); err != nil {
		return nil, err
	}
	if err := r.MapInto(status, out); err != nil {
		return nil, err
	}
	PT(out).Operation().OperationDescription = description
	return out, nil
}

// ProjectEach projects every item in order
func ProjectEach[T any, PT Context[T], S any](r *mapping.Registry, items []S, status any, description string) ([]*T, error) {
	out := make([]*T, 0, len(items))
	for i := range items {
		ctx, err := Project[T, PT](r, items[i], status, description)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, ctx)
	}
	return out, nil
}

// ProjectStatus builds a context that carries nothing but the operation
func ProjectStatus[T any, PT Context[T]](r *mapping.Registry, status any, description string) (*T, error) {
	out := new(T)
	if err := r.MapInto(status, out); err != nil {
		return nil, err
	}
	PT(out).Operation().OperationDescription = description
	return out, nil
}

// RemoteDesktopExtensions returns one context per role the remote desktop
// extension is enabled on, the wildcard role last
func RemoteDesktopExtensions(r *mapping.Registry, deployment *compute.DeploymentGetResponse, extensions *compute.HostedServiceListExtensionsResponse, status any, description string) ([]*model.RemoteDesktopExtensionContext, error) {
	if deployment == nil || extensions == nil {
		return []*model.RemoteDesktopExtensionContext{}, nil
	}

	roleNames := make([]string, 0, len(deployment.Roles))
	for _, role := range deployment.Roles {
		roleNames = append(roleNames, role.RoleName)
	}
	checker := extension.NewConfigurationBuilder(deployment.ExtensionConfiguration)
	matches := extension.Resolve(roleNames, extensions.Extensions, checker, extension.RemoteDesktopNamespace, extension.RemoteDesktopType)

	out := make([]*model.RemoteDesktopExtensionContext, 0, len(matches))
	for _, m := range matches {
		ctx, err := Project[model.RemoteDesktopExtensionContext](r, m.Extension, status, description)
		if err != nil {
			return nil, err
		}
		ctx.Role = m.Role

		if ctx.UserName, err = extension.PublicConfigValue(m.Extension, extension.UserNameElement); err != nil {
			return nil, err
		}
		if ctx.Expiration, err = extension.PublicConfigValue(m.Extension, extension.ExpirationElement); err != nil {
			return nil, err
		}
		out = append(out, ctx)
	}
	return out, nil
}

// PersistentVMRole projects the named role of a deployment, together with its
// first instance, into the legacy VM shape. Role names match ignoring case.
func PersistentVMRole(r *mapping.Registry, serviceName string, deployment *compute.DeploymentGetResponse, roleName string, status any, description string) (*model.PersistentVMRoleContext, error) {
	if deployment == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
	}

	var role *compute.Role
	for i := range deployment.Roles {
		if strings.EqualFold(deployment.Roles[i].RoleName, roleName) {
			role = &deployment.Roles[i]
			break
		}
	}
	if role == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
	}

	ctx, err := Project[model.PersistentVMRoleContext](r, *role, status, description)
	if err != nil {
		return nil, err
	}
	for i := range deployment.RoleInstances {
		if strings.EqualFold(deployment.RoleInstances[i].RoleName, role.RoleName) {
			if err := r.MapInto(deployment.RoleInstances[i], ctx); err != nil {
				return nil, err
			}
			break
		}
	}

	ctx.ServiceName = serviceName
	ctx.DeploymentName = deployment.Name
	return ctx, nil
}

// VirtualMachineCreateParameters converts a legacy VM definition into the
// request body that creates it
func VirtualMachineCreateParameters(r *mapping.Registry, vm *pvm.PersistentVM) (*compute.VirtualMachineCreateParameters, error) {
	if vm == nil {
		return nil, errors.New("no virtual machine definition")
	}
	params, err := mapping.Map[compute.VirtualMachineCreateParameters](r, *vm)
	if err != nil {
		return nil, err
	}
	return &params, nil
}
