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
	"github.com/projectbeskar/smctl/api/compute"
	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/api/storage"
	"github.com/projectbeskar/smctl/internal/model"
)

// carrier is satisfied by a pointer to any context type
type carrier[T any] interface {
	*T
	model.OperationCarrier
}

// registerOperation adds the operation metadata rules for context type T
func registerOperation[T any, PT carrier[T]](b *Builder) {
	Register(b, func(src management.OperationStatusResponse, dst *T) error {
		applyStatus(PT(dst).Operation(), src)
		return nil
	})
	Register(b, func(src management.OperationResponse, dst *T) error {
		applyResponse(PT(dst).Operation(), src)
		return nil
	})
}

// registerOperations covers every context type, plus the compute and storage
// status envelopes which only ever populate ManagementOperationContext
func registerOperations(b *Builder) {
	registerOperation[model.ManagementOperationContext](b)
	registerOperation[model.AffinityGroupContext](b)
	registerOperation[model.LocationsContext](b)
	registerOperation[model.CertificateContext](b)
	registerOperation[model.OSVersionsContext](b)
	registerOperation[model.HostedServiceDetailedContext](b)
	registerOperation[model.DiskContext](b)
	registerOperation[model.OSImageContext](b)
	registerOperation[model.StorageServicePropertiesOperationContext](b)
	registerOperation[model.StorageServiceKeyOperationContext](b)
	registerOperation[model.DeploymentInfoContext](b)
	registerOperation[model.ExtensionContext](b)
	registerOperation[model.RemoteDesktopExtensionContext](b)
	registerOperation[model.PersistentVMRoleContext](b)

	Register(b, func(src compute.OperationStatusResponse, dst *model.ManagementOperationContext) error {
		applyStatus(&dst.OperationContext, management.OperationStatusResponse(src))
		return nil
	})
	Register(b, func(src storage.OperationStatusResponse, dst *model.ManagementOperationContext) error {
		applyStatus(&dst.OperationContext, management.OperationStatusResponse(src))
		return nil
	})
}

func applyStatus(op *model.OperationContext, src management.OperationStatusResponse) {
	op.OperationID = src.ID
	op.OperationStatus = string(src.Status)
}

// applyResponse fills the operation fields from the HTTP exchange. The
// request id stands in for the operation id.
func applyResponse(op *model.OperationContext, src management.OperationResponse) {
	op.OperationID = src.RequestID
	op.OperationStatus = statusCodeName(src.StatusCode)
}
