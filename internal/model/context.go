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

// Package model contains the user-facing context objects emitted by commands.
// Every context embeds OperationContext so the operation that produced it
// travels with the result.
package model

// OperationContext identifies the operation that produced a result
type OperationContext struct {
	OperationDescription string `json:"OperationDescription"`
	OperationID          string `json:"OperationId"`
	OperationStatus      string `json:"OperationStatus"`
}

// Operation returns the embedded operation metadata
func (c *OperationContext) Operation() *OperationContext {
	return c
}

// OperationCarrier is implemented by every context type through embedding
type OperationCarrier interface {
	Operation() *OperationContext
}

// ManagementOperationContext is the result of commands that return nothing
// but the operation outcome
type ManagementOperationContext struct {
	OperationContext
}
