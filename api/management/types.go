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

// Package management contains the subscription-level Service Management
// response types and the shared operation envelope.
package management

import "encoding/xml"

// OperationResponse is embedded in every response. Both fields come from the
// HTTP exchange, not the body.
type OperationResponse struct {
	RequestID  string `xml:"-" json:"RequestId,omitempty"`
	StatusCode int    `xml:"-" json:"StatusCode,omitempty"`
}

// Envelope gives access to the embedded envelope of any response type
func (r *OperationResponse) Envelope() *OperationResponse {
	return r
}

// Done reports whether the operation has left the InProgress state
func (r *OperationStatusResponse) Done() bool {
	return r.Status != OperationStatusInProgress
}

// OperationStatus is the lifecycle state of an asynchronous operation
type OperationStatus string

const (
	OperationStatusInProgress OperationStatus = "InProgress"
	OperationStatusSucceeded  OperationStatus = "Succeeded"
	OperationStatusFailed     OperationStatus = "Failed"
)

// OperationError is reported for failed operations
type OperationError struct {
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// OperationStatusResponse is the result of polling an operation by request id
type OperationStatusResponse struct {
	XMLName xml.Name `xml:"Operation" json:"-"`
	OperationResponse

	ID             string          `xml:"ID"`
	Status         OperationStatus `xml:"Status"`
	HTTPStatusCode int             `xml:"HttpStatusCode"`
	Error          *OperationError `xml:"Error,omitempty"`
}

// HostedServiceReference links an affinity group to a hosted service
type HostedServiceReference struct {
	ServiceName string `xml:"ServiceName"`
	URI         string `xml:"Url"`
}

// StorageServiceReference links an affinity group to a storage account
type StorageServiceReference struct {
	ServiceName string `xml:"ServiceName"`
	URI         string `xml:"Url"`
}

// AffinityGroupGetResponse describes a single affinity group
type AffinityGroupGetResponse struct {
	XMLName xml.Name `xml:"AffinityGroup" json:"-"`
	OperationResponse

	Name            string                    `xml:"Name"`
	Label           string                    `xml:"Label"`
	Description     string                    `xml:"Description"`
	Location        string                    `xml:"Location"`
	HostedServices  []HostedServiceReference  `xml:"HostedServices>HostedService"`
	StorageServices []StorageServiceReference `xml:"StorageServices>StorageService"`
	Capabilities    []string                  `xml:"Capabilities>Capability"`
}

// AffinityGroup is one entry of an affinity group listing
type AffinityGroup struct {
	Name         string   `xml:"Name"`
	Label        string   `xml:"Label"`
	Description  string   `xml:"Description"`
	Location     string   `xml:"Location"`
	Capabilities []string `xml:"Capabilities>Capability"`
}

// AffinityGroupListResponse lists the affinity groups of a subscription
type AffinityGroupListResponse struct {
	XMLName xml.Name `xml:"AffinityGroups" json:"-"`
	OperationResponse

	AffinityGroups []AffinityGroup `xml:"AffinityGroup"`
}

// Location is a datacenter region
type Location struct {
	Name              string   `xml:"Name"`
	DisplayName       string   `xml:"DisplayName"`
	AvailableServices []string `xml:"AvailableServices>AvailableService"`
}

// LocationsListResponse lists the regions available to a subscription
type LocationsListResponse struct {
	XMLName xml.Name `xml:"Locations" json:"-"`
	OperationResponse

	Locations []Location `xml:"Location"`
}
