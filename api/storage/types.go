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

// Package storage contains the storage account response types
package storage

import (
	"encoding/xml"

	"github.com/projectbeskar/smctl/api/management"
)

// StorageServiceProperties describes a storage account
type StorageServiceProperties struct {
	Description                string   `xml:"Description"`
	AffinityGroup              string   `xml:"AffinityGroup,omitempty"`
	Location                   string   `xml:"Location,omitempty"`
	Label                      string   `xml:"Label"`
	Status                     string   `xml:"Status"`
	Endpoints                  []string `xml:"Endpoints>Endpoint"`
	GeoReplicationEnabled      bool     `xml:"GeoReplicationEnabled"`
	GeoPrimaryRegion           string   `xml:"GeoPrimaryRegion"`
	StatusOfGeoPrimaryRegion   string   `xml:"StatusOfPrimary"`
	GeoSecondaryRegion         string   `xml:"GeoSecondaryRegion"`
	StatusOfGeoSecondaryRegion string   `xml:"StatusOfSecondary"`
}

// StorageServiceGetResponse describes a single storage account
type StorageServiceGetResponse struct {
	XMLName xml.Name `xml:"StorageService" json:"-"`
	management.OperationResponse

	ServiceName string                   `xml:"ServiceName"`
	URI         string                   `xml:"Url"`
	Properties  StorageServiceProperties `xml:"StorageServiceProperties"`
}

// StorageService is one entry of a storage account listing
type StorageService struct {
	ServiceName string                   `xml:"ServiceName"`
	URI         string                   `xml:"Url"`
	Properties  StorageServiceProperties `xml:"StorageServiceProperties"`
}

// StorageServiceListResponse lists the storage accounts of a subscription
type StorageServiceListResponse struct {
	XMLName xml.Name `xml:"StorageServices" json:"-"`
	management.OperationResponse

	StorageServices []StorageService `xml:"StorageService"`
}

// StorageAccountGetKeysResponse carries the access keys of a storage account
type StorageAccountGetKeysResponse struct {
	XMLName xml.Name `xml:"StorageService" json:"-"`
	management.OperationResponse

	URI          string `xml:"Url"`
	PrimaryKey   string `xml:"StorageServiceKeys>Primary"`
	SecondaryKey string `xml:"StorageServiceKeys>Secondary"`
}

// OperationStatusResponse is the storage flavour of the operation envelope
type OperationStatusResponse management.OperationStatusResponse
