// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"bytes"
	"fmt"

	"github.com/venueshare/venueshare/internal/schema"
)

// ZoneTableSchemaID is the $id of the zone table JSON Schema.
const ZoneTableSchemaID = "https://venueshare.dev/schemas/zones.schema.json"

var zoneTableDocument = schema.Document{
	ID:          ZoneTableSchemaID,
	Title:       "VenueShare Zone Table",
	Description: "Zone to housing district lookup data",
	Type:        &ZoneTable{},
}

var zoneTableValidator = schema.NewValidator(zoneTableDocument)

// GenerateZoneTableSchema reflects the JSON Schema for zone table files.
func GenerateZoneTableSchema() ([]byte, error) {
	return schema.Generate(zoneTableDocument)
}

// ValidateZoneTableSchema checks raw YAML zone table data against the schema.
func ValidateZoneTableSchema(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("zone table data is empty")
	}
	return zoneTableValidator.ValidateYAML(data)
}
