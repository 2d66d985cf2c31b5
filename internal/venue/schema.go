// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package venue

import (
	"github.com/venueshare/venueshare/internal/schema"
)

// ShareRequestSchemaID is the $id of the share request JSON Schema.
const ShareRequestSchemaID = "https://venueshare.dev/schemas/share-request.schema.json"

var shareRequestDocument = schema.Document{
	ID:          ShareRequestSchemaID,
	Title:       "VenueShare Share Request",
	Description: "Body of POST /venue-search",
	Type:        &ShareRequest{},
}

var shareRequestValidator = schema.NewValidator(shareRequestDocument)

// GenerateShareRequestSchema reflects the JSON Schema for share requests.
func GenerateShareRequestSchema() ([]byte, error) {
	return schema.Generate(shareRequestDocument)
}

// ValidateShareRequest checks a raw share request body against the schema.
func ValidateShareRequest(data []byte) error {
	return shareRequestValidator.ValidateJSON(data)
}
