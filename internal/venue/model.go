// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package venue implements the notification wire contract: sharing a resolved
// housing location with the venue-search endpoint and querying the venue
// directory.
package venue

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/venueshare/venueshare/internal/housing"
)

// NotificationRequest asks the dispatcher to share a location with a channel.
type NotificationRequest struct {
	Location             housing.Location
	DestinationChannelID string
	RequestedBy          string
}

// LocationPayload is the wire form of a housing location.
type LocationPayload struct {
	Server        string    `json:"server" jsonschema:"minLength=1"`
	District      string    `json:"district" jsonschema:"minLength=1"`
	Ward          int       `json:"ward" jsonschema:"minimum=0"`
	Plot          int       `json:"plot" jsonschema:"minimum=0"`
	TerritoryName string    `json:"territoryName,omitempty"`
	TerritoryID   uint32    `json:"territoryId"`
	Timestamp     time.Time `json:"timestamp,omitempty,omitzero"`
}

// JSONSchemaExtend keeps territoryId optional for receivers. It is always
// sent, but older senders omit it.
func (LocationPayload) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Required = slices.DeleteFunc(s.Required, func(name string) bool { return name == "territoryId" })
}

// ShareRequest is the POST /venue-search request body.
type ShareRequest struct {
	Location         *LocationPayload `json:"location"`
	DiscordChannelID string           `json:"discordChannelId"`
	RequestedBy      string           `json:"requestedBy,omitempty"`
}

// ShareResponse is the POST /venue-search success body.
type ShareResponse struct {
	Success     bool   `json:"success"`
	VenuesFound int    `json:"venuesFound"`
	Message     string `json:"message"`
}

// ErrorResponse is the body of every non-2xx webhook response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewLocationPayload converts a resolved location to its wire form.
func NewLocationPayload(loc housing.Location) LocationPayload {
	return LocationPayload{
		Server:        loc.Server,
		District:      loc.District.String(),
		Ward:          loc.Ward,
		Plot:          loc.Plot,
		TerritoryName: loc.ZoneName,
		TerritoryID:   uint32(loc.ZoneID),
		Timestamp:     loc.ObservedAt.UTC(),
	}
}

// NewShareRequest builds the wire request for req.
func NewShareRequest(req NotificationRequest) ShareRequest {
	payload := NewLocationPayload(req.Location)
	return ShareRequest{
		Location:         &payload,
		DiscordChannelID: req.DestinationChannelID,
		RequestedBy:      req.RequestedBy,
	}
}

// VenueLocation is where a directory venue lives.
type VenueLocation struct {
	DataCenter  string `json:"dataCenter,omitempty"`
	World       string `json:"world,omitempty"`
	District    string `json:"district,omitempty"`
	Ward        int    `json:"ward,omitempty"`
	Plot        int    `json:"plot,omitempty"`
	Apartment   int    `json:"apartment,omitempty"`
	Room        int    `json:"room,omitempty"`
	Subdivision bool   `json:"subdivision,omitempty"`
}

// VenueRecord is one entry in the venue directory.
type VenueRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  Description   `json:"description,omitempty"`
	Location     VenueLocation `json:"location"`
	Website      string        `json:"website,omitempty"`
	Discord      string        `json:"discord,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	IsActive     bool          `json:"isActive"`
	SFW          bool          `json:"sfw"`
	MareCode     string        `json:"mareCode,omitempty"`
	MarePassword string        `json:"marePassword,omitempty"`
}

// UnmarshalJSON decodes a record, treating a missing sfw flag as true.
func (r *VenueRecord) UnmarshalJSON(data []byte) error {
	type plain VenueRecord
	decoded := plain{SFW: true}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = VenueRecord(decoded)
	return nil
}

// Description is a venue description. The directory sends either a string or
// a list of paragraphs; only the first paragraph is kept.
type Description string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (d *Description) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var paragraphs []string
		if err := json.Unmarshal(data, &paragraphs); err != nil {
			return err
		}
		*d = ""
		if len(paragraphs) > 0 {
			*d = Description(paragraphs[0])
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Description(s)
	return nil
}

// directoryResponse is the envelope form of a directory response.
type directoryResponse struct {
	Venues []VenueRecord `json:"venues"`
}

// DecodeDirectory decodes a directory response, accepting either
// {"venues": [...]} or a bare JSON array. The result is never nil.
func DecodeDirectory(data []byte) ([]VenueRecord, error) {
	data = bytes.TrimSpace(data)
	var records []VenueRecord
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return []VenueRecord{}, err
		}
	} else {
		var env directoryResponse
		if err := json.Unmarshal(data, &env); err != nil {
			return []VenueRecord{}, err
		}
		records = env.Venues
	}
	if records == nil {
		records = []VenueRecord{}
	}
	return records, nil
}
