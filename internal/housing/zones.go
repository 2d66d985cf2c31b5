// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DefaultModulus is the ward count used by map-identifier decoding when a
// district does not set its own.
const DefaultModulus = 24

//go:embed zones.yaml
var defaultZonesYAML []byte

// ZoneTable is the lookup data behind classification and map-identifier
// decoding. A table is read-only once loaded.
type ZoneTable struct {
	Districts      []District             `yaml:"districts" json:"districts" jsonschema:"minItems=1"`
	Zones          map[ZoneID]District    `yaml:"zones" json:"zones"`
	Instances      map[ZoneID]ZoneID      `yaml:"instances,omitempty" json:"instances,omitempty"`
	LikelyInstance *InstanceRange         `yaml:"likely_instance,omitempty" json:"likely_instance,omitempty"`
	MapOffsets     map[District]MapOffset `yaml:"map_offsets,omitempty" json:"map_offsets,omitempty"`
}

// InstanceRange is the heuristic range of zone IDs that are probably housing
// instances, with narrower sub-ranges that attribute an ID to a district.
type InstanceRange struct {
	Min          ZoneID             `yaml:"min" json:"min"`
	Max          ZoneID             `yaml:"max" json:"max"`
	Attributions []RangeAttribution `yaml:"attributions,omitempty" json:"attributions,omitempty"`
}

// Contains reports whether id lies within the range, bounds included.
func (r InstanceRange) Contains(id ZoneID) bool {
	return id >= r.Min && id <= r.Max
}

// RangeAttribution assigns the zone IDs between Min and Max to a district.
type RangeAttribution struct {
	Min      ZoneID   `yaml:"min" json:"min"`
	Max      ZoneID   `yaml:"max" json:"max"`
	District District `yaml:"district" json:"district"`
}

// MapOffset holds the constants for decoding a ward from a map identifier.
type MapOffset struct {
	Offset  uint32 `yaml:"offset" json:"offset"`
	Modulus uint32 `yaml:"modulus,omitempty" json:"modulus,omitempty"`
}

// DefaultZoneTable returns a freshly parsed copy of the embedded zone table.
// It panics if the embedded data is invalid, which the package tests rule out.
func DefaultZoneTable() *ZoneTable {
	table, err := LoadZoneTable(defaultZonesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded zone table is invalid: %v", err))
	}
	return table
}

// LoadZoneTableFile reads and validates a zone table from a YAML file.
func LoadZoneTableFile(path string) (*ZoneTable, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("ZONE_TABLE_INVALID").With("path", path).Wrapf(err, "read zone table")
	}
	table, err := LoadZoneTable(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return table, nil
}

// LoadZoneTable parses a YAML zone table, checks it against the zone table
// JSON Schema, and validates cross references between its sections.
func LoadZoneTable(data []byte) (*ZoneTable, error) {
	if err := ValidateZoneTableSchema(data); err != nil {
		return nil, oops.Code("ZONE_TABLE_INVALID").Wrap(err)
	}

	var table ZoneTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, oops.Code("ZONE_TABLE_INVALID").Wrapf(err, "decode zone table")
	}

	for district, mo := range table.MapOffsets {
		if mo.Modulus == 0 {
			mo.Modulus = DefaultModulus
			table.MapOffsets[district] = mo
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks that every district reference is declared and that the
// instance and range sections are consistent.
func (t *ZoneTable) Validate() error {
	if len(t.Districts) == 0 {
		return oops.Code("ZONE_TABLE_INVALID").Errorf("zone table declares no districts")
	}
	for i, d := range t.Districts {
		if d == "" {
			return oops.Code("ZONE_TABLE_INVALID").With("index", i).Errorf("district name is empty")
		}
		if slices.Contains(t.Districts[:i], d) {
			return oops.Code("ZONE_TABLE_INVALID").With("district", d).Errorf("district %q declared twice", d)
		}
	}

	for zone, district := range t.Zones {
		if !t.HasDistrict(district) {
			return oops.Code("ZONE_TABLE_INVALID").
				With("zone_id", zone).
				With("district", district).
				Errorf("zone %d maps to undeclared district %q", zone, district)
		}
	}

	for zone, parent := range t.Instances {
		if _, direct := t.Zones[zone]; direct {
			return oops.Code("ZONE_TABLE_INVALID").
				With("zone_id", zone).
				Errorf("zone %d is both directly mapped and an instance", zone)
		}
		if _, ok := t.Zones[parent]; !ok {
			return oops.Code("ZONE_TABLE_INVALID").
				With("zone_id", zone).
				With("parent_id", parent).
				Errorf("instance %d has unmapped parent zone %d", zone, parent)
		}
	}

	if r := t.LikelyInstance; r != nil {
		if r.Min > r.Max {
			return oops.Code("ZONE_TABLE_INVALID").
				With("min", r.Min).
				With("max", r.Max).
				Errorf("likely instance range is inverted")
		}
		for _, a := range r.Attributions {
			if a.Min > a.Max {
				return oops.Code("ZONE_TABLE_INVALID").
					With("district", a.District).
					Errorf("attribution range %d-%d is inverted", a.Min, a.Max)
			}
			if !r.Contains(a.Min) || !r.Contains(a.Max) {
				return oops.Code("ZONE_TABLE_INVALID").
					With("district", a.District).
					Errorf("attribution range %d-%d lies outside %d-%d", a.Min, a.Max, r.Min, r.Max)
			}
			if !t.HasDistrict(a.District) {
				return oops.Code("ZONE_TABLE_INVALID").
					With("district", a.District).
					Errorf("attribution names undeclared district %q", a.District)
			}
		}
	}

	for district := range t.MapOffsets {
		if !t.HasDistrict(district) {
			return oops.Code("ZONE_TABLE_INVALID").
				With("district", district).
				Errorf("map offset for undeclared district %q", district)
		}
	}

	return nil
}

// HasDistrict reports whether d is declared in the table.
func (t *ZoneTable) HasDistrict(d District) bool {
	return slices.Contains(t.Districts, d)
}

// MapOffsetFor returns the map-identifier constants for a district.
func (t *ZoneTable) MapOffsetFor(d District) (MapOffset, bool) {
	mo, ok := t.MapOffsets[d]
	return mo, ok
}
