// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package housing resolves a player's position in the world into a housing
// district, ward and plot.
//
// Resolution is layered: a Classifier decides whether the current zone belongs
// to a housing district, a Resolver runs an ordered chain of strategies to
// estimate the ward and plot, and a Service ties both together with change
// detection against the last location it saw.
package housing

import "strconv"

// ZoneID identifies a world zone as reported by the host.
type ZoneID uint32

// String returns the decimal form of the zone ID.
func (z ZoneID) String() string {
	return strconv.FormatUint(uint64(z), 10)
}

// District names a housing district.
type District string

// Known housing districts.
const (
	Mist         District = "Mist"
	LavenderBeds District = "Lavender Beds"
	Goblet       District = "Goblet"
	Shirogane    District = "Shirogane"
	Empyreum     District = "Empyreum"
)

// String returns the display name of the district.
func (d District) String() string {
	return string(d)
}
