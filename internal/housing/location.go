// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"fmt"
	"time"
)

// Position is a player position in world coordinates. Y is the vertical axis.
type Position struct {
	X float64
	Y float64
	Z float64
}

// WardPlot is a 1-indexed ward and plot pair.
type WardPlot struct {
	Ward int
	Plot int
}

// String returns the pair as "Ward N, Plot M".
func (wp WardPlot) String() string {
	return fmt.Sprintf("Ward %d, Plot %d", wp.Ward, wp.Plot)
}

// Location is a resolved housing location. A new Location is built for every
// resolution; the engine never modifies one after returning it.
type Location struct {
	Server     string
	District   District
	ZoneName   string
	ZoneID     ZoneID
	Ward       int
	Plot       int
	ObservedAt time.Time
}

// Equal reports whether two locations name the same place. Only server,
// district, ward and plot take part, so the same plot seen through different
// sub-zones or at different times compares equal.
func (l Location) Equal(other Location) bool {
	return l.Server == other.Server &&
		l.District == other.District &&
		l.Ward == other.Ward &&
		l.Plot == other.Plot
}

// String returns a short human-readable description.
func (l Location) String() string {
	return fmt.Sprintf("%s Ward %d, Plot %d (%s)", l.District, l.Ward, l.Plot, l.Server)
}

// WardPlot returns the location's ward and plot.
func (l Location) WardPlot() WardPlot {
	return WardPlot{Ward: l.Ward, Plot: l.Plot}
}
