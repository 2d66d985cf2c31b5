// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"log/slog"
)

// Classification records how a zone was attributed to a district.
type Classification string

// Classification outcomes.
const (
	ClassifiedDirect      Classification = "direct"
	ClassifiedInstance    Classification = "instance"
	ClassifiedHeuristic   Classification = "heuristic"
	ClassifiedUnmapped    Classification = "unmapped"
	ClassifiedUntrackable Classification = "untrackable"
)

// Classifier decides whether a zone is trackable and which district it
// belongs to.
//
// A Classifier remembers which unmapped zone IDs it has already reported so
// polling the same zone every frame logs it once. Like Service, it assumes a
// single caller.
type Classifier struct {
	table    *ZoneTable
	logger   *slog.Logger
	reported map[ZoneID]struct{}
}

// NewClassifier creates a classifier over table. A nil logger uses slog.Default.
func NewClassifier(table *ZoneTable, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		table:    table,
		logger:   logger,
		reported: make(map[ZoneID]struct{}),
	}
}

// Table returns the zone table the classifier was built with.
func (c *Classifier) Table() *ZoneTable {
	return c.table
}

// Classify returns the district for zoneID, or false if the zone is not
// trackable.
func (c *Classifier) Classify(zoneID ZoneID) (District, bool) {
	d, how := c.ClassifyDetail(zoneID)
	return d, how == ClassifiedDirect || how == ClassifiedInstance || how == ClassifiedHeuristic
}

// ClassifyDetail is Classify but also reports which rule matched.
func (c *Classifier) ClassifyDetail(zoneID ZoneID) (District, Classification) {
	if d, ok := c.table.Zones[zoneID]; ok {
		return d, ClassifiedDirect
	}

	if parent, ok := c.table.Instances[zoneID]; ok {
		if d, ok := c.table.Zones[parent]; ok {
			return d, ClassifiedInstance
		}
	}

	r := c.table.LikelyInstance
	if r == nil || !r.Contains(zoneID) {
		return "", ClassifiedUntrackable
	}

	for _, a := range r.Attributions {
		if zoneID >= a.Min && zoneID <= a.Max {
			return a.District, ClassifiedHeuristic
		}
	}

	c.reportUnmapped(zoneID)
	return "", ClassifiedUnmapped
}

func (c *Classifier) reportUnmapped(zoneID ZoneID) {
	if _, seen := c.reported[zoneID]; seen {
		return
	}
	c.reported[zoneID] = struct{}{}
	unmappedZones.Inc()
	c.logger.Warn("zone looks like a housing instance but is not mapped",
		"zone_id", uint32(zoneID),
		"range_min", uint32(c.table.LikelyInstance.Min),
		"range_max", uint32(c.table.LikelyInstance.Max),
	)
}
