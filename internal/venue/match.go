// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package venue

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// PlaceholderIndex is the ward or plot value a low-confidence resolution
// falls back to. Match does not filter on it.
const PlaceholderIndex = 1

// Match returns the records at loc. World and district match when either
// side contains the other, ignoring case; an empty value on either side
// matches anything. Ward and plot are compared only when both sides are set
// and the requested value is not PlaceholderIndex.
func Match(records []VenueRecord, loc LocationPayload) []VenueRecord {
	server := strings.ToLower(strings.TrimSpace(loc.Server))
	district := strings.ToLower(strings.TrimSpace(loc.District))

	matched := []VenueRecord{}
	for _, r := range records {
		if !looselyEqual(server, strings.ToLower(r.Location.World)) {
			continue
		}
		if !looselyEqual(district, strings.ToLower(r.Location.District)) {
			continue
		}
		if !indexMatches(loc.Ward, r.Location.Ward) {
			continue
		}
		if !indexMatches(loc.Plot, r.Location.Plot) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func looselyEqual(want, have string) bool {
	if want == "" || have == "" {
		return true
	}
	return strings.Contains(have, want) || strings.Contains(want, have)
}

func indexMatches(want, have int) bool {
	if want <= 0 || have <= 0 || want == PlaceholderIndex {
		return true
	}
	return want == have
}

// FilterByName returns the records whose name matches the glob pattern,
// ignoring case. An empty pattern matches every record.
func FilterByName(records []VenueRecord, pattern string) ([]VenueRecord, error) {
	if pattern == "" {
		return records, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, oops.With("pattern", pattern).Wrapf(err, "invalid name pattern")
	}

	filtered := []VenueRecord{}
	for _, r := range records {
		if g.Match(strings.ToLower(r.Name)) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
