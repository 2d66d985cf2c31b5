// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"errors"
	"math"
	"strings"
)

// Strategy names.
const (
	StrategyAuthoritative = "authoritative"
	StrategyMapID         = "map_id"
	StrategyLabel         = "label"
	StrategyGeometric     = "geometric"
)

// ErrNoHousingState is returned by a HousingState that has nothing to report,
// for example while the player is outside any plot.
var ErrNoHousingState = errors.New("no housing state available")

// HousingState is the host's authoritative view of the current plot.
// CurrentWardPlot returns 0-indexed values. Implementations are host-specific.
type HousingState interface {
	CurrentWardPlot() (WardPlot, error)
}

// AuthoritativeStrategy asks the host for the exact ward and plot.
type AuthoritativeStrategy struct {
	state HousingState
}

// NewAuthoritativeStrategy wraps state. A nil state never answers.
func NewAuthoritativeStrategy(state HousingState) *AuthoritativeStrategy {
	return &AuthoritativeStrategy{state: state}
}

// Name implements Strategy.
func (s *AuthoritativeStrategy) Name() string { return StrategyAuthoritative }

// TryResolve implements Strategy.
func (s *AuthoritativeStrategy) TryResolve(_ Query) (WardPlot, bool, error) {
	if s.state == nil {
		return WardPlot{}, false, nil
	}
	wp, err := s.state.CurrentWardPlot()
	if errors.Is(err, ErrNoHousingState) {
		return WardPlot{}, false, nil
	}
	if err != nil {
		return WardPlot{}, false, err
	}
	if wp.Ward < 0 || wp.Plot < 0 {
		return WardPlot{}, false, nil
	}
	return WardPlot{Ward: wp.Ward + 1, Plot: wp.Plot + 1}, true, nil
}

// MapIDStrategy decodes an approximate ward from the host's map identifier:
// ward = ((mapID - offset) mod modulus) + 1, using per-district constants.
type MapIDStrategy struct {
	table *ZoneTable
}

// NewMapIDStrategy creates a map-identifier strategy backed by table.
func NewMapIDStrategy(table *ZoneTable) *MapIDStrategy {
	return &MapIDStrategy{table: table}
}

// Name implements Strategy.
func (s *MapIDStrategy) Name() string { return StrategyMapID }

// TryResolve implements Strategy.
func (s *MapIDStrategy) TryResolve(q Query) (WardPlot, bool, error) {
	if q.MapID == 0 || s.table == nil {
		return WardPlot{}, false, nil
	}
	mo, ok := s.table.MapOffsetFor(q.District)
	if !ok {
		return WardPlot{}, false, nil
	}
	modulus := int64(mo.Modulus)
	if modulus <= 0 {
		modulus = DefaultModulus
	}

	ward := (int64(q.MapID) - int64(mo.Offset)) % modulus
	if ward < 0 {
		ward += modulus
	}
	return WardPlot{Ward: int(ward) + 1, Plot: estimatePlot(q.Position)}, true, nil
}

// LabelStrategy reads the ward and plot from on-screen location text such as
// "Mist, Ward 5, Plot 12".
type LabelStrategy struct{}

// NewLabelStrategy creates a label strategy.
func NewLabelStrategy() *LabelStrategy {
	return &LabelStrategy{}
}

// Name implements Strategy.
func (s *LabelStrategy) Name() string { return StrategyLabel }

// TryResolve implements Strategy. Labels that do not parse, or that name a
// different district than the zone, are not an answer.
func (s *LabelStrategy) TryResolve(q Query) (WardPlot, bool, error) {
	if strings.TrimSpace(q.Label) == "" {
		return WardPlot{}, false, nil
	}
	label, err := ParseLabel(q.Label)
	if err != nil {
		return WardPlot{}, false, nil
	}
	if label.District != "" && q.District != "" && !strings.EqualFold(label.District, string(q.District)) {
		return WardPlot{}, false, nil
	}

	wp := WardPlot{Ward: label.Ward, Plot: label.Plot}
	if wp.Plot < 1 {
		wp.Plot = estimatePlot(q.Position)
	}
	return wp, wp.Ward >= 1, nil
}

// GeometricStrategy estimates the ward and plot from the horizontal position.
// It is the least reliable strategy and needs per-district calibration.
type GeometricStrategy struct{}

// NewGeometricStrategy creates a geometric strategy.
func NewGeometricStrategy() *GeometricStrategy {
	return &GeometricStrategy{}
}

// Name implements Strategy.
func (s *GeometricStrategy) Name() string { return StrategyGeometric }

// TryResolve implements Strategy.
func (s *GeometricStrategy) TryResolve(q Query) (WardPlot, bool, error) {
	if !finite(q.Position.X) || !finite(q.Position.Z) {
		return WardPlot{}, false, nil
	}
	return WardPlot{Ward: estimateWard(q.Position), Plot: estimatePlot(q.Position)}, true, nil
}

// estimateWard is floor(|x|/100) mod 24 + 1 for |x| > 100, else 1.
func estimateWard(p Position) int {
	x := math.Abs(p.X)
	if !finite(x) || x <= 100 {
		return 1
	}
	return int(math.Mod(math.Floor(x/100), 24)) + 1
}

// estimatePlot is floor(|z|/20) mod 60 + 1 for |z| > 50, else 1.
func estimatePlot(p Position) int {
	z := math.Abs(p.Z)
	if !finite(z) || z <= 50 {
		return 1
	}
	return int(math.Mod(math.Floor(z/20), 60)) + 1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
