// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/venueshare/venueshare/pkg/errutil"
)

// Fallback is the ward and plot reported when no strategy produces a result.
var Fallback = WardPlot{Ward: 1, Plot: 1}

// FallbackStrategy names the fallback in a Resolution.
const FallbackStrategy = "fallback"

// Query is the input to a single ward/plot resolution.
type Query struct {
	ZoneID   ZoneID
	District District
	Position Position
	// MapID is the host's map identifier for the current zone, 0 if unknown.
	MapID uint32
	// Label is on-screen location text, empty if unavailable.
	Label string
}

// Strategy is one way of estimating the ward and plot.
//
// TryResolve returns a 1-indexed pair and true when it has an answer, false
// when it does not. An error means the strategy failed outright; the resolver
// treats it like "no answer" and moves on.
type Strategy interface {
	Name() string
	TryResolve(q Query) (WardPlot, bool, error)
}

// Resolution is the outcome of Resolver.Resolve.
type Resolution struct {
	WardPlot
	// Strategy is the name of the strategy that produced the pair.
	Strategy string
}

// Resolver runs strategies in order and returns the first confident answer.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewResolver creates a resolver over strategies, tried in the given order.
func NewResolver(logger *slog.Logger, strategies ...Strategy) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logger,
	}
}

// DefaultStrategies returns the standard chain: authoritative state,
// map-identifier decoding, label inspection and geometric estimation.
// state may be nil when the host has no authoritative housing data.
func DefaultStrategies(table *ZoneTable, state HousingState) []Strategy {
	return []Strategy{
		NewAuthoritativeStrategy(state),
		NewMapIDStrategy(table),
		NewLabelStrategy(),
		NewGeometricStrategy(),
	}
}

// Strategies returns the names of the configured strategies in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve always succeeds; it returns Fallback when every strategy declines.
func (r *Resolver) Resolve(q Query) Resolution {
	for _, s := range r.strategies {
		wp, ok := r.try(s, q)
		if !ok {
			continue
		}
		if wp.Plot < 1 {
			wp.Plot = 1
		}
		return Resolution{WardPlot: wp, Strategy: s.Name()}
	}
	return Resolution{WardPlot: Fallback, Strategy: FallbackStrategy}
}

func (r *Resolver) try(s Strategy, q Query) (result WardPlot, accepted bool) {
	name := s.Name()

	defer func() {
		if p := recover(); p != nil {
			err := oops.Code("STRATEGY_FAILED").
				With("strategy", name).
				With("zone_id", uint32(q.ZoneID)).
				Errorf("strategy panicked: %v", p)
			errutil.LogError(r.logger, "ward/plot strategy failed", err)
			recordStrategy(name, OutcomeFault)
			result, accepted = WardPlot{}, false
		}
	}()

	wp, ok, err := s.TryResolve(q)
	if err != nil {
		err = oops.Code("STRATEGY_FAILED").
			With("strategy", name).
			With("zone_id", uint32(q.ZoneID)).
			Wrap(err)
		errutil.LogError(r.logger, "ward/plot strategy failed", err)
		recordStrategy(name, OutcomeFault)
		return WardPlot{}, false
	}
	if !ok || wp.Ward < 1 {
		recordStrategy(name, OutcomeMiss)
		return WardPlot{}, false
	}

	recordStrategy(name, OutcomeHit)
	return wp, true
}
