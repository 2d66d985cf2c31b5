// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolution results for venueshare_resolutions_total.
const (
	ResultLocated       = "located"
	ResultNoPlayer      = "no_player"
	ResultUntrackable   = "untrackable"
	ResultProviderFault = "provider_fault"
)

// Strategy outcomes for venueshare_strategy_results_total.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeFault = "fault"
)

// Resolutions counts calls to Service.ResolveCurrentLocation by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Resolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "venueshare_resolutions_total",
		Help: "Total number of location resolutions by result",
	},
	[]string{"result"},
)

// StrategyResults counts ward/plot strategy attempts by strategy and outcome.
var StrategyResults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "venueshare_strategy_results_total",
		Help: "Total number of ward/plot strategy attempts by strategy and outcome",
	},
	[]string{"strategy", "outcome"},
)

// LocationChanges counts "location changed" events.
var LocationChanges = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "venueshare_location_changes_total",
		Help: "Total number of distinct housing locations observed",
	},
)

var unmappedZones = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "venueshare_unmapped_zones_total",
		Help: "Total number of distinct unmapped zone IDs seen inside the likely instance range",
	},
)

// RegisterMetrics registers housing metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Resolutions)
	reg.MustRegister(StrategyResults)
	reg.MustRegister(LocationChanges)
	reg.MustRegister(unmappedZones)
}

func recordResolution(result string) {
	Resolutions.WithLabelValues(result).Inc()
}

func recordStrategy(strategy, outcome string) {
	StrategyResults.WithLabelValues(strategy, outcome).Inc()
}
