// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Route labels for venueshare_webhook_requests_total.
const (
	RouteVenueSearch = "venue_search"
	RouteHealth      = "health"
)

var webhookRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "venueshare_webhook_requests_total",
		Help: "Total number of webhook requests by route and status code",
	},
	[]string{"route", "status"},
)

var venuesCached = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "venueshare_directory_venues_cached",
		Help: "Number of directory venues held in the webhook cache",
	},
)

// RegisterMetrics registers webhook metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(webhookRequests)
	reg.MustRegister(venuesCached)
}

func recordRequest(route string, status int) {
	webhookRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
