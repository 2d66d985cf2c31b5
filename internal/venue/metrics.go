// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package venue

import "github.com/prometheus/client_golang/prometheus"

// Dispatch operations.
const (
	OperationSubmit    = "submit"
	OperationDirectory = "directory"
)

// Dispatch statuses.
const (
	StatusOK       = "ok"
	StatusDisabled = "disabled"
	StatusError    = "error"
	StatusRejected = "rejected"
)

// DispatchTotal counts dispatcher calls by operation and status.
var DispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "venueshare_dispatch_total",
		Help: "Total number of notification dispatcher calls by operation and status",
	},
	[]string{"operation", "status"},
)

// RegisterMetrics registers venue metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(DispatchTotal)
}

func recordDispatch(operation, status string) {
	DispatchTotal.WithLabelValues(operation, status).Inc()
}
