// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Publishes counts Publish calls per event type.
// Use RegisterMetrics to register this with a Prometheus registry.
var Publishes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fountain_bus_publishes_total",
		Help: "Total number of events published by type",
	},
	[]string{"event"},
)

// HandlerFaults counts handlers that returned an error or panicked.
var HandlerFaults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fountain_bus_handler_faults_total",
		Help: "Total number of event handler failures by event type",
	},
	[]string{"event"},
)

// Unheard counts publishes that found no subscribers.
var Unheard = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fountain_bus_unheard_total",
		Help: "Total number of events published with no subscribers",
	},
	[]string{"event"},
)

// RegisterMetrics registers the bus metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Publishes)
	reg.MustRegister(HandlerFaults)
	reg.MustRegister(Unheard)
}

func recordPublish(event string) { Publishes.WithLabelValues(event).Inc() }
func recordFault(event string)   { HandlerFaults.WithLabelValues(event).Inc() }
func recordUnheard(event string) { Unheard.WithLabelValues(event).Inc() }
