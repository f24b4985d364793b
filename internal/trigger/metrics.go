// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import "github.com/prometheus/client_golang/prometheus"

// Stimulus results recorded in metrics.
const (
	ResultApplied  = "applied"
	ResultAccepted = "accepted"
	ResultIgnored  = "ignored"
	ResultDropped  = "dropped"
)

// Stimuli counts stimuli by policy and result.
var Stimuli = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fountain_trigger_stimuli_total",
		Help: "Stimuli delivered to task triggers by policy and result",
	},
	[]string{"policy", "result"},
)

// RegisterMetrics registers trigger metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Stimuli)
}
