// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package journal

import "github.com/prometheus/client_golang/prometheus"

// Appends counts journal appends by result ("ok" or "failed").
var Appends = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fountain_journal_appends_total",
		Help: "Journal appends by result",
	},
	[]string{"result"},
)

// RegisterMetrics registers journal metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Appends)
}
