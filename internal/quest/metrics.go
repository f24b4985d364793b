// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package quest

import "github.com/prometheus/client_golang/prometheus"

// Task lifecycle metrics. Use RegisterMetrics to expose them.
var (
	TasksStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fountain_tasks_started_total",
		Help: "Total number of tasks added to the registry",
	})
	TasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fountain_tasks_completed_total",
		Help: "Total number of tasks that reached their target",
	})
	TasksRetired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fountain_tasks_retired_total",
		Help: "Total number of tasks removed after completion",
	})
	TasksActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fountain_tasks_active",
		Help: "Number of tasks currently held by the registry",
	})
)

// RegisterMetrics registers quest metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TasksStarted, TasksCompleted, TasksRetired, TasksActive)
}
