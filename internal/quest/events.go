// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package quest

// Lifecycle events published on the event bus by the Registry.

// TaskStarted is published when a task is added.
type TaskStarted struct {
	Task          Snapshot
	DisplayNumber string
}

// TaskProgressed is published after every progress update.
type TaskProgressed struct {
	Task   Snapshot
	Amount int
}

// TaskCompleted is published once, when a task reaches its target.
type TaskCompleted struct {
	Task Snapshot
}

// TaskRetired is published after a completed task is removed.
type TaskRetired struct {
	Task Snapshot
}
