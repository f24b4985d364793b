// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package quest

// Presenter creates the on-screen representation of a task. The returned
// Presentation is owned by the presenter; the registry only holds a reference.
type Presenter interface {
	OnTaskCreated(taskID string, task Snapshot, displayNumber string) (Presentation, error)
}

// Presentation receives state changes for one task.
type Presentation interface {
	// OnTaskProgressChanged is called after every progress update, including
	// updates that left the task unchanged.
	OnTaskProgressChanged(task Snapshot)
	// OnTaskCompleted is called once, on the update that completes the task.
	OnTaskCompleted()
	// OnTaskRetired is called when the registry drops the task.
	OnTaskRetired()
}

// Fader is implemented by presentations that animate out before retirement.
// OnTaskFading is called when the visible window after completion ends.
type Fader interface {
	OnTaskFading()
}
