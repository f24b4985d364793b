// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hud

import "github.com/holomush/fountain/internal/quest"

// Visibility is a view's fade state.
type Visibility int

// Visibility states, in lifecycle order.
const (
	Hidden Visibility = iota
	FadingIn
	Visible
	FadingOut
)

// String returns the state name.
func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case FadingIn:
		return "fading-in"
	case Visible:
		return "visible"
	case FadingOut:
		return "fading-out"
	default:
		return "unknown"
	}
}

var (
	_ quest.Presentation = (*View)(nil)
	_ quest.Fader        = (*View)(nil)
)

// View is the on-screen line for one task.
type View struct {
	hud        *HUD
	taskID     string
	number     string
	task       quest.Snapshot
	visibility Visibility
	flash      bool
	updates    int
}

// TaskID returns the task shown by this view.
func (v *View) TaskID() string { return v.taskID }

// DisplayNumber returns the ordering label.
func (v *View) DisplayNumber() string { return v.number }

// Task returns the last task state shown.
func (v *View) Task() quest.Snapshot { return v.task }

// Visibility returns the fade state.
func (v *View) Visibility() Visibility { return v.visibility }

// Flashing reports whether the completion flash is showing.
func (v *View) Flashing() bool { return v.flash }

// Updates returns how many progress refreshes the view has received.
func (v *View) Updates() int { return v.updates }

// OnTaskProgressChanged implements quest.Presentation.
func (v *View) OnTaskProgressChanged(task quest.Snapshot) {
	v.task = task
	v.updates++
	v.hud.touch()
}

// OnTaskCompleted implements quest.Presentation.
func (v *View) OnTaskCompleted() {
	v.flash = true
	v.hud.touch()
}

// OnTaskFading implements quest.Fader.
func (v *View) OnTaskFading() {
	v.hud.sched.Cancel(fadeInKey(v.taskID))
	v.visibility = FadingOut
	v.hud.touch()
}

// OnTaskRetired implements quest.Presentation.
func (v *View) OnTaskRetired() {
	v.visibility = Hidden
	v.hud.remove(v.taskID)
}
