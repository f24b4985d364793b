// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import (
	"context"

	"github.com/holomush/fountain/internal/scene"
)

// StimulusKind identifies what happened to an object.
type StimulusKind string

// Stimulus kinds.
const (
	StimulusEnter    StimulusKind = "enter"
	StimulusExit     StimulusKind = "exit"
	StimulusInteract StimulusKind = "interact"
)

// Stimulus is an external occurrence delivered to a trigger.
type Stimulus struct {
	Kind   StimulusKind
	Object scene.Object
	// Config is only meaningful for StimulusInteract.
	Config InteractionConfig
}

// Outcome is a policy's verdict on a stimulus.
type Outcome struct {
	// Accepted is true when the stimulus qualified, even if it is worth no
	// progress.
	Accepted bool
	// Amount is the progress the stimulus is worth.
	Amount int
	// Discrete applies Amount as that many +1 updates instead of one call.
	Discrete bool
	// RemoveObject destroys the stimulus object once progress is applied.
	RemoveObject bool
	// Disable stops the trigger from evaluating further stimuli.
	Disable bool
}

// StimulusPolicy decides what a stimulus is worth to a trigger. Policies
// keep their own per-object bookkeeping; the shared state machine lives in
// Trigger.
type StimulusPolicy interface {
	Name() string
	Evaluate(ctx context.Context, st Stimulus) (Outcome, error)
}

func ignore() (Outcome, error) {
	return Outcome{}, nil
}
