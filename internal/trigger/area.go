// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import "context"

// DefaultPlayerTag is the tag AreaEnter watches for when none is given.
const DefaultPlayerTag = "Player"

// AreaEnter fires once, on the first enter edge of a tagged object, and then
// disables its trigger.
type AreaEnter struct {
	PlayerTag string
	inside    map[string]bool
}

// NewAreaEnter creates an AreaEnter policy. An empty tag means DefaultPlayerTag.
func NewAreaEnter(playerTag string) *AreaEnter {
	if playerTag == "" {
		playerTag = DefaultPlayerTag
	}
	return &AreaEnter{PlayerTag: playerTag, inside: make(map[string]bool)}
}

// Name implements StimulusPolicy.
func (a *AreaEnter) Name() string { return "area_enter" }

// Inside reports whether the object is currently inside the volume.
func (a *AreaEnter) Inside(objectID string) bool { return a.inside[objectID] }

// Evaluate implements StimulusPolicy.
func (a *AreaEnter) Evaluate(_ context.Context, st Stimulus) (Outcome, error) {
	if !st.Object.HasTag(a.PlayerTag) {
		return ignore()
	}
	switch st.Kind {
	case StimulusEnter:
		if a.inside[st.Object.ID] {
			return ignore()
		}
		a.inside[st.Object.ID] = true
		return Outcome{Accepted: true, Amount: 1, Disable: true}, nil
	case StimulusExit:
		delete(a.inside, st.Object.ID)
	}
	return ignore()
}
