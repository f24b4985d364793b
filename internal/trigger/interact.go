// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import "context"

// InteractionConfig gates how an interaction counts toward a task.
// It is passed by value.
type InteractionConfig struct {
	AllowRepeatInteraction  bool `yaml:"allow_repeat" json:"allow_repeat,omitempty"`
	CountProgressOnlyOnce   bool `yaml:"count_once" json:"count_once,omitempty"`
	DestroyTargetOnInteract bool `yaml:"destroy_target" json:"destroy_target,omitempty"`
	ProgressPerInteraction  int  `yaml:"progress" json:"progress,omitempty"`
}

// DefaultInteractionConfig returns a single-use, one-progress interaction.
func DefaultInteractionConfig() InteractionConfig {
	return InteractionConfig{
		CountProgressOnlyOnce:  true,
		ProgressPerInteraction: 1,
	}
}

// Normalize returns c with ProgressPerInteraction raised to at least one.
func (c InteractionConfig) Normalize() InteractionConfig {
	if c.ProgressPerInteraction < 1 {
		c.ProgressPerInteraction = 1
	}
	return c
}

// InteractTask counts explicit interactions with matching objects. Progress
// is applied as discrete +1 updates.
type InteractTask struct {
	Match   *Matcher
	visited map[string]bool
}

// NewInteractTask creates an InteractTask policy. A nil matcher accepts every object.
func NewInteractTask(match *Matcher) *InteractTask {
	return &InteractTask{Match: match, visited: make(map[string]bool)}
}

// Name implements StimulusPolicy.
func (i *InteractTask) Name() string { return "interact" }

// Visited reports whether the object has already been interacted with.
func (i *InteractTask) Visited(objectID string) bool { return i.visited[objectID] }

// Evaluate implements StimulusPolicy.
func (i *InteractTask) Evaluate(_ context.Context, st Stimulus) (Outcome, error) {
	if st.Kind != StimulusInteract || !i.Match.Match(st.Object) {
		return ignore()
	}
	cfg := st.Config.Normalize()
	seen := i.visited[st.Object.ID]

	if seen && !cfg.AllowRepeatInteraction {
		return ignore()
	}
	i.visited[st.Object.ID] = true

	out := Outcome{
		Accepted:     true,
		Discrete:     true,
		RemoveObject: cfg.DestroyTargetOnInteract,
	}
	if !(seen && cfg.CountProgressOnlyOnce) {
		out.Amount = cfg.ProgressPerInteraction
	}
	return out, nil
}
