// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import "context"

// DefaultItemTag is the tag CollectItem counts when none is given.
const DefaultItemTag = "Collectible"

// CollectItem counts each distinct tagged object that enters the volume and
// removes it from the scene.
type CollectItem struct {
	ItemTag string
	seen    map[string]bool
}

// NewCollectItem creates a CollectItem policy. An empty tag means DefaultItemTag.
func NewCollectItem(itemTag string) *CollectItem {
	if itemTag == "" {
		itemTag = DefaultItemTag
	}
	return &CollectItem{ItemTag: itemTag, seen: make(map[string]bool)}
}

// Name implements StimulusPolicy.
func (c *CollectItem) Name() string { return "collect_item" }

// Collected returns how many distinct objects have been counted.
func (c *CollectItem) Collected() int { return len(c.seen) }

// Evaluate implements StimulusPolicy.
func (c *CollectItem) Evaluate(_ context.Context, st Stimulus) (Outcome, error) {
	if st.Kind != StimulusEnter || !st.Object.HasTag(c.ItemTag) {
		return ignore()
	}
	if c.seen[st.Object.ID] {
		return ignore()
	}
	c.seen[st.Object.ID] = true
	return Outcome{Accepted: true, Amount: 1, RemoveObject: true}, nil
}
