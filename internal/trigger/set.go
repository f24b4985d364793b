// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import (
	"context"
	"log/slog"

	"github.com/holomush/fountain/pkg/errutil"
)

// Set holds a level's triggers keyed by task ID, in insertion order.
type Set struct {
	byID   map[string]*Trigger
	order  []*Trigger
	logger *slog.Logger
}

// NewSet creates an empty set.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{byID: make(map[string]*Trigger), logger: logger}
}

// Add registers t under its task ID.
func (s *Set) Add(t *Trigger) error {
	if t == nil {
		return ErrTriggerNil()
	}
	if _, exists := s.byID[t.TaskID()]; exists {
		return ErrTriggerDuplicate(t.TaskID())
	}
	s.byID[t.TaskID()] = t
	s.order = append(s.order, t)
	return nil
}

// Lookup returns the trigger for a task ID.
func (s *Set) Lookup(taskID string) (*Trigger, bool) {
	t, ok := s.byID[taskID]
	return t, ok
}

// At returns the trigger at index i in insertion order. An out-of-range
// index is logged and reported as missing.
func (s *Set) At(ctx context.Context, i int) (*Trigger, bool) {
	if i < 0 || i >= len(s.order) {
		errutil.Log(ctx, s.logger, slog.LevelWarn, "trigger lookup failed", ErrTriggerIndexInvalid(i, len(s.order)))
		return nil, false
	}
	return s.order[i], true
}

// All returns the triggers in insertion order.
func (s *Set) All() []*Trigger {
	out := make([]*Trigger, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of triggers.
func (s *Set) Len() int {
	return len(s.order)
}

// Completed returns how many triggers have reached their target.
func (s *Set) Completed() int {
	n := 0
	for _, t := range s.order {
		if t.State() == StateCompleted {
			n++
		}
	}
	return n
}
