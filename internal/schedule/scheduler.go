// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package schedule runs deferred actions against a simulated clock.
//
// Nothing here blocks or spawns goroutines: actions become due as the owner
// calls Advance from its tick, and run inline on that caller's goroutine.
package schedule

import "time"

// Action is a deferred continuation.
type Action func()

type item struct {
	key string
	due time.Duration
	seq uint64
	fn  Action
}

// Scheduler holds pending actions keyed by a caller-chosen string.
// At most one action is pending per key.
//
// Scheduler is not safe for concurrent use.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	items map[string]*item
}

// New creates a scheduler with its clock at zero.
func New() *Scheduler {
	return &Scheduler{items: make(map[string]*item)}
}

// Now returns the simulated time elapsed since creation.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once delay has elapsed. A pending action with the
// same key is replaced. Negative delays are treated as zero.
func (s *Scheduler) After(key string, delay time.Duration, fn Action) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.items[key] = &item{key: key, due: s.now + delay, seq: s.seq, fn: fn}
}

// Cancel drops the pending action for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// Pending reports whether an action is scheduled for key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.items[key]
	return ok
}

// Due returns when the action for key becomes due.
func (s *Scheduler) Due(key string) (time.Duration, bool) {
	it, ok := s.items[key]
	if !ok {
		return 0, false
	}
	return it.due, true
}

// Len returns the number of pending actions.
func (s *Scheduler) Len() int {
	return len(s.items)
}

// Advance moves the clock forward by dt and runs every action that falls due,
// earliest first and in scheduling order for equal due times. The clock reads
// each action's due time while it runs. Actions scheduled by a running action
// run in the same call if they fall due before the new time.
// Returns the number of actions run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	ran := 0
	for {
		next := s.earliest(target)
		if next == nil {
			break
		}
		delete(s.items, next.key)
		s.now = next.due
		next.fn()
		ran++
	}
	s.now = target
	return ran
}

// earliest returns the first due action at or before limit.
func (s *Scheduler) earliest(limit time.Duration) *item {
	var best *item
	for _, it := range s.items {
		if it.due > limit {
			continue
		}
		if best == nil || it.due < best.due || (it.due == best.due && it.seq < best.seq) {
			best = it
		}
	}
	return best
}
