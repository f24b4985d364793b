// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package quest

import "strconv"

// Record is the authoritative state of one active task.
// Only the Registry mutates records.
type Record struct {
	ID          string
	Name        string
	Target      int
	Current     int
	Description string
	Completed   bool
}

func newRecord(id, name string, target int, description string) *Record {
	return &Record{
		ID:          id,
		Name:        name,
		Target:      target,
		Description: description,
	}
}

// advance adds amount, clamped to the target. Completed records and
// non-positive amounts are left unchanged. Returns true on the completion edge.
func (r *Record) advance(amount int) bool {
	if r.Completed || amount <= 0 {
		return false
	}
	r.Current = min(r.Current+amount, r.Target)
	if r.Current >= r.Target {
		r.Completed = true
		return true
	}
	return false
}

// Percent returns progress in [0, 1]. Zero when the target is not positive.
func (r *Record) Percent() float64 {
	if r.Target <= 0 {
		return 0
	}
	return float64(r.Current) / float64(r.Target)
}

// ProgressText renders progress as "current/target".
func (r *Record) ProgressText() string {
	return strconv.Itoa(r.Current) + "/" + strconv.Itoa(r.Target)
}

// Snapshot returns a value copy of the record.
func (r *Record) Snapshot() Snapshot {
	return Snapshot{
		ID:          r.ID,
		Name:        r.Name,
		Target:      r.Target,
		Current:     r.Current,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// Snapshot is an immutable view of a record handed to presentation and events.
type Snapshot struct {
	ID          string
	Name        string
	Target      int
	Current     int
	Description string
	Completed   bool
}

// Percent returns progress in [0, 1].
func (s Snapshot) Percent() float64 {
	if s.Target <= 0 {
		return 0
	}
	return float64(s.Current) / float64(s.Target)
}

// ProgressText renders progress as "current/target".
func (s Snapshot) ProgressText() string {
	return strconv.Itoa(s.Current) + "/" + strconv.Itoa(s.Target)
}
