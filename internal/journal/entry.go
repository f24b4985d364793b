// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package journal keeps an append-only record of task lifecycle events.
package journal

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Kind is the lifecycle step an entry records.
type Kind string

// Entry kinds.
const (
	KindStarted    Kind = "started"
	KindProgressed Kind = "progressed"
	KindCompleted  Kind = "completed"
	KindRetired    Kind = "retired"
)

// Validate checks that k is a known kind.
func (k Kind) Validate() error {
	switch k {
	case KindStarted, KindProgressed, KindCompleted, KindRetired:
		return nil
	default:
		return oops.In("journal").Code("INVALID_KIND").With("kind", string(k)).Errorf("unknown journal kind %q", k)
	}
}

// Entry is one journal row.
type Entry struct {
	ID       ulid.ULID
	TaskID   string
	Kind     Kind
	Progress int
	Target   int
	At       time.Time
}

// Store persists journal entries.
type Store interface {
	// Append adds an entry.
	Append(ctx context.Context, e Entry) error
	// Recent returns up to limit of the latest entries for a task, oldest
	// first. An empty taskID matches every task.
	Recent(ctx context.Context, taskID string, limit int) ([]Entry, error)
}
