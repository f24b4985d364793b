// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ids generates the ULIDs used for event log entries, generated task
// IDs and journal rows.
package ids

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Generator produces monotonic ULIDs. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator creates a generator reading randomness from entropy and the
// timestamp from now. Tests pass a fixed reader and clock.
func NewGenerator(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// New returns the next ULID.
func (g *Generator) New() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

var defaultGenerator = NewGenerator(rand.Reader, time.Now)

// New returns a ULID from the process-wide generator.
func New() ulid.ULID {
	return defaultGenerator.New()
}

// NewString returns a ULID from the process-wide generator in canonical form.
func NewString() string {
	return defaultGenerator.New().String()
}

// Parse parses a ULID string.
func Parse(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ULID").With("value", s).Wrap(err)
	}
	return id, nil
}
