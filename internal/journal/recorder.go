// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/ids"
	"github.com/holomush/fountain/internal/quest"
)

// Default append retry policy.
const (
	DefaultRetries   = 2
	DefaultRetryBase = 10 * time.Millisecond
)

// Recorder appends an entry for every task lifecycle event on the bus.
// A failed append, after retries, is returned to the bus as a handler error.
type Recorder struct {
	store     Store
	bus       *eventbus.Bus
	retries   uint64
	retryBase time.Duration
	now       func() time.Time
	logger    *slog.Logger

	onStarted    *eventbus.HandlerFunc[quest.TaskStarted]
	onProgressed *eventbus.HandlerFunc[quest.TaskProgressed]
	onCompleted  *eventbus.HandlerFunc[quest.TaskCompleted]
	onRetired    *eventbus.HandlerFunc[quest.TaskRetired]
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRetry sets how many times a failed append is retried and the base of
// the exponential backoff between attempts.
func WithRetry(retries uint64, base time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.retries = retries
		if base > 0 {
			r.retryBase = base
		}
	}
}

// WithClock sets the clock used to stamp entries.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the recorder logger.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder subscribes a recorder to the quest lifecycle events on bus.
func NewRecorder(store Store, bus *eventbus.Bus, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:     store,
		bus:       bus,
		retries:   DefaultRetries,
		retryBase: DefaultRetryBase,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.onStarted = eventbus.NewHandlerFunc(func(ctx context.Context, e quest.TaskStarted) error {
		return r.record(ctx, KindStarted, e.Task)
	})
	r.onProgressed = eventbus.NewHandlerFunc(func(ctx context.Context, e quest.TaskProgressed) error {
		return r.record(ctx, KindProgressed, e.Task)
	})
	r.onCompleted = eventbus.NewHandlerFunc(func(ctx context.Context, e quest.TaskCompleted) error {
		return r.record(ctx, KindCompleted, e.Task)
	})
	r.onRetired = eventbus.NewHandlerFunc(func(ctx context.Context, e quest.TaskRetired) error {
		return r.record(ctx, KindRetired, e.Task)
	})

	eventbus.Subscribe[quest.TaskStarted](bus, r.onStarted)
	eventbus.Subscribe[quest.TaskProgressed](bus, r.onProgressed)
	eventbus.Subscribe[quest.TaskCompleted](bus, r.onCompleted)
	eventbus.Subscribe[quest.TaskRetired](bus, r.onRetired)
	return r
}

// Close unsubscribes the recorder.
func (r *Recorder) Close() {
	eventbus.Unsubscribe[quest.TaskStarted](r.bus, r.onStarted)
	eventbus.Unsubscribe[quest.TaskProgressed](r.bus, r.onProgressed)
	eventbus.Unsubscribe[quest.TaskCompleted](r.bus, r.onCompleted)
	eventbus.Unsubscribe[quest.TaskRetired](r.bus, r.onRetired)
}

func (r *Recorder) record(ctx context.Context, kind Kind, task quest.Snapshot) error {
	entry := Entry{
		ID:       ids.New(),
		TaskID:   task.ID,
		Kind:     kind,
		Progress: task.Current,
		Target:   task.Target,
		At:       r.now(),
	}

	attempt := 0
	backoff := retry.WithMaxRetries(r.retries, retry.NewExponential(r.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := r.store.Append(ctx, entry); err != nil {
			r.logger.DebugContext(ctx, "journal append failed", "task_id", entry.TaskID, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		Appends.WithLabelValues("failed").Inc()
		return oops.In("journal").
			Code("JOURNAL_APPEND_FAILED").
			With("task_id", entry.TaskID).
			With("kind", string(kind)).
			With("attempts", attempt).
			Wrap(err)
	}
	Appends.WithLabelValues("ok").Inc()
	return nil
}
