// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package journal_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/journal"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/pkg/errutil"
)

// flakyStore fails the first failures appends.
type flakyStore struct {
	*journal.MemoryStore
	failures int
	calls    int
}

func (s *flakyStore) Append(ctx context.Context, e journal.Entry) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("connection reset")
	}
	return s.MemoryStore.Append(ctx, e)
}

func TestRecorder_AppendsOneEntryPerLifecycleEvent(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.DiscardHandler)))
	store := journal.NewMemoryStore()
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := journal.NewRecorder(store, bus, journal.WithClock(func() time.Time { return at }))
	defer rec.Close()
	reg := quest.NewRegistry(quest.WithBus(bus), quest.WithLogger(slog.New(slog.DiscardHandler)))

	reg.AddTask(ctx, quest.NewTask{ID: "q1", Name: "Gems", Target: 2})
	reg.UpdateProgress(ctx, "q1", 1)
	reg.UpdateProgress(ctx, "q1", 1)
	reg.Scheduler().Advance(quest.DefaultVisibleDelay + quest.DefaultFadeDelay)

	got, err := store.Recent(ctx, "q1", 0)
	require.NoError(t, err)
	kinds := make([]journal.Kind, 0, len(got))
	for _, e := range got {
		kinds = append(kinds, e.Kind)
		assert.Equal(t, at, e.At)
		assert.Equal(t, 2, e.Target)
	}
	assert.Equal(t, []journal.Kind{
		journal.KindStarted,
		journal.KindProgressed,
		journal.KindProgressed,
		journal.KindCompleted,
		journal.KindRetired,
	}, kinds)
	assert.Equal(t, 2, got[3].Progress)
}

func TestRecorder_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.DiscardHandler)))
	store := &flakyStore{MemoryStore: journal.NewMemoryStore(), failures: 2}
	rec := journal.NewRecorder(store, bus, journal.WithRetry(2, time.Millisecond))
	defer rec.Close()

	eventbus.Publish(ctx, bus, quest.TaskStarted{Task: quest.Snapshot{ID: "q", Target: 1}, DisplayNumber: "1"})

	assert.Equal(t, 3, store.calls)
	assert.Equal(t, 1, store.Len())
}

func TestRecorder_ExhaustedRetriesBecomeSubscriberFault(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	store := &flakyStore{MemoryStore: journal.NewMemoryStore(), failures: 10}
	rec := journal.NewRecorder(store, bus, journal.WithRetry(1, time.Millisecond))
	defer rec.Close()
	failed := testutil.ToFloat64(journal.Appends.WithLabelValues("failed"))

	eventbus.Publish(ctx, bus, quest.TaskCompleted{Task: quest.Snapshot{ID: "q", Target: 1, Current: 1}})

	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 0, store.Len())
	record := errutil.RequireLoggedCode(t, logs.Bytes(), "event handler failed", eventbus.CodeSubscriberFault)
	assert.Contains(t, record["context"], "cause_code")
	assert.Equal(t, failed+1, testutil.ToFloat64(journal.Appends.WithLabelValues("failed")))
}

func TestRecorder_CloseUnsubscribes(t *testing.T) {
	bus := eventbus.New(eventbus.WithLogger(slog.New(slog.DiscardHandler)))
	rec := journal.NewRecorder(journal.NewMemoryStore(), bus)

	assert.Equal(t, 1, eventbus.Count[quest.TaskStarted](bus))
	rec.Close()
	assert.Equal(t, 0, eventbus.Count[quest.TaskStarted](bus))
	assert.Empty(t, bus.Stats())
}
