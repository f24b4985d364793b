// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package eventbus provides a typed publish/subscribe bus for in-process game
// events.
//
// Event types are plain Go types; the payload's type is the routing key. A
// handler is registered at most once per event type. Publish calls handlers
// synchronously, last-subscribed first, against the set registered when the
// call began. A failing handler is logged and never stops the others.
//
// The bus is built for a single simulation goroutine and does no locking.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/fountain/internal/ids"
	"github.com/holomush/fountain/pkg/errutil"
)

// DefaultHistorySize is the number of publishes kept in the diagnostic log.
const DefaultHistorySize = 50

// Error codes logged by the bus.
const (
	CodeSubscriberFault      = "SUBSCRIBER_FAULT"
	CodeHandlerNotComparable = "HANDLER_NOT_COMPARABLE"
	CodeNilHandler           = "HANDLER_NIL"
)

// Handler receives events of type T.
//
// Handlers are identified by equality, so implementations must be comparable,
// including the values held in any interface fields. Pointer receivers are the
// usual choice.
type Handler[T any] interface {
	HandleEvent(ctx context.Context, event T) error
}

// HandlerFunc adapts a function to Handler. Func values are not comparable;
// subscribe a *HandlerFunc (see NewHandlerFunc) so it can be unsubscribed later.
type HandlerFunc[T any] func(ctx context.Context, event T) error

// HandleEvent calls f.
func (f HandlerFunc[T]) HandleEvent(ctx context.Context, event T) error {
	return f(ctx, event)
}

// NewHandlerFunc wraps fn in a pointer handler with a stable identity.
func NewHandlerFunc[T any](fn func(ctx context.Context, event T) error) *HandlerFunc[T] {
	h := HandlerFunc[T](fn)
	return &h
}

// EventLogEntry records one publish.
type EventLogEntry struct {
	ID        ulid.ULID
	Timestamp time.Time
	Type      string
}

// Bus is the event registry. Construct with New.
type Bus struct {
	handlers    map[reflect.Type][]any
	history     []EventLogEntry
	historySize int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithHistorySize caps the diagnostic log. Values below 1 disable it.
func WithHistorySize(n int) Option {
	return func(b *Bus) { b.historySize = n }
}

// WithClock overrides the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger for diagnostics and subscriber faults.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:    make(map[reflect.Type][]any),
		historySize: DefaultHistorySize,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for events of type T. It returns false if h was already
// registered for T, or cannot be registered (nil or not comparable).
func Subscribe[T any](b *Bus, h Handler[T]) bool {
	key := reflect.TypeFor[T]()
	name := typeName(key)

	if h == nil {
		errutil.LogWarn(b.logger, "ignoring subscription",
			oops.Code(CodeNilHandler).With("event", name).Errorf("nil handler"))
		return false
	}
	if !isComparable(h) {
		errutil.LogWarn(b.logger, "ignoring subscription",
			oops.Code(CodeHandlerNotComparable).
				With("event", name).
				With("handler", fmt.Sprintf("%T", h)).
				Errorf("handler type %T is not comparable; subscribe a pointer", h))
		return false
	}

	if slices.Contains(b.handlers[key], any(h)) {
		return false
	}
	b.handlers[key] = append(b.handlers[key], h)
	b.logger.Debug("subscribed to event", "event", name, "subscribers", len(b.handlers[key]))
	return true
}

// Unsubscribe removes h for events of type T. The type's entry is dropped when
// its last handler leaves. Returns false if h was not registered.
func Unsubscribe[T any](b *Bus, h Handler[T]) bool {
	key := reflect.TypeFor[T]()
	subs, ok := b.handlers[key]
	if !ok || h == nil || !isComparable(h) {
		return false
	}

	idx := slices.Index(subs, any(h))
	if idx < 0 {
		return false
	}

	// Publish iterates over a clone, so deleting in place is safe mid-dispatch.
	subs = slices.Delete(subs, idx, idx+1)
	if len(subs) == 0 {
		delete(b.handlers, key)
	} else {
		b.handlers[key] = subs
	}
	b.logger.Debug("unsubscribed from event", "event", typeName(key), "subscribers", len(subs))
	return true
}

// Publish delivers event to every handler registered for T at the moment of
// the call, in reverse registration order. Handler errors and panics are logged
// as subscriber faults; dispatch continues with the remaining handlers.
func Publish[T any](ctx context.Context, b *Bus, event T) {
	key := reflect.TypeFor[T]()
	name := typeName(key)

	b.record(name)
	recordPublish(name)

	subs := b.handlers[key]
	if len(subs) == 0 {
		recordUnheard(name)
		b.logger.DebugContext(ctx, "event published with no subscribers", "event", name)
		return
	}

	b.logger.DebugContext(ctx, "publishing event", "event", name, "subscribers", len(subs))

	snapshot := slices.Clone(subs)
	for i := len(snapshot) - 1; i >= 0; i-- {
		h, ok := snapshot[i].(Handler[T])
		if !ok {
			continue
		}
		if err := invoke(ctx, h, event); err != nil {
			recordFault(name)
			errutil.Log(ctx, b.logger, slog.LevelError, "event handler failed", subscriberFault(name, h, err))
		}
	}
}

// subscriberFault reports a handler failure under CodeSubscriberFault. The
// cause is flattened so a code it carries cannot shadow the fault code.
func subscriberFault(event string, h any, cause error) error {
	fault := oops.Code(CodeSubscriberFault).
		With("event", event).
		With("handler", fmt.Sprintf("%T", h))
	if code := errutil.Code(cause); code != "" {
		fault = fault.With("cause_code", code)
	}
	return fault.Errorf("handler %T failed: %v", h, cause)
}

// isComparable reports whether h can be compared with == without panicking.
// A comparable struct type holding a func in an interface field is not.
func isComparable(h any) bool {
	return reflect.ValueOf(h).Comparable()
}

// invoke runs one handler, converting a panic into an error.
func invoke[T any](ctx context.Context, h Handler[T], event T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oops.With("panic", fmt.Sprint(r)).Errorf("handler panicked: %v", r)
		}
	}()
	return h.HandleEvent(ctx, event)
}

// Count returns the number of handlers registered for T.
func Count[T any](b *Bus) int {
	return len(b.handlers[reflect.TypeFor[T]()])
}

// ClearAll drops every subscription and the diagnostic log. Used on scene reset.
func (b *Bus) ClearAll() {
	b.handlers = make(map[reflect.Type][]any)
	b.history = nil
	b.logger.Info("cleared all event subscriptions")
}

// History returns a copy of the diagnostic log, oldest first.
func (b *Bus) History() []EventLogEntry {
	return slices.Clone(b.history)
}

// Stats returns the subscriber count per event type name.
func (b *Bus) Stats() map[string]int {
	stats := make(map[string]int, len(b.handlers))
	for key, subs := range b.handlers {
		stats[typeName(key)] = len(subs)
	}
	return stats
}

func (b *Bus) record(name string) {
	if b.historySize < 1 {
		return
	}
	b.history = append(b.history, EventLogEntry{
		ID:        ids.New(),
		Timestamp: b.now(),
		Type:      name,
	})
	if over := len(b.history) - b.historySize; over > 0 {
		b.history = slices.Delete(b.history, 0, over)
	}
}

// typeName renders an event type for logs and metrics, e.g. "eventbus.PauseRequested".
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
