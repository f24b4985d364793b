// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package quest tracks task progress and drives task presentation.
//
// The Registry owns every active Record. A record is created by AddTask,
// advanced by UpdateProgress and, once completed, retired after a visible
// window plus a fade window. Retirement is deferred work on a
// schedule.Scheduler, so nothing here blocks the caller's tick.
package quest

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/schedule"
	"github.com/holomush/fountain/pkg/errutil"
)

// Default retirement timing after completion.
const (
	DefaultVisibleDelay = 2 * time.Second
	DefaultFadeDelay    = 500 * time.Millisecond
)

// NewTask describes a task to add.
type NewTask struct {
	ID          string
	Name        string
	Target      int
	Description string
	// DisplayNumber orders the task on screen. Empty means the active-task
	// count after insertion.
	DisplayNumber string
}

// Registry is the sole owner of active task records and of the task to
// presentation bindings. It is not safe for concurrent use.
type Registry struct {
	tasks     map[string]*Record
	views     map[string]Presentation
	presenter Presenter
	scheduler *schedule.Scheduler
	bus       *eventbus.Bus
	visible   time.Duration
	fade      time.Duration
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithPresenter sets the presentation collaborator. Without one, tasks run
// with no presentation binding.
func WithPresenter(p Presenter) Option {
	return func(r *Registry) { r.presenter = p }
}

// WithScheduler sets the scheduler that runs retirement.
func WithScheduler(s *schedule.Scheduler) Option {
	return func(r *Registry) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithBus publishes lifecycle events on b.
func WithBus(b *eventbus.Bus) Option {
	return func(r *Registry) { r.bus = b }
}

// WithRetirement overrides the visible and fade windows after completion.
func WithRetirement(visible, fade time.Duration) Option {
	return func(r *Registry) {
		r.visible = max(visible, 0)
		r.fade = max(fade, 0)
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry. Without WithScheduler it owns a
// private scheduler, reachable through Scheduler.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tasks:     make(map[string]*Record),
		views:     make(map[string]Presentation),
		scheduler: schedule.New(),
		visible:   DefaultVisibleDelay,
		fade:      DefaultFadeDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scheduler returns the scheduler that runs retirement.
func (r *Registry) Scheduler() *schedule.Scheduler {
	return r.scheduler
}

// AddTask creates a record for t and asks the presenter to show it.
// A duplicate ID or a target below one is logged and ignored.
// Returns true if the task was created.
func (r *Registry) AddTask(ctx context.Context, t NewTask) bool {
	r.logger.DebugContext(ctx, "add task", "task_id", t.ID, "name", t.Name)

	if _, exists := r.tasks[t.ID]; exists {
		errutil.Log(ctx, r.logger, slog.LevelWarn, "task not added", ErrTaskDuplicate(t.ID))
		return false
	}
	if t.Target < 1 {
		errutil.Log(ctx, r.logger, slog.LevelWarn, "task not added", ErrTaskInvalidTarget(t.ID, t.Target))
		return false
	}

	rec := newRecord(t.ID, t.Name, t.Target, t.Description)
	r.tasks[t.ID] = rec
	TasksStarted.Inc()
	TasksActive.Inc()

	number := t.DisplayNumber
	if number == "" {
		number = strconv.Itoa(len(r.tasks))
	}
	r.bind(ctx, rec, number)

	r.logger.DebugContext(ctx, "task added",
		"task_id", t.ID,
		"target", t.Target,
		"display_number", number,
		"active_tasks", len(r.tasks))

	publish(ctx, r.bus, TaskStarted{Task: rec.Snapshot(), DisplayNumber: number})
	return true
}

func (r *Registry) bind(ctx context.Context, rec *Record, number string) {
	if r.presenter == nil {
		return
	}
	view, err := r.presenter.OnTaskCreated(rec.ID, rec.Snapshot(), number)
	if err != nil {
		errutil.Log(ctx, r.logger, slog.LevelError, "task presentation not created", ErrPresenterFailed(rec.ID, err))
		return
	}
	if view == nil {
		return
	}
	r.views[rec.ID] = view
}

// UpdateProgress adds amount to the task, clamped at its target. The bound
// presentation is refreshed on every call. On the update that completes the
// task, the presentation is told and retirement is scheduled.
// Returns false if the task is unknown.
func (r *Registry) UpdateProgress(ctx context.Context, taskID string, amount int) bool {
	rec, ok := r.tasks[taskID]
	if !ok {
		errutil.Log(ctx, r.logger, slog.LevelWarn, "progress not applied", ErrTaskUnknown(taskID))
		return false
	}

	completed := rec.advance(amount)
	r.logger.DebugContext(ctx, "task progress updated",
		"task_id", taskID,
		"amount", amount,
		"progress", rec.ProgressText(),
		"completed", rec.Completed)

	view := r.views[taskID]
	if view != nil {
		view.OnTaskProgressChanged(rec.Snapshot())
	}
	publish(ctx, r.bus, TaskProgressed{Task: rec.Snapshot(), Amount: amount})

	if completed {
		TasksCompleted.Inc()
		if view != nil {
			view.OnTaskCompleted()
		}
		publish(ctx, r.bus, TaskCompleted{Task: rec.Snapshot()})
		r.scheduleRetirement(ctx, taskID)
	}
	return true
}

func retireKey(taskID string) string {
	return "quest.retire:" + taskID
}

// scheduleRetirement fades the presentation after the visible window and
// retires the task after the fade window.
func (r *Registry) scheduleRetirement(ctx context.Context, taskID string) {
	// Retirement outlives the call that completed the task.
	ctx = context.WithoutCancel(ctx)
	key := retireKey(taskID)

	r.logger.DebugContext(ctx, "retirement scheduled",
		"task_id", taskID,
		"visible", r.visible,
		"fade", r.fade)

	r.scheduler.After(key, r.visible, func() {
		if f, ok := r.views[taskID].(Fader); ok {
			f.OnTaskFading()
		}
		r.scheduler.After(key, r.fade, func() {
			r.retire(ctx, taskID)
		})
	})
}

// retire unbinds the presentation, then drops the record.
func (r *Registry) retire(ctx context.Context, taskID string) {
	rec, ok := r.tasks[taskID]
	if !ok {
		return
	}
	if view, bound := r.views[taskID]; bound {
		view.OnTaskRetired()
		delete(r.views, taskID)
	}
	delete(r.tasks, taskID)
	TasksRetired.Inc()
	TasksActive.Dec()

	r.logger.DebugContext(ctx, "task retired", "task_id", taskID, "active_tasks", len(r.tasks))
	publish(ctx, r.bus, TaskRetired{Task: rec.Snapshot()})
}

// DetachPresentation drops the binding for a presentation destroyed by its
// owner. A completed task awaiting retirement is retired immediately and its
// pending retirement is cancelled; an unfinished task keeps running unbound.
// Returns false if no presentation was bound.
func (r *Registry) DetachPresentation(ctx context.Context, taskID string) bool {
	if _, bound := r.views[taskID]; !bound {
		return false
	}
	delete(r.views, taskID)

	if r.scheduler.Cancel(retireKey(taskID)) {
		r.logger.DebugContext(ctx, "retirement cancelled by presentation teardown", "task_id", taskID)
		r.retire(ctx, taskID)
	}
	return true
}

// ActiveTasks returns the live record map for diagnostics. Callers must not
// mutate it or the records.
func (r *Registry) ActiveTasks() map[string]*Record {
	return r.tasks
}

// ActivePresentations returns the live binding map for diagnostics. Callers
// must not mutate it.
func (r *Registry) ActivePresentations() map[string]Presentation {
	return r.views
}

// Snapshot returns a copy of the task's state.
func (r *Registry) Snapshot(taskID string) (Snapshot, bool) {
	rec, ok := r.tasks[taskID]
	if !ok {
		return Snapshot{}, false
	}
	return rec.Snapshot(), true
}

// RetirementPending reports whether the task is waiting to be retired.
func (r *Registry) RetirementPending(taskID string) bool {
	return r.scheduler.Pending(retireKey(taskID))
}

// Len returns the number of active tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}

func publish[T any](ctx context.Context, bus *eventbus.Bus, event T) {
	if bus == nil {
		return
	}
	eventbus.Publish(ctx, bus, event)
}
