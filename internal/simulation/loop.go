// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package simulation replays a level script through the quest core on a
// fixed-step simulated clock.
package simulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/fountain/internal/catalog"
	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/panel"
	"github.com/holomush/fountain/internal/schedule"
	"github.com/holomush/fountain/pkg/errutil"
)

// DefaultStep is the simulated time covered by one tick.
const DefaultStep = 50 * time.Millisecond

// CodeStepSkipped is logged for script steps that name a missing trigger,
// object or collectible.
const CodeStepSkipped = "STEP_SKIPPED"

// StopReason says why Run returned.
type StopReason string

// Stop reasons.
const (
	StopFinished  StopReason = "finished"
	StopMaxTicks  StopReason = "max_ticks"
	StopCancelled StopReason = "cancelled"
	// StopPaused means the script ended with the game paused while deferred
	// work was still pending. Paused time never reaches it.
	StopPaused StopReason = "paused"
)

// Tick describes one completed step of the loop.
type Tick struct {
	N int
	// Elapsed is script time at the end of the tick.
	Elapsed time.Duration
	// Applied counts script steps run during the tick.
	Applied int
	// Ran counts deferred actions the scheduler ran during the tick.
	Ran int
}

// Result summarizes a run.
type Result struct {
	Ticks   int
	Elapsed time.Duration
	Skipped int
	Reason  StopReason
}

// Deps are the services a loop drives. Scheduler and Bus are required.
type Deps struct {
	Scheduler *schedule.Scheduler
	Bus       *eventbus.Bus
	// Panels, when set, scales deferred time by its TimeScale so pausing
	// freezes fades and retirements.
	Panels *panel.Manager
	// Locales, when set, handles locale steps. Otherwise they publish
	// LocaleChanged directly.
	Locales *panel.Locales
	Logger  *slog.Logger
}

// Loop is a fixed-step tick over a built level.
// It is not safe for concurrent use.
type Loop struct {
	Step     time.Duration
	MaxTicks int
	OnTick   func(ctx context.Context, tick Tick)

	level   *catalog.Level
	deps    Deps
	logger  *slog.Logger
	cursor  int
	ticks   int
	elapsed time.Duration
	skipped int
}

// Option configures a Loop.
type Option func(*Loop)

// WithStep sets the tick length. Non-positive values keep DefaultStep.
func WithStep(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.Step = d
		}
	}
}

// WithMaxTicks stops Run after n ticks. Zero means no limit.
func WithMaxTicks(n int) Option {
	return func(l *Loop) { l.MaxTicks = max(n, 0) }
}

// WithOnTick sets a hook called after every tick.
func WithOnTick(fn func(ctx context.Context, tick Tick)) Option {
	return func(l *Loop) { l.OnTick = fn }
}

// New creates a loop positioned before the first script step.
func New(level *catalog.Level, deps Deps, opts ...Option) (*Loop, error) {
	if level == nil || deps.Scheduler == nil || deps.Bus == nil {
		return nil, oops.In("simulation").
			Code("SIMULATION_DEPS_MISSING").
			Errorf("level, scheduler and bus are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		Step:   DefaultStep,
		level:  level,
		deps:   deps,
		logger: logger.With("level", level.Name),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Elapsed returns script time since the loop started.
func (l *Loop) Elapsed() time.Duration { return l.elapsed }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() int { return l.ticks }

// Remaining returns the number of script steps not yet applied.
func (l *Loop) Remaining() int { return len(l.level.Script) - l.cursor }

// Done reports whether the script is exhausted and no deferred work remains.
func (l *Loop) Done() bool {
	return l.Remaining() == 0 && l.deps.Scheduler.Len() == 0
}

// Stalled reports whether the script is exhausted and the game is paused
// with deferred work pending. No further tick can make progress.
func (l *Loop) Stalled() bool {
	return l.Remaining() == 0 && !l.Done() && l.paused()
}

// Tick applies the script steps due now, then advances deferred time by one
// step scaled by the panel time scale.
func (l *Loop) Tick(ctx context.Context) Tick {
	applied := 0
	for l.cursor < len(l.level.Script) {
		step := l.level.Script[l.cursor]
		if step.At.Std() > l.elapsed {
			break
		}
		l.cursor++
		applied++
		l.apply(ctx, step)
	}

	ran := l.deps.Scheduler.Advance(l.scaled(l.Step))
	l.elapsed += l.Step
	l.ticks++

	tick := Tick{N: l.ticks, Elapsed: l.elapsed, Applied: applied, Ran: ran}
	if l.OnTick != nil {
		l.OnTick(ctx, tick)
	}
	return tick
}

// Run ticks until the level finishes, MaxTicks is reached, the script ends
// paused, or ctx is done.
// Only cancellation returns an error.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	l.logger.InfoContext(ctx, "simulation started",
		"step", l.Step,
		"max_ticks", l.MaxTicks,
		"steps", len(l.level.Script))

	reason := StopFinished
	var err error
	for !l.Done() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			reason = StopCancelled
			err = oops.In("simulation").With("ticks", l.ticks).Wrapf(ctxErr, "simulation cancelled")
			break
		}
		if l.MaxTicks > 0 && l.ticks >= l.MaxTicks {
			reason = StopMaxTicks
			break
		}
		if l.Stalled() {
			reason = StopPaused
			l.logger.WarnContext(ctx, "script ended while paused",
				"pending", l.deps.Scheduler.Len())
			break
		}
		l.Tick(ctx)
	}

	res := Result{Ticks: l.ticks, Elapsed: l.elapsed, Skipped: l.skipped, Reason: reason}
	l.logger.InfoContext(ctx, "simulation stopped",
		"reason", string(reason),
		"ticks", res.Ticks,
		"elapsed", res.Elapsed,
		"skipped", res.Skipped)
	return res, err
}

func (l *Loop) paused() bool {
	return l.deps.Panels != nil && l.deps.Panels.State().TimeScale == 0
}

func (l *Loop) scaled(d time.Duration) time.Duration {
	if l.deps.Panels == nil {
		return d
	}
	return time.Duration(float64(d) * l.deps.Panels.State().TimeScale)
}

func (l *Loop) apply(ctx context.Context, step catalog.Step) {
	log := l.logger.With("action", string(step.Action), "at", step.At.String())

	switch step.Action {
	case catalog.ActionPublish:
		l.publish(ctx, step.Event)
		return
	case catalog.ActionLocale:
		l.setLocale(ctx, log, step.Locale)
		return
	}

	t, ok := l.level.Triggers.Lookup(step.Trigger)
	if !ok {
		l.skip(ctx, log, step, "unknown trigger")
		return
	}
	obj, ok := l.level.Scene.Get(step.Object)
	if !ok {
		l.skip(ctx, log, step, "object not in scene")
		return
	}

	var advanced bool
	switch step.Action {
	case catalog.ActionEnter:
		advanced = t.Enter(ctx, obj)
	case catalog.ActionExit:
		advanced = t.Exit(ctx, obj)
	case catalog.ActionInteract:
		advanced = t.Interacted(ctx, obj, step.Interaction())
	case catalog.ActionCollect:
		c, ok := l.level.Collectibles[step.Trigger]
		if !ok {
			l.skip(ctx, log, step, "trigger has no collectible")
			return
		}
		advanced = c.Collect(ctx, obj)
	default:
		l.skip(ctx, log, step, "unknown action")
		return
	}
	log.DebugContext(ctx, "step applied",
		"task_id", step.Trigger,
		"object_id", step.Object,
		"advanced", advanced)
}

func (l *Loop) publish(ctx context.Context, event string) {
	bus := l.deps.Bus
	switch event {
	case catalog.EventPause:
		eventbus.Publish(ctx, bus, eventbus.PauseRequested{})
	case catalog.EventSettings:
		eventbus.Publish(ctx, bus, eventbus.SettingsOpened{})
	case catalog.EventContinue:
		eventbus.Publish(ctx, bus, eventbus.ContinueRequested{})
	case catalog.EventMenu:
		eventbus.Publish(ctx, bus, eventbus.MenuRequested{})
	default:
		l.skipped++
		l.logger.WarnContext(ctx, "unknown event in script", "event", event)
	}
}

func (l *Loop) setLocale(ctx context.Context, log *slog.Logger, locale string) {
	id := eventbus.LocaleID(locale)
	if l.deps.Locales == nil {
		eventbus.Publish(ctx, l.deps.Bus, eventbus.LocaleChanged{Locale: id})
		return
	}
	if err := l.deps.Locales.SetLocale(ctx, id); err != nil {
		l.skipped++
		errutil.LogWarn(log, "locale step failed", err)
	}
}

func (l *Loop) skip(ctx context.Context, log *slog.Logger, step catalog.Step, reason string) {
	l.skipped++
	errutil.Log(ctx, log, slog.LevelWarn, "script step skipped",
		oops.Code(CodeStepSkipped).
			With("task_id", step.Trigger).
			With("object_id", step.Object).
			Errorf("%s", reason))
}
