// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package trigger turns external stimuli into task registry calls.
//
// Every trigger runs the same state machine, Idle to Started to Completed,
// and delegates the question "what is this stimulus worth" to a
// StimulusPolicy. Triggers never panic or return errors into stimulus code:
// misuse and missing collaborators are logged and the stimulus is dropped.
package trigger

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/holomush/fountain/internal/ids"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/internal/scene"
	"github.com/holomush/fountain/pkg/errutil"
)

// State is a trigger's lifecycle position. There is no way back to Idle.
type State int

// Trigger states.
const (
	StateIdle State = iota
	StateStarted
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Tasks is the part of the task registry a trigger drives.
type Tasks interface {
	AddTask(ctx context.Context, t quest.NewTask) bool
	UpdateProgress(ctx context.Context, taskID string, amount int) bool
}

// Definition describes the task a trigger owns.
type Definition struct {
	TaskID        string
	Name          string
	DisplayNumber string
	Target        int
	Description   string
}

// Trigger is the shared task trigger state machine.
// It is not safe for concurrent use.
type Trigger struct {
	def      Definition
	tasks    Tasks
	policy   StimulusPolicy
	scene    *scene.Scene
	logger   *slog.Logger
	state    State
	progress int
	disabled bool
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithScene lets the trigger remove objects consumed by its stimuli.
func WithScene(s *scene.Scene) Option {
	return func(t *Trigger) { t.scene = s }
}

// WithLogger sets the trigger logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trigger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a trigger in the Idle state. An empty TaskID is replaced by a
// generated ULID. tasks may be nil; stimuli are then logged and dropped.
func New(def Definition, tasks Tasks, policy StimulusPolicy, opts ...Option) *Trigger {
	if def.TaskID == "" {
		def.TaskID = ids.NewString()
	}
	t := &Trigger{
		def:    def,
		tasks:  present(tasks),
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("task_id", def.TaskID, "policy", t.policyName())
	return t
}

// TaskID returns the ID of the task this trigger owns.
func (t *Trigger) TaskID() string { return t.def.TaskID }

// Definition returns the task definition.
func (t *Trigger) Definition() Definition { return t.def }

// State returns the lifecycle state.
func (t *Trigger) State() State { return t.state }

// Progress returns the locally counted progress.
func (t *Trigger) Progress() int { return t.progress }

// Enabled reports whether the trigger still evaluates stimuli.
func (t *Trigger) Enabled() bool { return !t.disabled && t.state != StateCompleted }

// Policy returns the trigger's stimulus policy.
func (t *Trigger) Policy() StimulusPolicy { return t.policy }

// SetTasks wires the task registry after construction.
func (t *Trigger) SetTasks(tasks Tasks) { t.tasks = present(tasks) }

// present maps a nil pointer wrapped in Tasks, such as an unset
// *quest.Registry, to a nil interface so it reads as missing.
func present(tasks Tasks) Tasks {
	if tasks == nil {
		return nil
	}
	v := reflect.ValueOf(tasks)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}
	return tasks
}

// Enter delivers a volume-enter edge for obj.
func (t *Trigger) Enter(ctx context.Context, obj scene.Object) bool {
	return t.Deliver(ctx, Stimulus{Kind: StimulusEnter, Object: obj})
}

// Exit delivers a volume-exit edge for obj.
func (t *Trigger) Exit(ctx context.Context, obj scene.Object) bool {
	return t.Deliver(ctx, Stimulus{Kind: StimulusExit, Object: obj})
}

// Interacted delivers an explicit interaction with obj.
// Returns true if the interaction qualified under cfg.
func (t *Trigger) Interacted(ctx context.Context, obj scene.Object, cfg InteractionConfig) bool {
	return t.Deliver(ctx, Stimulus{Kind: StimulusInteract, Object: obj, Config: cfg})
}

// Deliver evaluates st against the policy and applies the outcome.
// Returns true if the stimulus was accepted.
func (t *Trigger) Deliver(ctx context.Context, st Stimulus) bool {
	name := t.policyName()
	if !t.Enabled() {
		t.logger.DebugContext(ctx, "stimulus ignored, trigger inactive",
			"stimulus", st.Kind, "object_id", st.Object.ID, "state", t.state)
		Stimuli.WithLabelValues(name, ResultIgnored).Inc()
		return false
	}
	if t.tasks == nil {
		errutil.Log(ctx, t.logger, slog.LevelWarn, "stimulus dropped", ErrRegistryMissing(t.def.TaskID))
		Stimuli.WithLabelValues(name, ResultDropped).Inc()
		return false
	}
	if t.policy == nil {
		Stimuli.WithLabelValues(name, ResultIgnored).Inc()
		return false
	}

	out, err := t.policy.Evaluate(ctx, st)
	if err != nil {
		errutil.Log(ctx, t.logger, slog.LevelError, "stimulus dropped", ErrPolicyFailed(t.def.TaskID, name, err))
		Stimuli.WithLabelValues(name, ResultDropped).Inc()
		return false
	}
	if !out.Accepted {
		Stimuli.WithLabelValues(name, ResultIgnored).Inc()
		return false
	}

	applied := t.advance(ctx, out.Amount, out.Discrete)
	if applied {
		Stimuli.WithLabelValues(name, ResultApplied).Inc()
	} else {
		Stimuli.WithLabelValues(name, ResultAccepted).Inc()
	}
	if out.RemoveObject && t.scene != nil && st.Object.ID != "" {
		if t.scene.Remove(st.Object.ID) {
			t.logger.DebugContext(ctx, "stimulus object removed", "object_id", st.Object.ID)
		}
	}
	if out.Disable {
		t.disabled = true
	}
	return true
}

// TryAdvance applies amount as discrete +1 updates to a task that has already
// started. It returns false, with no effect, before the task starts, after it
// completes, or when amount is not positive.
func (t *Trigger) TryAdvance(ctx context.Context, amount int) bool {
	if t.state != StateStarted {
		t.logger.DebugContext(ctx, "advance refused", "state", t.state)
		return false
	}
	if amount <= 0 {
		return false
	}
	if t.tasks == nil {
		errutil.Log(ctx, t.logger, slog.LevelWarn, "advance dropped", ErrRegistryMissing(t.def.TaskID))
		return false
	}
	return t.advance(ctx, amount, true)
}

// advance runs the shared state machine. The first positive stimulus starts
// the task and then applies its amount. Returns true if progress was applied.
func (t *Trigger) advance(ctx context.Context, amount int, discrete bool) bool {
	if t.state == StateCompleted || amount <= 0 {
		return false
	}

	if t.state == StateIdle {
		added := t.tasks.AddTask(ctx, quest.NewTask{
			ID:            t.def.TaskID,
			Name:          t.def.Name,
			Target:        t.def.Target,
			Description:   t.def.Description,
			DisplayNumber: t.def.DisplayNumber,
		})
		t.state = StateStarted
		t.logger.DebugContext(ctx, "task started", "name", t.def.Name, "registered", added)
	}

	if discrete {
		for range amount {
			t.tasks.UpdateProgress(ctx, t.def.TaskID, 1)
			t.progress++
			if t.reachedTarget() {
				break
			}
		}
	} else {
		t.tasks.UpdateProgress(ctx, t.def.TaskID, amount)
		t.progress += amount
	}

	t.logger.DebugContext(ctx, "task progress reported",
		"amount", amount,
		"discrete", discrete,
		"progress", t.progress,
		"target", t.def.Target)

	if t.reachedTarget() {
		t.state = StateCompleted
		t.logger.DebugContext(ctx, "task completed", "name", t.def.Name)
	}
	return true
}

func (t *Trigger) reachedTarget() bool {
	return t.progress >= t.def.Target
}

func (t *Trigger) policyName() string {
	if t.policy == nil {
		return "none"
	}
	return t.policy.Name()
}
