// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hud is a text heads-up display of active tasks. It is the
// presentation collaborator for the quest registry in the CLI simulation.
package hud

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/internal/schedule"
)

// DefaultFadeIn is how long a new view takes to become fully visible.
const DefaultFadeIn = 500 * time.Millisecond

// CodeViewExists is returned when a view already exists for a task.
const CodeViewExists = "VIEW_EXISTS"

var _ quest.Presenter = (*HUD)(nil)

// Detacher is notified when a view is destroyed before its task retires.
type Detacher interface {
	DetachPresentation(ctx context.Context, taskID string) bool
}

// HUD owns the task views. It is not safe for concurrent use.
type HUD struct {
	views    map[string]*View
	sched    *schedule.Scheduler
	fadeIn   time.Duration
	detacher Detacher
	width    int
	changed  bool
	logger   *slog.Logger
}

// Option configures a HUD.
type Option func(*HUD)

// WithFadeIn overrides the fade-in duration.
func WithFadeIn(d time.Duration) Option {
	return func(h *HUD) { h.fadeIn = max(d, 0) }
}

// WithWidth sets the rendered width of each task block.
func WithWidth(width int) Option {
	return func(h *HUD) {
		if width > 0 {
			h.width = width
		}
	}
}

// WithLogger sets the HUD logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *HUD) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a HUD whose fades run on sched.
func New(sched *schedule.Scheduler, opts ...Option) *HUD {
	if sched == nil {
		sched = schedule.New()
	}
	h := &HUD{
		views:  make(map[string]*View),
		sched:  sched,
		fadeIn: DefaultFadeIn,
		width:  36,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach sets the collaborator told about destroyed views.
func (h *HUD) Attach(d Detacher) {
	h.detacher = d
}

func fadeInKey(taskID string) string {
	return "hud.fade-in:" + taskID
}

// OnTaskCreated implements quest.Presenter. The view starts fading in.
func (h *HUD) OnTaskCreated(taskID string, task quest.Snapshot, displayNumber string) (quest.Presentation, error) {
	if _, exists := h.views[taskID]; exists {
		return nil, oops.In("hud").
			Code(CodeViewExists).
			With("task_id", taskID).
			Errorf("view already exists for task %s", taskID)
	}
	v := &View{
		hud:        h,
		taskID:     taskID,
		number:     displayNumber,
		task:       task,
		visibility: FadingIn,
	}
	h.views[taskID] = v
	h.sched.After(fadeInKey(taskID), h.fadeIn, func() {
		if v.visibility == FadingIn {
			v.visibility = Visible
			h.touch()
		}
	})
	h.touch()
	h.logger.Debug("task view created", "task_id", taskID, "display_number", displayNumber)
	return v, nil
}

// Destroy tears down a view before its task retires and tells the attached
// registry. Returns false if no view exists.
func (h *HUD) Destroy(ctx context.Context, taskID string) bool {
	if _, ok := h.views[taskID]; !ok {
		return false
	}
	h.remove(taskID)
	if h.detacher != nil {
		h.detacher.DetachPresentation(ctx, taskID)
	}
	return true
}

func (h *HUD) remove(taskID string) {
	h.sched.Cancel(fadeInKey(taskID))
	delete(h.views, taskID)
	h.touch()
	h.logger.Debug("task view removed", "task_id", taskID)
}

func (h *HUD) touch() {
	h.changed = true
}

// Changed reports whether any view changed since the last call.
func (h *HUD) Changed() bool {
	c := h.changed
	h.changed = false
	return c
}

// View returns the view for a task.
func (h *HUD) View(taskID string) (*View, bool) {
	v, ok := h.views[taskID]
	return v, ok
}

// Len returns the number of live views.
func (h *HUD) Len() int {
	return len(h.views)
}

// Views returns the live views ordered by display number. Numeric labels
// sort numerically and before non-numeric ones.
func (h *HUD) Views() []*View {
	out := make([]*View, 0, len(h.views))
	for _, v := range h.views {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *View) int {
		if c := compareNumbers(a.number, b.number); c != 0 {
			return c
		}
		return strings.Compare(a.taskID, b.taskID)
	})
	return out
}

func compareNumbers(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai - bi
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
