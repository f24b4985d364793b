// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import (
	"context"
	"log/slog"

	"github.com/holomush/fountain/internal/scene"
)

// CollectibleConfig controls how picking up an object advances a task.
type CollectibleConfig struct {
	RequiredTag           string `yaml:"required_tag" json:"required_tag,omitempty"`
	AllowRepeat           bool   `yaml:"allow_repeat" json:"allow_repeat,omitempty"`
	ProgressOnlyFirstTime bool   `yaml:"progress_once" json:"progress_once,omitempty"`
	DestroyOnCollect      bool   `yaml:"destroy" json:"destroy,omitempty"`
	ProgressPerCollect    int    `yaml:"progress" json:"progress,omitempty"`
}

// DefaultCollectibleConfig returns a single pickup of a "Collectible" object
// that is destroyed once collected.
func DefaultCollectibleConfig() CollectibleConfig {
	return CollectibleConfig{
		RequiredTag:           DefaultItemTag,
		ProgressOnlyFirstTime: true,
		DestroyOnCollect:      true,
		ProgressPerCollect:    1,
	}
}

// Collectible advances an already started task when objects are picked up.
// It never starts a task itself; some other stimulus must do that first.
type Collectible struct {
	cfg       CollectibleConfig
	trigger   *Trigger
	scene     *scene.Scene
	logger    *slog.Logger
	collected map[string]bool
}

// NewCollectible creates a collectible helper feeding t. s may be nil when
// objects should not be destroyed.
func NewCollectible(cfg CollectibleConfig, t *Trigger, s *scene.Scene, logger *slog.Logger) *Collectible {
	if cfg.ProgressPerCollect < 1 {
		cfg.ProgressPerCollect = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collectible{
		cfg:       cfg,
		trigger:   t,
		scene:     s,
		logger:    logger,
		collected: make(map[string]bool),
	}
}

// Collected reports whether the object has been collected.
func (c *Collectible) Collected(objectID string) bool {
	return c.collected[objectID]
}

// Collect picks up obj. Returns true if the task advanced.
func (c *Collectible) Collect(ctx context.Context, obj scene.Object) bool {
	log := c.logger.With("object_id", obj.ID)
	seen := c.collected[obj.ID]

	if seen && !c.cfg.AllowRepeat {
		log.DebugContext(ctx, "already collected")
		return false
	}
	if c.cfg.RequiredTag != "" && !obj.HasTag(c.cfg.RequiredTag) {
		log.DebugContext(ctx, "collect rejected, tag mismatch", "required_tag", c.cfg.RequiredTag)
		return false
	}
	if c.trigger == nil {
		log.WarnContext(ctx, "collect dropped, no task trigger")
		return false
	}
	if seen && c.cfg.ProgressOnlyFirstTime {
		log.DebugContext(ctx, "collect ignored, progress counts once")
		return false
	}

	if !c.trigger.TryAdvance(ctx, c.cfg.ProgressPerCollect) {
		return false
	}
	c.collected[obj.ID] = true
	if c.cfg.DestroyOnCollect && c.scene != nil {
		c.scene.Remove(obj.ID)
	}
	log.DebugContext(ctx, "collected", "task_id", c.trigger.TaskID(), "amount", c.cfg.ProgressPerCollect)
	return true
}
