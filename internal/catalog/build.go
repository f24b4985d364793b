// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/fountain/internal/scene"
	"github.com/holomush/fountain/internal/script"
	"github.com/holomush/fountain/internal/trigger"
)

// Deps are the services a built level drives.
type Deps struct {
	// Tasks receives trigger calls. Usually a *quest.Registry.
	Tasks trigger.Tasks
	// ScriptTimeout bounds each scripted trigger call. Zero uses the
	// script package default.
	ScriptTimeout time.Duration
	Logger        *slog.Logger
}

// Level is a document turned into live objects.
type Level struct {
	Name         string
	Scene        *scene.Scene
	Triggers     *trigger.Set
	Collectibles map[string]*trigger.Collectible
	// Script is ordered by offset; steps with equal offsets keep document order.
	Script []Step
}

// Build creates the scene, triggers and collectible helpers for doc.
// doc must have passed Validate.
func Build(doc *Document, deps Deps) (*Level, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sc := scene.New()
	for _, o := range doc.Objects {
		if err := sc.Add(scene.Object{ID: o.ID, Name: o.Name, Tag: o.Tag}); err != nil {
			return nil, oops.In("catalog").Code(CodeBuildFailed).With("object_id", o.ID).Wrap(err)
		}
	}

	lvl := &Level{
		Name:         doc.Name,
		Scene:        sc,
		Triggers:     trigger.NewSet(logger),
		Collectibles: make(map[string]*trigger.Collectible),
	}

	for _, ts := range doc.Triggers {
		policy, err := newPolicy(ts, deps, logger)
		if err != nil {
			return nil, err
		}
		t := trigger.New(ts.Definition(), deps.Tasks, policy,
			trigger.WithScene(sc),
			trigger.WithLogger(logger))
		if err := lvl.Triggers.Add(t); err != nil {
			return nil, oops.In("catalog").Code(CodeBuildFailed).With("task_id", ts.Task).Wrap(err)
		}
		if ts.Collectible != nil {
			cfg := *ts.Collectible
			if cfg.RequiredTag == "" {
				cfg.RequiredTag = trigger.DefaultItemTag
			}
			lvl.Collectibles[ts.Task] = trigger.NewCollectible(cfg, t, sc, logger)
		}
	}

	lvl.Script = slices.Clone(doc.Script)
	slices.SortStableFunc(lvl.Script, func(a, b Step) int { return cmp.Compare(a.At, b.At) })

	logger.Info("level built",
		"level", doc.Name,
		"objects", sc.Len(),
		"triggers", lvl.Triggers.Len(),
		"steps", len(lvl.Script))
	return lvl, nil
}

func newPolicy(ts TriggerSpec, deps Deps, logger *slog.Logger) (trigger.StimulusPolicy, error) {
	switch ts.Kind {
	case KindAreaEnter:
		return trigger.NewAreaEnter(ts.Tag), nil
	case KindCollectItem:
		return trigger.NewCollectItem(ts.Tag), nil
	case KindInteract:
		m, err := trigger.NewMatcher(ts.Match, ts.Tag)
		if err != nil {
			return nil, oops.In("catalog").Code(CodeBuildFailed).With("task_id", ts.Task).Wrap(err)
		}
		return trigger.NewInteractTask(m), nil
	case KindScripted:
		opts := []script.ProgramOption{script.WithLogger(logger)}
		if deps.ScriptTimeout > 0 {
			opts = append(opts, script.WithTimeout(deps.ScriptTimeout))
		}
		prog, err := script.Compile(ts.Task, ts.Script, opts...)
		if err != nil {
			return nil, oops.In("catalog").Code(CodeBuildFailed).With("task_id", ts.Task).Wrap(err)
		}
		return trigger.NewScripted(prog), nil
	default:
		return nil, oops.In("catalog").
			Code(CodeBuildFailed).
			With("kind", ts.Kind).
			Errorf("unknown trigger kind %q", ts.Kind)
	}
}

// Load parses data and builds the level.
func Load(data []byte, deps Deps) (*Level, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Build(doc, deps)
}
