// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package catalog loads level documents: the scene objects, the task triggers
// that watch them, and a timed script of stimuli to replay.
package catalog

import (
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/holomush/fountain/internal/trigger"
)

// Kind names a trigger's stimulus policy.
type Kind string

// Trigger kinds.
const (
	KindAreaEnter   Kind = "area_enter"
	KindCollectItem Kind = "collect_item"
	KindInteract    Kind = "interact"
	KindScripted    Kind = "scripted"
)

// Action names what a script step does.
type Action string

// Script actions.
const (
	ActionEnter    Action = "enter"
	ActionExit     Action = "exit"
	ActionCollect  Action = "collect"
	ActionInteract Action = "interact"
	ActionPublish  Action = "publish"
	ActionLocale   Action = "locale"
)

// Events a publish step may raise.
const (
	EventPause    = "pause"
	EventSettings = "settings"
	EventContinue = "continue"
	EventMenu     = "menu"
)

// Document is a level file.
type Document struct {
	Version  string        `yaml:"version" json:"version" jsonschema:"required,description=Level format version (semver)"`
	Name     string        `yaml:"name,omitempty" json:"name,omitempty"`
	Objects  []ObjectSpec  `yaml:"objects,omitempty" json:"objects,omitempty"`
	Triggers []TriggerSpec `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Script   []Step        `yaml:"script,omitempty" json:"script,omitempty"`
}

// ObjectSpec declares a scene object.
type ObjectSpec struct {
	ID   string `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Tag  string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

// TriggerSpec declares a task and the trigger that drives it.
//
// Tag is the player tag for area_enter, the item tag for collect_item and the
// target tag for interact. Match is a glob over object names for interact.
// Script is Lua source defining advance(stimulus) for scripted triggers.
type TriggerSpec struct {
	Task          string                     `yaml:"task" json:"task" jsonschema:"required,minLength=1"`
	Name          string                     `yaml:"name,omitempty" json:"name,omitempty"`
	DisplayNumber string                     `yaml:"display_number,omitempty" json:"display_number,omitempty"`
	Target        int                        `yaml:"target" json:"target" jsonschema:"required,minimum=1"`
	Description   string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Kind          Kind                       `yaml:"kind" json:"kind" jsonschema:"required,enum=area_enter,enum=collect_item,enum=interact,enum=scripted"`
	Tag           string                     `yaml:"tag,omitempty" json:"tag,omitempty"`
	Match         string                     `yaml:"match,omitempty" json:"match,omitempty"`
	Script        string                     `yaml:"script,omitempty" json:"script,omitempty"`
	Collectible   *trigger.CollectibleConfig `yaml:"collectible,omitempty" json:"collectible,omitempty"`
}

// Definition converts the entry to the trigger's task definition.
func (s TriggerSpec) Definition() trigger.Definition {
	return trigger.Definition{
		TaskID:        s.Task,
		Name:          s.Name,
		DisplayNumber: s.DisplayNumber,
		Target:        s.Target,
		Description:   s.Description,
	}
}

// Step is one timed stimulus in the level script.
type Step struct {
	At      Duration                   `yaml:"at" json:"at" jsonschema:"required"`
	Action  Action                     `yaml:"action" json:"action" jsonschema:"required,enum=enter,enum=exit,enum=collect,enum=interact,enum=publish,enum=locale"`
	Trigger string                     `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Object  string                     `yaml:"object,omitempty" json:"object,omitempty"`
	Event   string                     `yaml:"event,omitempty" json:"event,omitempty" jsonschema:"enum=pause,enum=settings,enum=continue,enum=menu"`
	Locale  string                     `yaml:"locale,omitempty" json:"locale,omitempty"`
	Config  *trigger.InteractionConfig `yaml:"config,omitempty" json:"config,omitempty"`
}

// Interaction returns the step's interaction config, or the default one.
func (s Step) Interaction() trigger.InteractionConfig {
	if s.Config == nil {
		return trigger.DefaultInteractionConfig()
	}
	return s.Config.Normalize()
}

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats d like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return ErrBadDuration(node.Value, node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes d as a duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// JSONSchema describes Duration as a pattern-checked string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^(0|([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+)$`,
		Description: "Offset from level start, e.g. 250ms or 1m30s",
	}
}
