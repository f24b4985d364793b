// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/fountain/internal/trigger"
)

// SupportedVersions is the level format range this build reads.
const SupportedVersions = "^1.0.0"

var supported = semver.MustParse("1.0.0")

// Parse decodes and validates a level document.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, oops.In("catalog").Code(CodeEmpty).Errorf("level data is empty")
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.In("catalog").Code(CodeYAML).Wrapf(err, "invalid YAML")
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CheckVersion reports whether version falls inside SupportedVersions.
func CheckVersion(version string) error {
	if version == "" {
		return oops.In("catalog").Code(CodeVersion).Errorf("version is required")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.In("catalog").
			Code(CodeVersion).
			With("version", version).
			Wrapf(err, "version %q is not semver", version)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.In("catalog").Code(CodeVersion).Wrap(err)
	}
	if !c.Check(v) {
		return oops.In("catalog").
			Code(CodeVersion).
			With("version", version).
			With("supported", SupportedVersions).
			Errorf("level format %s is not supported (want %s, current %s)", v, SupportedVersions, supported)
	}
	return nil
}

// Validate checks the document's references and constraints. The first
// problem found is returned.
func (d *Document) Validate() error {
	if err := CheckVersion(d.Version); err != nil {
		return err
	}

	objects := make(map[string]bool, len(d.Objects))
	for i, o := range d.Objects {
		path := fmt.Sprintf("objects[%d]", i)
		if o.ID == "" {
			return invalid(path+".id", "object ID is required")
		}
		if objects[o.ID] {
			return invalid(path+".id", "duplicate object ID %q", o.ID)
		}
		objects[o.ID] = true
	}

	triggers := make(map[string]TriggerSpec, len(d.Triggers))
	for i, t := range d.Triggers {
		if err := t.validate(fmt.Sprintf("triggers[%d]", i)); err != nil {
			return err
		}
		if _, dup := triggers[t.Task]; dup {
			return invalid(fmt.Sprintf("triggers[%d].task", i), "duplicate task ID %q", t.Task)
		}
		triggers[t.Task] = t
	}

	for i, s := range d.Script {
		if err := s.validate(fmt.Sprintf("script[%d]", i), objects, triggers); err != nil {
			return err
		}
	}
	return nil
}

func (t TriggerSpec) validate(path string) error {
	if t.Task == "" {
		return invalid(path+".task", "task ID is required")
	}
	if t.Target < 1 {
		return invalid(path+".target", "target must be at least 1, got %d", t.Target)
	}
	switch t.Kind {
	case KindAreaEnter, KindCollectItem:
	case KindInteract:
		if _, err := trigger.NewMatcher(t.Match, t.Tag); err != nil {
			return invalid(path+".match", "%v", err)
		}
	case KindScripted:
		if t.Script == "" {
			return invalid(path+".script", "script is required for scripted triggers")
		}
	default:
		return invalid(path+".kind", "unknown trigger kind %q", t.Kind)
	}
	return nil
}

func (s Step) validate(path string, objects map[string]bool, triggers map[string]TriggerSpec) error {
	if s.At < 0 {
		return invalid(path+".at", "offset must not be negative")
	}

	switch s.Action {
	case ActionEnter, ActionExit, ActionInteract, ActionCollect:
		t, ok := triggers[s.Trigger]
		if !ok {
			return invalid(path+".trigger", "unknown trigger %q", s.Trigger)
		}
		if !objects[s.Object] {
			return invalid(path+".object", "unknown object %q", s.Object)
		}
		if s.Action == ActionCollect && t.Collectible == nil {
			return invalid(path+".trigger", "trigger %q has no collectible config", s.Trigger)
		}
	case ActionPublish:
		switch s.Event {
		case EventPause, EventSettings, EventContinue, EventMenu:
		default:
			return invalid(path+".event", "unknown event %q", s.Event)
		}
	case ActionLocale:
		if s.Locale == "" {
			return invalid(path+".locale", "locale is required")
		}
	default:
		return invalid(path+".action", "unknown action %q", s.Action)
	}
	return nil
}
