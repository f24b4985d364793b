// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import (
	"github.com/gobwas/glob"

	"github.com/holomush/fountain/internal/scene"
)

// Matcher selects target objects by name pattern or exact tag.
// A matcher with neither set, and a nil matcher, accept every object.
type Matcher struct {
	pattern string
	name    glob.Glob
	tag     string
}

// NewMatcher compiles namePattern once. Patterns use glob syntax
// ("Fountain*", "*Lever*").
func NewMatcher(namePattern, tag string) (*Matcher, error) {
	m := &Matcher{pattern: namePattern, tag: tag}
	if namePattern != "" {
		g, err := glob.Compile(namePattern)
		if err != nil {
			return nil, ErrMatcherInvalid(namePattern, err)
		}
		m.name = g
	}
	return m, nil
}

// Match reports whether obj is a target: its name matches the pattern or it
// carries the tag.
func (m *Matcher) Match(obj scene.Object) bool {
	if m == nil || (m.name == nil && m.tag == "") {
		return true
	}
	if m.name != nil && m.name.Match(obj.Name) {
		return true
	}
	return obj.HasTag(m.tag)
}

// String returns a readable description of the matcher.
func (m *Matcher) String() string {
	if m == nil || (m.name == nil && m.tag == "") {
		return "*"
	}
	switch {
	case m.name != nil && m.tag != "":
		return "name:" + m.pattern + "|tag:" + m.tag
	case m.name != nil:
		return "name:" + m.pattern
	default:
		return "tag:" + m.tag
	}
}
