// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scene holds the live objects that stimuli refer to.
package scene

import (
	"slices"
	"strings"

	"github.com/samber/oops"
)

// CodeObjectDuplicate is returned when an object ID is added twice.
const CodeObjectDuplicate = "OBJECT_DUPLICATE"

// Object is a live scene object.
type Object struct {
	ID   string
	Name string
	Tag  string
}

// HasTag reports whether the object carries tag. An empty tag matches nothing.
func (o Object) HasTag(tag string) bool {
	return tag != "" && o.Tag == tag
}

// Scene owns the live objects. Removal is observable through Exists.
// It is not safe for concurrent use.
type Scene struct {
	objects map[string]Object
	removed int
}

// New creates a scene holding objs. Later duplicates are dropped.
func New(objs ...Object) *Scene {
	s := &Scene{objects: make(map[string]Object, len(objs))}
	for _, o := range objs {
		_ = s.Add(o)
	}
	return s
}

// Add places obj in the scene.
func (s *Scene) Add(obj Object) error {
	if strings.TrimSpace(obj.ID) == "" {
		return oops.In("scene").With("name", obj.Name).New("object ID is required")
	}
	if _, ok := s.objects[obj.ID]; ok {
		return oops.In("scene").
			Code(CodeObjectDuplicate).
			With("object_id", obj.ID).
			Errorf("object already in scene: %s", obj.ID)
	}
	s.objects[obj.ID] = obj
	return nil
}

// Get returns the object with the given ID.
func (s *Scene) Get(id string) (Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// Exists reports whether the object is still in the scene.
func (s *Scene) Exists(id string) bool {
	_, ok := s.objects[id]
	return ok
}

// Remove destroys the object. Returns false if it was not present.
func (s *Scene) Remove(id string) bool {
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	s.removed++
	return true
}

// Objects returns the live objects ordered by ID.
func (s *Scene) Objects() []Object {
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b Object) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Len returns the number of live objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Removed returns how many objects have been destroyed.
func (s *Scene) Removed() int {
	return s.removed
}
