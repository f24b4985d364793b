// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import (
	"context"

	"github.com/holomush/fountain/internal/script"
)

// ScriptFunction is the Lua function a Scripted policy calls.
const ScriptFunction = "advance"

// Scripted asks a Lua program what a stimulus is worth. The program defines
// advance(obj), where obj has id, name, tag and stimulus fields, and returns
// the progress amount. Zero or nil ignores the stimulus. The amount is
// applied in one update.
type Scripted struct {
	program *script.Program
}

// NewScripted creates a Scripted policy running program.
func NewScripted(program *script.Program) *Scripted {
	return &Scripted{program: program}
}

// Name implements StimulusPolicy.
func (s *Scripted) Name() string { return "scripted" }

// Evaluate implements StimulusPolicy.
func (s *Scripted) Evaluate(ctx context.Context, st Stimulus) (Outcome, error) {
	if s.program == nil {
		return ignore()
	}
	amount, err := s.program.CallInt(ctx, ScriptFunction, map[string]string{
		"id":       st.Object.ID,
		"name":     st.Object.Name,
		"tag":      st.Object.Tag,
		"stimulus": string(st.Kind),
	})
	if err != nil {
		return Outcome{}, err
	}
	if amount <= 0 {
		return ignore()
	}
	return Outcome{Accepted: true, Amount: amount}, nil
}
