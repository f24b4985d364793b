// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/fountain/internal/scene"
	"github.com/holomush/fountain/internal/script"
	"github.com/holomush/fountain/internal/trigger"
	"github.com/holomush/fountain/pkg/errutil"
)

func TestCollectible_RequiresStartedTask(t *testing.T) {
	tasks := newRecordingTasks()
	ctx := context.Background()
	gem := scene.Object{ID: "gem", Tag: "Collectible"}
	s := scene.New(gem)
	tr := trigger.New(trigger.Definition{TaskID: "t", Name: "T", Target: 3}, tasks, trigger.NewAreaEnter(""))
	c := trigger.NewCollectible(trigger.DefaultCollectibleConfig(), tr, s, nil)

	assert.False(t, c.Collect(ctx, gem), "task not started yet")
	assert.True(t, s.Exists("gem"))
	assert.False(t, c.Collected("gem"))

	require.True(t, tr.Enter(ctx, player))
	require.True(t, c.Collect(ctx, gem))
	assert.False(t, s.Exists("gem"))
	assert.True(t, c.Collected("gem"))
	assert.Equal(t, 2, tasks.snapshot(t, "t").Current)

	assert.False(t, c.Collect(ctx, gem), "single pickup")
}

func TestCollectible_Config(t *testing.T) {
	tests := []struct {
		name       string
		cfg        trigger.CollectibleConfig
		obj        scene.Object
		wantFirst  bool
		wantSecond bool
		wantTotal  int
	}{
		{
			name:      "tag mismatch",
			cfg:       trigger.DefaultCollectibleConfig(),
			obj:       scene.Object{ID: "rock", Tag: "Rock"},
			wantTotal: 1,
		},
		{
			name:       "repeat with progress once",
			cfg:        trigger.CollectibleConfig{AllowRepeat: true, ProgressOnlyFirstTime: true, ProgressPerCollect: 1},
			obj:        scene.Object{ID: "coin"},
			wantFirst:  true,
			wantSecond: false,
			wantTotal:  2,
		},
		{
			name:       "repeat with progress each time",
			cfg:        trigger.CollectibleConfig{AllowRepeat: true, ProgressPerCollect: 2},
			obj:        scene.Object{ID: "coin"},
			wantFirst:  true,
			wantSecond: true,
			wantTotal:  5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := newRecordingTasks()
			ctx := context.Background()
			tr := trigger.New(trigger.Definition{TaskID: "t", Name: "T", Target: 10}, tasks, trigger.NewAreaEnter(""))
			require.True(t, tr.Enter(ctx, player))
			c := trigger.NewCollectible(tt.cfg, tr, nil, nil)

			assert.Equal(t, tt.wantFirst, c.Collect(ctx, tt.obj))
			assert.Equal(t, tt.wantSecond, c.Collect(ctx, tt.obj))
			assert.Equal(t, tt.wantTotal, tasks.snapshot(t, "t").Current)
		})
	}
}

func TestCollectible_NilTrigger(t *testing.T) {
	c := trigger.NewCollectible(trigger.DefaultCollectibleConfig(), nil, nil, nil)
	assert.False(t, c.Collect(context.Background(), scene.Object{ID: "gem", Tag: "Collectible"}))
}

func TestScripted_BatchesScriptResult(t *testing.T) {
	prog, err := script.Compile("gems", `
function advance(obj)
  if obj.stimulus == "enter" and obj.tag == "Gem" then
    return 2
  end
  return 0
end
`)
	require.NoError(t, err)
	tasks := newRecordingTasks()
	ctx := context.Background()
	tr := trigger.New(trigger.Definition{TaskID: "s", Name: "S", Target: 4}, tasks, trigger.NewScripted(prog))

	assert.False(t, tr.Enter(ctx, scene.Object{ID: "r", Tag: "Rock"}))
	assert.False(t, tr.Interacted(ctx, scene.Object{ID: "g", Tag: "Gem"}, trigger.DefaultInteractionConfig()))
	require.True(t, tr.Enter(ctx, scene.Object{ID: "g", Tag: "Gem"}))

	assert.Equal(t, []call{{"add", "s", 4}, {"update", "s", 2}}, tasks.calls)
}

func TestScripted_ErrorDropsStimulus(t *testing.T) {
	prog, err := script.Compile("broken", `function advance(obj) error("nope") end`)
	require.NoError(t, err)
	logger, logs := bufferLogger()
	tasks := newRecordingTasks()
	tr := trigger.New(trigger.Definition{TaskID: "s", Name: "S", Target: 1}, tasks,
		trigger.NewScripted(prog), trigger.WithLogger(logger))

	assert.False(t, tr.Enter(context.Background(), player))

	assert.Equal(t, trigger.StateIdle, tr.State())
	assert.Empty(t, tasks.calls)
	assert.Contains(t, logs.String(), "stimulus dropped")
	assert.Contains(t, logs.String(), `"policy":"scripted"`)
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		pattern string
		tag     string
		obj     scene.Object
		want    bool
	}{
		{"", "", scene.Object{Name: "anything"}, true},
		{"*Lever*", "", scene.Object{Name: "Old Lever 2"}, true},
		{"*Lever*", "", scene.Object{Name: "Door"}, false},
		{"", "Interactable", scene.Object{Tag: "Interactable"}, true},
		{"Door", "Interactable", scene.Object{Name: "Door"}, true},
		{"Door", "Interactable", scene.Object{Name: "Gate", Tag: "Prop"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.tag, func(t *testing.T) {
			m, err := trigger.NewMatcher(tt.pattern, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.obj))
		})
	}

	var nilMatcher *trigger.Matcher
	assert.True(t, nilMatcher.Match(scene.Object{}))
	assert.Equal(t, "*", nilMatcher.String())
}

func TestMatcher_InvalidPattern(t *testing.T) {
	_, err := trigger.NewMatcher("[", "")
	errutil.AssertErrorCode(t, err, trigger.CodeMatcherInvalid)
}

func TestInteractionConfig_Normalize(t *testing.T) {
	assert.Equal(t, 1, trigger.InteractionConfig{ProgressPerInteraction: -2}.Normalize().ProgressPerInteraction)
	assert.Equal(t, 3, trigger.InteractionConfig{ProgressPerInteraction: 3}.Normalize().ProgressPerInteraction)
	assert.Equal(t, trigger.InteractionConfig{CountProgressOnlyOnce: true, ProgressPerInteraction: 1},
		trigger.DefaultInteractionConfig())
}

func TestSet(t *testing.T) {
	logger, logs := bufferLogger()
	ctx := context.Background()
	set := trigger.NewSet(logger)
	a := trigger.New(trigger.Definition{TaskID: "a", Target: 1}, nil, trigger.NewAreaEnter(""))
	b := trigger.New(trigger.Definition{TaskID: "b", Target: 1}, nil, trigger.NewCollectItem(""))

	require.NoError(t, set.Add(a))
	require.NoError(t, set.Add(b))
	errutil.AssertErrorCode(t, set.Add(trigger.New(trigger.Definition{TaskID: "a"}, nil, nil)), trigger.CodeTriggerDuplicate)
	errutil.AssertErrorCode(t, set.Add(nil), trigger.CodeTriggerNil)

	got, ok := set.Lookup("b")
	require.True(t, ok)
	assert.Same(t, b, got)

	first, ok := set.At(ctx, 0)
	require.True(t, ok)
	assert.Same(t, a, first)

	_, ok = set.At(ctx, 5)
	assert.False(t, ok)
	assert.Contains(t, logs.String(), trigger.CodeTriggerIndexInvalid)

	assert.Equal(t, 2, set.Len())
	assert.Len(t, set.All(), 2)
	assert.Equal(t, 0, set.Completed())
}
