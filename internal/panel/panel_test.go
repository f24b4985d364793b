// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package panel_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/panel"
	"github.com/holomush/fountain/pkg/errutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBus() *eventbus.Bus {
	return eventbus.New(eventbus.WithLogger(slog.New(slog.DiscardHandler)))
}

func TestManager_PauseToggle(t *testing.T) {
	bus := newBus()
	ctx := context.Background()
	m := panel.NewManager(bus, nil)

	assert.Equal(t, panel.State{InputEnabled: true, TimeScale: 1}, m.State())

	eventbus.Publish(ctx, bus, eventbus.PauseRequested{})
	st := m.State()
	assert.True(t, st.Paused)
	assert.True(t, st.PausePanelVisible)
	assert.False(t, st.InputEnabled)
	assert.Zero(t, st.TimeScale)

	eventbus.Publish(ctx, bus, eventbus.PauseRequested{})
	assert.Equal(t, panel.State{InputEnabled: true, TimeScale: 1}, m.State())
}

func TestManager_SettingsAndBack(t *testing.T) {
	bus := newBus()
	ctx := context.Background()
	m := panel.NewManager(bus, nil)
	eventbus.Publish(ctx, bus, eventbus.PauseRequested{})

	m.Settings(ctx)
	st := m.State()
	assert.True(t, st.SettingsPanelVisible)
	assert.False(t, st.PausePanelVisible)
	assert.True(t, st.Paused)

	m.Back()
	st = m.State()
	assert.False(t, st.SettingsPanelVisible)
	assert.True(t, st.PausePanelVisible)
}

func TestManager_BackWhenNotPaused(t *testing.T) {
	bus := newBus()
	m := panel.NewManager(bus, nil)
	m.Settings(context.Background())

	m.Back()

	assert.False(t, m.State().PausePanelVisible)
	assert.False(t, m.State().SettingsPanelVisible)
}

func TestManager_ContinueResumes(t *testing.T) {
	bus := newBus()
	ctx := context.Background()
	m := panel.NewManager(bus, nil)
	eventbus.Publish(ctx, bus, eventbus.PauseRequested{})

	m.Continue(ctx)

	assert.False(t, m.State().Paused)
	assert.Equal(t, 1.0, m.State().TimeScale)
}

func TestManager_MenuAndClose(t *testing.T) {
	bus := newBus()
	ctx := context.Background()
	m := panel.NewManager(bus, nil)

	m.Menu(ctx)
	assert.Equal(t, 1, m.State().MenuRequests)
	assert.Equal(t, 1, eventbus.Count[eventbus.MenuRequested](bus))

	m.Close()
	assert.Equal(t, 0, eventbus.Count[eventbus.PauseRequested](bus))
	assert.Equal(t, 0, eventbus.Count[eventbus.MenuRequested](bus))
	eventbus.Publish(ctx, bus, eventbus.PauseRequested{})
	assert.False(t, m.State().Paused)
}

func TestParseLocaleName(t *testing.T) {
	tests := []struct {
		name    string
		want    eventbus.LocaleID
		wantErr bool
	}{
		{name: "Chinese (Simplified) (zh)", want: "zh"},
		{name: "English (en)", want: eventbus.LocaleEn},
		{name: "English", wantErr: true},
		{name: "(en)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := panel.ParseLocaleName(tt.name)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, panel.CodeLocaleUnknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocales_SetLocalePublishesOnChange(t *testing.T) {
	bus := newBus()
	ctx := context.Background()
	var seen []eventbus.LocaleID
	eventbus.Subscribe[eventbus.LocaleChanged](bus, eventbus.NewHandlerFunc(func(_ context.Context, e eventbus.LocaleChanged) error {
		seen = append(seen, e.Locale)
		return nil
	}))
	l := panel.NewLocales(bus)
	assert.Equal(t, eventbus.LocaleZh, l.Current())

	require.NoError(t, l.SetLocale(ctx, eventbus.LocaleZh))
	require.NoError(t, l.SetLocaleName(ctx, "English (en)"))
	require.NoError(t, l.SetLocale(ctx, eventbus.LocaleEn))

	assert.Equal(t, []eventbus.LocaleID{eventbus.LocaleEn}, seen)
	assert.Equal(t, eventbus.LocaleEn, l.Current())

	errutil.AssertErrorCode(t, l.SetLocale(ctx, "fr"), panel.CodeLocaleUnknown)
	assert.Len(t, l.Available(), 2)
}
