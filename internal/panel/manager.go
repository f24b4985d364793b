// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package panel tracks the pause and settings panels and the UI locale,
// driven by events on the bus.
package panel

import (
	"context"
	"log/slog"

	"github.com/holomush/fountain/internal/eventbus"
)

// State is the observable panel state.
type State struct {
	Paused               bool
	PausePanelVisible    bool
	SettingsPanelVisible bool
	// InputEnabled is false while the game is paused and movement and sight
	// input are locked.
	InputEnabled bool
	// TimeScale is 0 while paused and 1 otherwise.
	TimeScale float64
	// MenuRequests counts main-menu requests seen on the bus.
	MenuRequests int
}

// Manager reacts to pause, continue, settings and menu events.
// It is not safe for concurrent use.
type Manager struct {
	bus    *eventbus.Bus
	state  State
	logger *slog.Logger

	onPause    *eventbus.HandlerFunc[eventbus.PauseRequested]
	onContinue *eventbus.HandlerFunc[eventbus.ContinueRequested]
	onSettings *eventbus.HandlerFunc[eventbus.SettingsOpened]
	onMenu     *eventbus.HandlerFunc[eventbus.MenuRequested]
}

// NewManager creates a running, unpaused manager subscribed to bus.
func NewManager(bus *eventbus.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		bus:    bus,
		state:  State{InputEnabled: true, TimeScale: 1},
		logger: logger,
	}
	m.onPause = eventbus.NewHandlerFunc(func(ctx context.Context, _ eventbus.PauseRequested) error {
		m.togglePause(ctx)
		return nil
	})
	m.onContinue = eventbus.NewHandlerFunc(func(ctx context.Context, _ eventbus.ContinueRequested) error {
		m.resume(ctx)
		return nil
	})
	m.onSettings = eventbus.NewHandlerFunc(func(ctx context.Context, _ eventbus.SettingsOpened) error {
		m.state.SettingsPanelVisible = true
		m.state.PausePanelVisible = false
		m.logger.DebugContext(ctx, "settings panel opened")
		return nil
	})
	m.onMenu = eventbus.NewHandlerFunc(func(ctx context.Context, _ eventbus.MenuRequested) error {
		m.state.MenuRequests++
		m.logger.InfoContext(ctx, "main menu requested")
		return nil
	})

	eventbus.Subscribe[eventbus.PauseRequested](bus, m.onPause)
	eventbus.Subscribe[eventbus.ContinueRequested](bus, m.onContinue)
	eventbus.Subscribe[eventbus.SettingsOpened](bus, m.onSettings)
	eventbus.Subscribe[eventbus.MenuRequested](bus, m.onMenu)
	return m
}

// State returns a copy of the panel state.
func (m *Manager) State() State {
	return m.state
}

func (m *Manager) togglePause(ctx context.Context) {
	if m.state.Paused {
		m.resume(ctx)
		return
	}
	m.state.Paused = true
	m.state.PausePanelVisible = true
	m.state.InputEnabled = false
	m.state.TimeScale = 0
	m.logger.DebugContext(ctx, "game paused")
}

func (m *Manager) resume(ctx context.Context) {
	m.state.Paused = false
	m.state.PausePanelVisible = false
	m.state.InputEnabled = true
	m.state.TimeScale = 1
	m.logger.DebugContext(ctx, "game resumed")
}

// Settings is the pause panel's settings button.
func (m *Manager) Settings(ctx context.Context) {
	eventbus.Publish(ctx, m.bus, eventbus.SettingsOpened{})
}

// Continue is the pause panel's continue button.
func (m *Manager) Continue(ctx context.Context) {
	eventbus.Publish(ctx, m.bus, eventbus.ContinueRequested{})
}

// Menu is the pause panel's main-menu button.
func (m *Manager) Menu(ctx context.Context) {
	eventbus.Publish(ctx, m.bus, eventbus.MenuRequested{})
}

// Back closes the settings panel and shows the pause panel again if the
// game is still paused.
func (m *Manager) Back() {
	m.state.SettingsPanelVisible = false
	if m.state.Paused {
		m.state.PausePanelVisible = true
	}
}

// Close unsubscribes the manager from the bus.
func (m *Manager) Close() {
	eventbus.Unsubscribe[eventbus.PauseRequested](m.bus, m.onPause)
	eventbus.Unsubscribe[eventbus.ContinueRequested](m.bus, m.onContinue)
	eventbus.Unsubscribe[eventbus.SettingsOpened](m.bus, m.onSettings)
	eventbus.Unsubscribe[eventbus.MenuRequested](m.bus, m.onMenu)
}
