// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventbus

// Game-wide events carried on the bus. New payloads need no registration;
// any type can be published.

// PauseRequested toggles the pause panel.
type PauseRequested struct{}

// SettingsOpened asks for the settings panel.
type SettingsOpened struct{}

// ContinueRequested resumes play from the pause panel.
type ContinueRequested struct{}

// MenuRequested asks to return to the main menu.
type MenuRequested struct{}

// LocaleID identifies a UI locale by its code.
type LocaleID string

// Locales shipped with the game.
const (
	LocaleZh LocaleID = "zh"
	LocaleEn LocaleID = "en"
)

// LocaleChanged reports that the active locale changed.
type LocaleChanged struct {
	Locale LocaleID
}
