// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package panel

import (
	"context"
	"regexp"
	"slices"

	"github.com/samber/oops"

	"github.com/holomush/fountain/internal/eventbus"
)

// CodeLocaleUnknown is returned for a locale the game does not ship.
const CodeLocaleUnknown = "LOCALE_UNKNOWN"

// localeName matches display names such as "Chinese (zh)".
var localeName = regexp.MustCompile(`^.+\((.+)\)$`)

// ParseLocaleName extracts the locale code from a display name of the form
// "Language (code)".
func ParseLocaleName(name string) (eventbus.LocaleID, error) {
	m := localeName.FindStringSubmatch(name)
	if m == nil {
		return "", oops.In("panel").
			Code(CodeLocaleUnknown).
			With("name", name).
			Errorf("locale name has no code: %q", name)
	}
	return eventbus.LocaleID(m[1]), nil
}

// Locales selects the active UI locale and announces changes on the bus.
type Locales struct {
	bus       *eventbus.Bus
	current   eventbus.LocaleID
	available []eventbus.LocaleID
}

// NewLocales creates a locale selector starting at the first available
// locale. With no locales given, Chinese then English are available.
func NewLocales(bus *eventbus.Bus, available ...eventbus.LocaleID) *Locales {
	if len(available) == 0 {
		available = []eventbus.LocaleID{eventbus.LocaleZh, eventbus.LocaleEn}
	}
	return &Locales{bus: bus, current: available[0], available: available}
}

// Current returns the active locale.
func (l *Locales) Current() eventbus.LocaleID {
	return l.current
}

// Available returns the selectable locales.
func (l *Locales) Available() []eventbus.LocaleID {
	return slices.Clone(l.available)
}

// SetLocale switches to id and publishes LocaleChanged if it differs from
// the current locale.
func (l *Locales) SetLocale(ctx context.Context, id eventbus.LocaleID) error {
	if !slices.Contains(l.available, id) {
		return oops.In("panel").
			Code(CodeLocaleUnknown).
			With("locale", string(id)).
			Errorf("locale not available: %s", id)
	}
	if id == l.current {
		return nil
	}
	l.current = id
	eventbus.Publish(ctx, l.bus, eventbus.LocaleChanged{Locale: id})
	return nil
}

// SetLocaleName switches to the locale named by a display name such as
// "English (en)".
func (l *Locales) SetLocaleName(ctx context.Context, name string) error {
	id, err := ParseLocaleName(name)
	if err != nil {
		return err
	}
	return l.SetLocale(ctx, id)
}
