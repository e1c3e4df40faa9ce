// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a title, label, or icon does not
// name one of the four roles.
var ErrUnknownRole = errors.New("unknown role")

// Key is a canonical role identifier. The zero value is not a valid
// role.
type Key string

const (
	Tank      Key = "tank"
	Healer    Key = "healer"
	MeleeDPS  Key = "melee_dps"
	RangedDPS Key = "ranged_dps"
)

// all is the fixed display order.
var all = [...]Key{Tank, Healer, MeleeDPS, RangedDPS}

type metadata struct {
	title string
	icon  string
}

var registry = map[Key]metadata{
	Tank:      {title: "Tank", icon: "🛡️"},
	Healer:    {title: "Healer", icon: "❤️‍🩹"},
	MeleeDPS:  {title: "Melee DPS", icon: "⚔️"},
	RangedDPS: {title: "Ranged DPS", icon: "🏹"},
}

// aliases maps squashed labels (lowercase, no spaces, underscores, or
// hyphens) to keys. Titles and keys squash to entries here too.
var aliases = map[string]Key{
	"tank":      Tank,
	"healer":    Healer,
	"heal":      Healer,
	"heals":     Healer,
	"meleedps":  MeleeDPS,
	"melee":     MeleeDPS,
	"mdps":      MeleeDPS,
	"rangeddps": RangedDPS,
	"ranged":    RangedDPS,
	"range":     RangedDPS,
	"rdps":      RangedDPS,
}

// All returns the four roles in display order. The returned slice is a
// fresh copy.
func All() []Key {
	keys := make([]Key, len(all))
	copy(keys, all[:])
	return keys
}

// Valid reports whether k is one of the four roles.
func (k Key) Valid() bool {
	_, ok := registry[k]
	return ok
}

// String returns the canonical key.
func (k Key) String() string { return string(k) }

// Title returns the display title, e.g. "Melee DPS". Invalid keys
// return the raw key.
func (k Key) Title() string {
	if meta, ok := registry[k]; ok {
		return meta.title
	}
	return string(k)
}

// Icon returns the emoji shown on the role's join control. Invalid
// keys return "".
func (k Key) Icon() string {
	return registry[k].icon
}

// Index returns the position of k in display order, or -1.
func (k Key) Index() int {
	for index, key := range all {
		if key == k {
			return index
		}
	}
	return -1
}

// TitleOf returns the display title for key.
func TitleOf(key Key) string { return key.Title() }

// KeyOf maps a display title to its key. Matching ignores case and
// surrounding whitespace but otherwise requires one of the four
// titles exactly.
func KeyOf(title string) (Key, error) {
	trimmed := strings.TrimSpace(title)
	for _, key := range all {
		if strings.EqualFold(registry[key].title, trimmed) {
			return key, nil
		}
	}
	return "", fmt.Errorf("role title %q: %w", title, ErrUnknownRole)
}

// Normalize maps a loosely written label to a key. It accepts keys,
// titles, and common abbreviations in any case, with spaces,
// underscores, or hyphens anywhere: "Melee DPS", "melee_dps", "mdps",
// and "Ranged-DPS" all normalize.
func Normalize(label string) (Key, error) {
	if key, ok := aliases[squash(label)]; ok {
		return key, nil
	}
	return "", fmt.Errorf("role %q: %w", label, ErrUnknownRole)
}

// FromIcon maps a join-control emoji back to its key. Variation
// selectors are ignored, so clients that drop U+FE0F still match.
func FromIcon(icon string) (Key, error) {
	stripped := stripVariation(strings.TrimSpace(icon))
	for _, key := range all {
		if stripVariation(registry[key].icon) == stripped {
			return key, nil
		}
	}
	return "", fmt.Errorf("role icon %q: %w", icon, ErrUnknownRole)
}

func squash(label string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(label) {
		switch r {
		case ' ', '\t', '_', '-':
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func stripVariation(value string) string {
	return strings.ReplaceAll(value, "\ufe0f", "")
}
