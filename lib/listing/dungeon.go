// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"fmt"
	"strings"
)

// Dungeon is one of the fixed dungeons a listing can be created for.
type Dungeon string

var dungeons = [...]Dungeon{
	"Dawnbreaker",
	"Ara-Kara",
	"Operation: Floodgate",
	"Priory of Sacred Flame",
	"Eco-Dome Al'dani",
	"Halls of Atonement",
	"Tazavesh: Streets of Wonder",
	"Tazavesh: So'leah's Gambit",
}

// Dungeons returns the fixed dungeon list.
func Dungeons() []Dungeon {
	list := make([]Dungeon, len(dungeons))
	copy(list, dungeons[:])
	return list
}

// ParseDungeon matches name against the dungeon list ignoring case.
// An exact match wins; otherwise name must be a prefix of exactly one
// dungeon.
func ParseDungeon(name string) (Dungeon, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	if wanted == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownDungeon)
	}

	var matches []Dungeon
	for _, dungeon := range dungeons {
		lower := strings.ToLower(string(dungeon))
		if lower == wanted {
			return dungeon, nil
		}
		if strings.HasPrefix(lower, wanted) {
			matches = append(matches, dungeon)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownDungeon, name)
	default:
		names := make([]string, len(matches))
		for index, match := range matches {
			names[index] = string(match)
		}
		return "", fmt.Errorf("%w: %q is ambiguous (%s)", ErrUnknownDungeon, name, strings.Join(names, ", "))
	}
}
