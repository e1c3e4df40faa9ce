// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package role

import "strings"

// Set is a set of roles. The zero value is empty and ready to use.
// Sets are values; methods that change a set return the new one.
type Set uint8

func bit(key Key) Set {
	index := key.Index()
	if index < 0 {
		return 0
	}
	return 1 << uint(index)
}

// NewSet returns a set holding keys. Invalid keys are ignored.
func NewSet(keys ...Key) Set {
	var set Set
	for _, key := range keys {
		set |= bit(key)
	}
	return set
}

// ParseSet normalizes each label and returns the resulting set. Any
// label that does not normalize fails the whole parse.
func ParseSet(labels []string) (Set, error) {
	var set Set
	for _, label := range labels {
		key, err := Normalize(label)
		if err != nil {
			return 0, err
		}
		set |= bit(key)
	}
	return set, nil
}

// Has reports whether key is in the set.
func (s Set) Has(key Key) bool {
	b := bit(key)
	return b != 0 && s&b != 0
}

// With returns s plus key.
func (s Set) With(key Key) Set { return s | bit(key) }

// Without returns s minus key.
func (s Set) Without(key Key) Set { return s &^ bit(key) }

// IsEmpty reports whether the set holds no roles.
func (s Set) IsEmpty() bool { return s&NewSet(all[:]...) == 0 }

// Len returns the number of roles in the set.
func (s Set) Len() int {
	count := 0
	for _, key := range all {
		if s.Has(key) {
			count++
		}
	}
	return count
}

// Keys returns the members in display order.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, len(all))
	for _, key := range all {
		if s.Has(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// String formats the set as comma-separated titles, e.g.
// "Healer, Melee DPS".
func (s Set) String() string {
	titles := make([]string, 0, len(all))
	for _, key := range s.Keys() {
		titles = append(titles, key.Title())
	}
	if len(titles) == 0 {
		return "none"
	}
	return strings.Join(titles, ", ")
}

// MarshalText encodes the set as comma-separated keys.
func (s Set) MarshalText() ([]byte, error) {
	keys := s.Keys()
	parts := make([]string, len(keys))
	for index, key := range keys {
		parts[index] = string(key)
	}
	return []byte(strings.Join(parts, ",")), nil
}
