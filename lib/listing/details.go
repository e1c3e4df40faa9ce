// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// MaxRequirementsLength is the longest requirements text accepted, in
// characters.
const MaxRequirementsLength = 200

// MaxKeyLevel is the highest keystone level accepted.
const MaxKeyLevel = 99

// PassphraseLength is the length of generated passphrases.
const PassphraseLength = 8

const passphraseAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ID identifies a listing or draft. It is a random UUID.
type ID string

// NewID returns a fresh random ID.
func NewID() ID { return ID(uuid.NewString()) }

// ParseID validates s as a UUID.
func ParseID(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("listing: invalid id %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

// String returns the full ID.
func (id ID) String() string { return string(id) }

// Short returns the first eight characters, the form users type after
// '#' to pick a listing.
func (id ID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}

// Timing is the creator's timing expectation for the run.
type Timing string

const (
	Timed      Timing = "Timed"
	Completion Timing = "Completion"
)

// ParseTiming accepts "Timed" or "Completion" in any case.
func ParseTiming(value string) (Timing, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "timed":
		return Timed, nil
	case "completion":
		return Completion, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidTiming, value)
	}
}

// Details is the descriptive metadata fixed at creation.
type Details struct {
	Dungeon    Dungeon `cbor:"dungeon"`
	KeyLevel   int     `cbor:"key_level"`
	Timing     Timing  `cbor:"timing"`
	ListedAs   string  `cbor:"listed_as"`
	Passphrase string  `cbor:"passphrase"`
}

// DefaultListedAs is the listed-as name used when the creator gives
// none.
func DefaultListedAs(dungeon Dungeon) string {
	return "KC: " + string(dungeon)
}

// GeneratePassphrase returns PassphraseLength characters drawn
// uniformly from letters and digits.
func GeneratePassphrase() (string, error) {
	limit := big.NewInt(int64(len(passphraseAlphabet)))
	var builder strings.Builder
	builder.Grow(PassphraseLength)
	for range PassphraseLength {
		index, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("listing: generating passphrase: %w", err)
		}
		builder.WriteByte(passphraseAlphabet[index.Int64()])
	}
	return builder.String(), nil
}
