// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
)

// DraftRequest is the input of the creation command.
type DraftRequest struct {
	Room    ref.RoomID
	Creator ref.UserID

	Dungeon     Dungeon
	KeyLevel    int
	Timing      Timing
	CreatorRole role.Key

	// Optional. Empty Passphrase and ListedAs are generated.
	Requirements string
	Passphrase   string
	ListedAs     string
}

// Draft is a listing awaiting the creator's choice of required roles.
// A Draft is owned by the goroutine handling its creator and is not
// safe for concurrent use.
type Draft struct {
	ID           ID
	Room         ref.RoomID
	Creator      ref.UserID
	CreatorRole  role.Key
	Details      Details
	Requirements string
	CreatedAt    time.Time

	committed bool
}

// NewDraft validates request and fills in the generated fields.
func NewDraft(request DraftRequest, now time.Time) (*Draft, error) {
	if request.Room.IsZero() {
		return nil, fmt.Errorf("listing: draft room is required")
	}
	if request.Creator.IsZero() {
		return nil, fmt.Errorf("listing: draft creator is required")
	}
	dungeon, err := ParseDungeon(string(request.Dungeon))
	if err != nil {
		return nil, err
	}
	if request.KeyLevel < 1 || request.KeyLevel > MaxKeyLevel {
		return nil, fmt.Errorf("%w: %d (want 1 to %d)", ErrInvalidKeyLevel, request.KeyLevel, MaxKeyLevel)
	}
	if request.Timing != Timed && request.Timing != Completion {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidTiming, request.Timing)
	}
	if !request.CreatorRole.Valid() {
		return nil, fmt.Errorf("listing: creator role %q: %w", request.CreatorRole, role.ErrUnknownRole)
	}

	requirements := strings.TrimSpace(request.Requirements)
	if utf8.RuneCountInString(requirements) > MaxRequirementsLength {
		return nil, fmt.Errorf("%w: %d characters (limit %d)", ErrTextTooLong, utf8.RuneCountInString(requirements), MaxRequirementsLength)
	}

	passphrase := strings.TrimSpace(request.Passphrase)
	if passphrase == "" {
		generated, err := GeneratePassphrase()
		if err != nil {
			return nil, err
		}
		passphrase = generated
	}
	listedAs := strings.TrimSpace(request.ListedAs)
	if listedAs == "" {
		listedAs = DefaultListedAs(dungeon)
	}

	return &Draft{
		ID:          NewID(),
		Room:        request.Room,
		Creator:     request.Creator,
		CreatorRole: request.CreatorRole,
		Details: Details{
			Dungeon:    dungeon,
			KeyLevel:   request.KeyLevel,
			Timing:     request.Timing,
			ListedAs:   listedAs,
			Passphrase: passphrase,
		},
		Requirements: requirements,
		CreatedAt:    now,
	}, nil
}

// Expired reports whether the draft is older than timeout at now.
func (d *Draft) Expired(now time.Time, timeout time.Duration) bool {
	return !now.Before(d.CreatedAt.Add(timeout))
}

// Commit creates the Open listing. The creator is placed in their
// role; every role has an (possibly empty) sequence. required must be
// non-empty. A draft commits at most once.
func (d *Draft) Commit(required role.Set, now time.Time, expiry time.Duration) (*Listing, error) {
	if d.committed {
		return nil, fmt.Errorf("listing: draft %s already committed", d.ID.Short())
	}
	if required.IsEmpty() {
		return nil, ErrEmptySelection
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("listing: expiry must be positive, got %v", expiry)
	}

	listing := &Listing{
		id:           d.ID,
		room:         d.Room,
		creator:      d.Creator,
		details:      d.Details,
		createdAt:    now,
		expiry:       expiry,
		requirements: d.Requirements,
		required:     required,
		status:       Open,
	}
	listing.members[d.CreatorRole.Index()] = []ref.UserID{d.Creator}
	d.committed = true
	return listing, nil
}
