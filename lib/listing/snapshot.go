// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"slices"
	"time"

	"github.com/partycrusher/partycrusher/lib/codec"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
)

// RoleMembers is one role's sequence in join order.
type RoleMembers struct {
	Role  role.Key     `cbor:"role"`
	Users []ref.UserID `cbor:"users"`
}

// Snapshot is a consistent copy of a listing's state. It shares no
// memory with the listing.
type Snapshot struct {
	ID           ID         `cbor:"id"`
	Room         ref.RoomID `cbor:"room"`
	Creator      ref.UserID `cbor:"creator"`
	Details      Details    `cbor:"details"`
	Requirements string     `cbor:"requirements"`
	Required     role.Set   `cbor:"required"`
	// Members has one entry per role in display order, including
	// roles that are not required.
	Members             []RoleMembers `cbor:"members"`
	Status              Status        `cbor:"status"`
	ConfirmationPending bool          `cbor:"confirmation_pending"`
	CreatedAt           time.Time     `cbor:"created_at"`
	ExpiresAt           time.Time     `cbor:"expires_at"`
}

// Snapshot copies the listing's current state.
func (l *Listing) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	members := make([]RoleMembers, 0, len(l.members))
	for _, key := range role.All() {
		members = append(members, RoleMembers{
			Role:  key,
			Users: slices.Clone(l.members[key.Index()]),
		})
	}
	return Snapshot{
		ID:                  l.id,
		Room:                l.room,
		Creator:             l.creator,
		Details:             l.details,
		Requirements:        l.requirements,
		Required:            l.required,
		Members:             members,
		Status:              l.status,
		ConfirmationPending: l.confirmationPending,
		CreatedAt:           l.createdAt,
		ExpiresAt:           l.createdAt.Add(l.expiry),
	}
}

// MembersOf returns key's sequence.
func (s Snapshot) MembersOf(key role.Key) []ref.UserID {
	for _, entry := range s.Members {
		if entry.Role == key {
			return entry.Users
		}
	}
	return nil
}

// RoleOf returns the role user holds in the snapshot.
func (s Snapshot) RoleOf(user ref.UserID) (role.Key, bool) {
	for _, entry := range s.Members {
		if slices.Contains(entry.Users, user) {
			return entry.Role, true
		}
	}
	return "", false
}

// MemberCount returns the number of users across all roles.
func (s Snapshot) MemberCount() int {
	count := 0
	for _, entry := range s.Members {
		count += len(entry.Users)
	}
	return count
}

// Fingerprint hashes the snapshot's deterministic encoding. Equal
// fingerprints mean equal state.
func (s Snapshot) Fingerprint() (codec.Digest, error) {
	return codec.Fingerprint(s)
}
