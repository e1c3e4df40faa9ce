// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/partycrusher/partycrusher/lib/clock"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
)

// Listing is one LFG listing. Create it with [Draft.Commit]. All
// methods are safe for concurrent use.
type Listing struct {
	// Immutable after Commit.
	id        ID
	room      ref.RoomID
	creator   ref.UserID
	details   Details
	createdAt time.Time
	expiry    time.Duration

	mu           sync.Mutex
	requirements string
	required     role.Set
	// members is indexed by role.Key.Index, in join order.
	members             [4][]ref.UserID
	status              Status
	terminatedAt        time.Time
	confirmationPending bool
	expiryTimer         *clock.Timer
}

// ID returns the listing's identifier.
func (l *Listing) ID() ID { return l.id }

// Room returns the room the listing was created in.
func (l *Listing) Room() ref.RoomID { return l.room }

// Creator returns the listing's creator.
func (l *Listing) Creator() ref.UserID { return l.creator }

// IsCreator reports whether user created the listing.
func (l *Listing) IsCreator(user ref.UserID) bool { return user == l.creator }

// CreatedAt returns the commit time.
func (l *Listing) CreatedAt() time.Time { return l.createdAt }

// ExpiresAt returns when the listing expires if still Open.
func (l *Listing) ExpiresAt() time.Time { return l.createdAt.Add(l.expiry) }

// Status returns the current lifecycle state.
func (l *Listing) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// TerminatedAt returns when the listing became Closed or Expired, or
// the zero time while Open.
func (l *Listing) TerminatedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.terminatedAt
}

// JoinOutcome describes what JoinRole did.
type JoinOutcome uint8

const (
	// Unchanged: the actor already held the role.
	Unchanged JoinOutcome = iota
	// Joined: the actor was not a member and now holds the role.
	Joined
	// Switched: the actor moved from another role.
	Switched
)

// JoinResult reports a JoinRole outcome.
type JoinResult struct {
	Outcome JoinOutcome
	// Previous is the role the actor left when Outcome is Switched.
	Previous role.Key
	// ConfirmationPending is set when the creator switched role and
	// must now confirm or update the required roles.
	ConfirmationPending bool
}

// JoinRole places actor in key's sequence, removing them from any
// other. Rejoining the role already held changes nothing.
func (l *Listing) JoinRole(actor ref.UserID, key role.Key) (JoinResult, error) {
	if !key.Valid() {
		return JoinResult{}, fmt.Errorf("listing: join %q: %w", key, role.ErrUnknownRole)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != Open {
		return JoinResult{}, ErrListingClosed
	}

	current, isMember := l.roleOfLocked(actor)
	if isMember && current == key {
		return JoinResult{Outcome: Unchanged}, nil
	}

	result := JoinResult{Outcome: Joined}
	if isMember {
		l.removeLocked(current, actor)
		result.Outcome = Switched
		result.Previous = current
	}
	index := key.Index()
	l.members[index] = append(l.members[index], actor)

	if actor == l.creator {
		l.confirmationPending = true
		result.ConfirmationPending = true
	}
	return result, nil
}

// UpdateRequiredRoles replaces the required-role set and clears any
// pending confirmation.
func (l *Listing) UpdateRequiredRoles(actor ref.UserID, roles role.Set) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if actor != l.creator {
		return ErrNotCreator
	}
	if l.status != Open {
		return ErrListingClosed
	}
	if roles.IsEmpty() {
		return ErrEmptySelection
	}

	l.required = roles
	l.confirmationPending = false
	return nil
}

// Leave removes actor from their role and returns it.
func (l *Listing) Leave(actor ref.UserID) (role.Key, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// The creator can never leave, whatever the status.
	if actor == l.creator {
		return "", ErrIsCreator
	}
	if l.status != Open {
		return "", ErrListingClosed
	}
	current, isMember := l.roleOfLocked(actor)
	if !isMember {
		return "", ErrNotAMember
	}

	l.removeLocked(current, actor)
	return current, nil
}

// EditRequirements replaces the requirements text. Surrounding
// whitespace is trimmed; an empty result clears the text.
func (l *Listing) EditRequirements(actor ref.UserID, text string) error {
	text = strings.TrimSpace(text)

	l.mu.Lock()
	defer l.mu.Unlock()

	if actor != l.creator {
		return ErrNotCreator
	}
	if l.status != Open {
		return ErrListingClosed
	}
	if length := utf8.RuneCountInString(text); length > MaxRequirementsLength {
		return fmt.Errorf("%w: %d characters (limit %d)", ErrTextTooLong, length, MaxRequirementsLength)
	}

	l.requirements = text
	return nil
}

// Close moves an Open listing to Closed and cancels its expiry.
func (l *Listing) Close(actor ref.UserID, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if actor != l.creator {
		return ErrNotCreator
	}
	if l.status != Open {
		return ErrAlreadyClosed
	}

	l.status = Closed
	l.terminatedAt = now
	l.confirmationPending = false
	if l.expiryTimer != nil {
		l.expiryTimer.Stop()
		l.expiryTimer = nil
	}
	return nil
}

// Expire moves the listing to Expired if it is still Open and its
// expiry time has been reached. Reports whether it did; every other
// call is a no-op.
func (l *Listing) Expire(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != Open || now.Before(l.createdAt.Add(l.expiry)) {
		return false
	}

	l.status = Expired
	l.terminatedAt = now
	l.confirmationPending = false
	l.expiryTimer = nil
	return true
}

// ScheduleExpiry arms the listing's expiry timer on clk. When it
// fires and Expire transitions the listing, onExpire is called (on
// the timer's goroutine). Scheduling again replaces the previous
// timer. A listing that is no longer Open is not scheduled, and one
// already past its expiry time expires immediately.
func (l *Listing) ScheduleExpiry(clk clock.Clock, onExpire func(*Listing)) {
	fire := func() {
		if l.Expire(clk.Now()) && onExpire != nil {
			onExpire(l)
		}
	}

	l.mu.Lock()
	if l.status != Open {
		l.mu.Unlock()
		return
	}
	if l.expiryTimer != nil {
		l.expiryTimer.Stop()
		l.expiryTimer = nil
	}
	remaining := l.createdAt.Add(l.expiry).Sub(clk.Now())
	if remaining <= 0 {
		l.mu.Unlock()
		fire()
		return
	}
	l.expiryTimer = clk.AfterFunc(remaining, fire)
	l.mu.Unlock()
}

// RoleOf returns the role user currently holds.
func (l *Listing) RoleOf(user ref.UserID) (role.Key, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roleOfLocked(user)
}

// Required returns the required-role set.
func (l *Listing) Required() role.Set {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.required
}

// RoleEnabled reports whether key's join control is enabled: the
// listing is Open and key is required.
func (l *Listing) RoleEnabled(key role.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status == Open && l.required.Has(key)
}

func (l *Listing) roleOfLocked(user ref.UserID) (role.Key, bool) {
	for _, key := range role.All() {
		if slices.Contains(l.members[key.Index()], user) {
			return key, true
		}
	}
	return "", false
}

// removeLocked deletes user from key's sequence, keeping the order of
// everyone else.
func (l *Listing) removeLocked(key role.Key, user ref.UserID) {
	index := key.Index()
	l.members[index] = slices.DeleteFunc(l.members[index], func(member ref.UserID) bool {
		return member == user
	})
}
