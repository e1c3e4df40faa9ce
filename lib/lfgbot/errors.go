// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"errors"
	"fmt"

	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/role"
)

var (
	// ErrPublishFailed means the surface refused the new listing. No
	// listing was created and the draft was abandoned.
	ErrPublishFailed = errors.New("lfgbot: publishing the listing failed")

	// ErrUnknownListing means no listing matches the target, or it
	// was pruned.
	ErrUnknownListing = errors.New("lfgbot: unknown listing")

	// ErrAmbiguousListing means several listings match and the actor
	// must pick one.
	ErrAmbiguousListing = errors.New("lfgbot: several listings match")

	// ErrRoleNotRequired means the role's join control is disabled.
	ErrRoleNotRequired = errors.New("lfgbot: role is not required")

	// ErrNoDraft means the actor has no draft waiting for roles.
	ErrNoDraft = errors.New("lfgbot: no draft awaiting roles")
)

type rejection struct {
	err     error
	reason  string
	message string
}

// rejections maps each user-facing error to its metric label and
// private reply. Order matters only for errors that wrap others.
var rejections = []rejection{
	{listing.ErrNotCreator, "not_creator", "🚫 Only the group creator can do that."},
	{listing.ErrListingClosed, "listing_closed", "🔒 This group is no longer open."},
	{listing.ErrAlreadyClosed, "already_closed", "🔒 This group is already closed."},
	{listing.ErrNotAMember, "not_a_member", "⚠️ You're not in the party."},
	{listing.ErrIsCreator, "is_creator", "🚫 You can't leave the party as the creator. Use **close** instead."},
	{listing.ErrEmptySelection, "empty_selection", "⚠️ Select at least one role."},
	{listing.ErrTextTooLong, "text_too_long", fmt.Sprintf("⚠️ Requirements are limited to %d characters.", listing.MaxRequirementsLength)},
	{listing.ErrDraftExpired, "draft_expired", "⌛ That listing draft expired. Start again with **create**."},
	{listing.ErrUnknownDungeon, "unknown_dungeon", "⚠️ Unknown dungeon. Use **help** to see the list."},
	{listing.ErrInvalidTiming, "invalid_timing", "⚠️ Timing must be **Timed** or **Completion**."},
	{listing.ErrInvalidKeyLevel, "invalid_key_level", fmt.Sprintf("⚠️ Key level must be between 1 and %d.", listing.MaxKeyLevel)},
	{role.ErrUnknownRole, "unknown_role", "⚠️ Unknown role. Use tank, healer, melee or ranged."},
	{ErrPublishFailed, "publish_failed", "❌ Could not post the listing. Please try again."},
	{ErrUnknownListing, "unknown_listing", "⚠️ That listing no longer exists."},
	{ErrAmbiguousListing, "ambiguous_listing", "⚠️ More than one listing matches. Reply to the listing or add its **#id**."},
	{ErrRoleNotRequired, "role_not_required", "🚫 That role isn't needed for this group."},
	{ErrNoDraft, "no_draft", "⚠️ You have no listing waiting for roles. Start one with **create**."},
}

// GenericRejection is the reply for errors outside the taxonomy.
const GenericRejection = "⚠️ Something went wrong. Please try again."

// RejectionMessage returns the private reply for err. ok is false
// when err is not a user-facing rejection; the message is then
// GenericRejection.
func RejectionMessage(err error) (message string, ok bool) {
	if found, ok := classify(err); ok {
		return found.message, true
	}
	return GenericRejection, false
}

// IsRejection reports whether err is a user-facing rejection.
func IsRejection(err error) bool {
	_, ok := classify(err)
	return ok
}

func classify(err error) (rejection, bool) {
	if err == nil {
		return rejection{}, false
	}
	for _, candidate := range rejections {
		if errors.Is(err, candidate.err) {
			return candidate, true
		}
	}
	return rejection{}, false
}
