// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import "errors"

// Rejections. Each is user-facing and leaves the listing unchanged.
var (
	ErrNotCreator     = errors.New("listing: only the creator can do that")
	ErrListingClosed  = errors.New("listing: listing is no longer open")
	ErrAlreadyClosed  = errors.New("listing: listing is already closed")
	ErrNotAMember     = errors.New("listing: not a member of this listing")
	ErrIsCreator      = errors.New("listing: the creator cannot leave")
	ErrEmptySelection = errors.New("listing: at least one role must be selected")
	ErrTextTooLong    = errors.New("listing: requirements text is too long")
	ErrDraftExpired   = errors.New("listing: draft has expired")
)

// Creation input errors.
var (
	ErrUnknownDungeon  = errors.New("listing: unknown dungeon")
	ErrInvalidTiming   = errors.New("listing: timing must be Timed or Completion")
	ErrInvalidKeyLevel = errors.New("listing: invalid key level")
)
