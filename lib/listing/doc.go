// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package listing implements the lifecycle of a looking-for-group
// listing: the two-phase creation flow, role membership, the
// creator-only edits, and the terminal Closed and Expired states.
//
// A listing starts as a [Draft] holding the creator's metadata and
// own role. [Draft.Commit] with a non-empty set of required roles
// produces an Open [Listing] with the creator already placed.
//
// Every [Listing] operation validates first and mutates second, under
// the listing's own mutex, so a rejected operation leaves the listing
// exactly as it was and no operation is observable half-applied. Once
// a listing is Closed or Expired it accepts no further mutation.
//
// Role membership keeps one ordered sequence per role in join order.
// A user is in at most one sequence. The creator is always in exactly
// one sequence and can switch roles but never leave; switching marks
// the required-role set as pending confirmation, which only
// [Listing.UpdateRequiredRoles] clears.
//
// Expiry is a timer owned by the listing ([Listing.ScheduleExpiry]).
// Close stops it, and both Close and Expire check-and-set the status
// under the mutex, so exactly one terminal transition happens.
//
// [Snapshot] is an immutable copy of a listing's state, used for
// rendering and for the fingerprint that detects no-op updates.
package listing
