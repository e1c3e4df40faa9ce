// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for PartyCrusher
// packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that tests driving a fake clock never touch the wall
// clock directly except as a hang guard.
//
// [UniqueID] and [UserID] build identifiers that stay distinct across
// tests sharing one fake homeserver.
package testutil
