// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package role is the registry of the four party roles: tank, healer,
// melee DPS, and ranged DPS.
//
// [Key] is the canonical identifier. Every other representation (the
// display title, the icon used for the role's join control, and the
// loose labels users type) maps onto a Key through this package. The
// set is fixed and [All] returns it in display order.
//
// Everything here is a pure lookup and safe for concurrent use.
package role
