// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/partycrusher/partycrusher/lib/ref"
)

var uniqueCounter atomic.Uint64

// UniqueID returns "prefix-N" where N increases monotonically across
// the test binary.
//
//	txnID := testutil.UniqueID("txn") // "txn-1", "txn-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// UserID returns the user ID @localpart:example.org.
func UserID(localpart string) ref.UserID {
	return ref.MustParseUserID("@" + localpart + ":example.org")
}

// RoomID returns a fresh room ID on example.org.
func RoomID() ref.RoomID {
	return ref.MustParseRoomID("!" + UniqueID("room") + ":example.org")
}
