// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

type recordingFataler struct {
	message string
}

func (r *recordingFataler) Helper() {}

func (r *recordingFataler) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func TestRequireReceiveReturnsValue(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestRequireReceiveClosedChannelFails(t *testing.T) {
	ch := make(chan int)
	close(ch)
	recorder := &recordingFataler{}
	func() {
		defer func() { recover() }()
		RequireReceive(recorder, ch, time.Second, "waiting for %s", "edit")
	}()
	if recorder.message != "channel closed without sending a value: waiting for edit" {
		t.Errorf("message = %q", recorder.message)
	}
}

func TestUniqueIDIncreases(t *testing.T) {
	first := UniqueID("txn")
	second := UniqueID("txn")
	if first == second {
		t.Fatalf("UniqueID repeated %q", first)
	}
}

func TestIdentifierHelpers(t *testing.T) {
	if got := UserID("alice").String(); got != "@alice:example.org" {
		t.Errorf("UserID = %q", got)
	}
	if RoomID() == RoomID() {
		t.Error("RoomID repeated")
	}
}
