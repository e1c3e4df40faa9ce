// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType identifies a Matrix state or timeline event type. It is a
// named string rather than a validated struct: event types are opaque
// identifiers, and the type only keeps state keys and event types from
// being swapped by accident.
type EventType string

// String returns the event type string.
func (t EventType) String() string { return string(t) }
