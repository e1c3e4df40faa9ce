// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import "fmt"

// Status is a listing's lifecycle state. Closed and Expired are
// terminal.
type Status uint8

const (
	Open Status = iota
	Closed
	Expired
)

// String returns "open", "closed", or "expired".
func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Terminal reports whether s is Closed or Expired.
func (s Status) Terminal() bool { return s == Closed || s == Expired }

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case Open, Closed, Expired:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("listing: cannot encode status %d", uint8(s))
	}
}
