// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: "@alice:example.org"},
		{name: "valid with port", input: "@bob:localhost:6167"},
		{name: "empty", input: "", wantErr: "must start with @"},
		{name: "wrong sigil", input: "!alice:example.org", wantErr: "must start with @"},
		{name: "missing server", input: "@alice", wantErr: "missing :server"},
		{name: "empty localpart", input: "@:example.org", wantErr: "empty localpart"},
		{name: "empty server", input: "@alice:", wantErr: "empty server"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			userID, err := ParseUserID(test.input)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseUserID(%q) succeeded, want error containing %q", test.input, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Errorf("error = %q, want substring %q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUserID(%q): %v", test.input, err)
			}
			if userID.String() != test.input {
				t.Errorf("String() = %q, want %q", userID.String(), test.input)
			}
		})
	}
}

func TestUserIDLocalpart(t *testing.T) {
	userID := MustParseUserID("@raid-leader:example.org")
	if got := userID.Localpart(); got != "raid-leader" {
		t.Errorf("Localpart() = %q, want %q", got, "raid-leader")
	}
}

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: "!abc123:example.org"},
		{name: "valid with port", input: "!opaque:localhost:6167"},
		{name: "empty", input: "", wantErr: "empty room ID"},
		{name: "wrong sigil", input: "#room:example.org", wantErr: "must start with '!'"},
		{name: "missing server", input: "!abc123", wantErr: "missing ':server' suffix"},
		{name: "empty local part", input: "!:example.org", wantErr: "empty local part"},
		{name: "empty server", input: "!abc123:", wantErr: "empty server name"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseRoomID(test.input)
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("ParseRoomID(%q): %v", test.input, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("ParseRoomID(%q) error = %v, want substring %q", test.input, err, test.wantErr)
			}
		})
	}
}

func TestParseEventID(t *testing.T) {
	if _, err := ParseEventID("$abc"); err != nil {
		t.Errorf("ParseEventID($abc): %v", err)
	}
	for _, bad := range []string{"", "$", "abc"} {
		if _, err := ParseEventID(bad); err == nil {
			t.Errorf("ParseEventID(%q) succeeded, want error", bad)
		}
	}
}

func TestTextRoundTripAsMapKey(t *testing.T) {
	// Sync responses key rooms by ID; decoding must validate keys.
	var decoded map[RoomID]int
	if err := json.Unmarshal([]byte(`{"!room:example.org": 1}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded[MustParseRoomID("!room:example.org")] != 1 {
		t.Errorf("decoded map = %v", decoded)
	}

	if err := json.Unmarshal([]byte(`{"not-a-room": 1}`), &decoded); err == nil {
		t.Error("Unmarshal accepted an invalid room ID key")
	}
}
