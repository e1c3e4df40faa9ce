// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"errors"
	"slices"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "plain words", line: "join  tank\t#1a2b", want: []string{"join", "tank", "#1a2b"}},
		{name: "double quotes", line: `create -d "Halls of Atonement"`, want: []string{"create", "-d", "Halls of Atonement"}},
		{name: "single quotes", line: `edit 'no "leavers"'`, want: []string{"edit", `no "leavers"`}},
		{name: "typographic quotes", line: "edit “bring a brez”", want: []string{"edit", "bring a brez"}},
		{name: "apostrophe inside word", line: "-d So'leah's", want: []string{"-d", "So'leah's"}},
		{name: "backslash escape", line: `edit a\ b \"c\"`, want: []string{"edit", "a b", `"c"`}},
		{name: "empty quoted argument", line: `edit ""`, want: []string{"edit", ""}},
		{name: "blank line", line: "   ", want: nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := splitArgs(test.line)
			if err != nil {
				t.Fatalf("splitArgs(%q): %v", test.line, err)
			}
			if !slices.Equal(got, test.want) {
				t.Errorf("splitArgs(%q) = %q, want %q", test.line, got, test.want)
			}
		})
	}
}

func TestSplitArgs_Unterminated(t *testing.T) {
	for _, line := range []string{`edit "open`, `edit 'open`, `edit trailing\`} {
		if _, err := splitArgs(line); !errors.Is(err, errUnterminatedQuote) {
			t.Errorf("splitArgs(%q) error = %v, want errUnterminatedQuote", line, err)
		}
	}
}
