// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/partycrusher/partycrusher/lib/ref"
)

type sampleSnapshot struct {
	Status  string              `cbor:"status"`
	Members map[string][]string `cbor:"members"`
	Creator ref.UserID          `cbor:"creator"`
}

func sample() sampleSnapshot {
	return sampleSnapshot{
		Status: "open",
		Members: map[string][]string{
			"tank":   {"@alice:example.org"},
			"healer": {"@bob:example.org"},
			"melee":  nil,
		},
		Creator: ref.MustParseUserID("@alice:example.org"),
	}
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(sample())
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal produced different bytes for equal values")
		}
	}
}

func TestUserIDEncodesAsText(t *testing.T) {
	data, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"creator": "@alice:example.org"`) {
		t.Errorf("creator not encoded as text string: %s", diagnostic)
	}
}

func TestFingerprintStableAndSensitive(t *testing.T) {
	first, err := Fingerprint(sample())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	second, err := Fingerprint(sample())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if first != second {
		t.Fatalf("equal values fingerprinted differently: %s vs %s", first, second)
	}
	if first.IsZero() {
		t.Fatal("fingerprint is zero")
	}

	changed := sample()
	changed.Status = "closed"
	third, err := Fingerprint(changed)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if third == first {
		t.Error("status change did not change fingerprint")
	}
}

func TestDigestFormatting(t *testing.T) {
	digest, err := Fingerprint("x")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(digest.String()) != 64 {
		t.Errorf("String() length = %d, want 64", len(digest.String()))
	}
	if !strings.HasPrefix(digest.String(), digest.Short()) || len(digest.Short()) != 12 {
		t.Errorf("Short() = %q is not a 12-char prefix of %q", digest.Short(), digest.String())
	}
}
