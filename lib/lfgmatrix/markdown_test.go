// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"strings"
	"testing"

	"github.com/partycrusher/partycrusher/lib/render"
)

func TestFormatHTML(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{name: "strong", markdown: "**KC**", want: "<p><strong>KC</strong></p>"},
		{name: "strikethrough", markdown: "~~KC: Dawnbreaker +15~~", want: "<p><del>KC: Dawnbreaker +15</del></p>"},
		{name: "spoiler", markdown: "Passphrase: ||Quiet-Otter-42||", want: "<p>Passphrase: <span data-mx-spoiler>Quiet-Otter-42</span></p>"},
		{name: "single pipe", markdown: "tank | healer", want: "<p>tank | healer</p>"},
		{name: "escaped spoiler", markdown: render.Escape("||not hidden||"), want: "<p>||not hidden||</p>"},
		{name: "heading", markdown: "### KC: Ara-Kara +10", want: "<h3>KC: Ara-Kara +10</h3>"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FormatHTML(test.markdown)
			if err != nil {
				t.Fatalf("FormatHTML: %v", err)
			}
			if got != test.want {
				t.Errorf("FormatHTML(%q) = %q, want %q", test.markdown, got, test.want)
			}
		})
	}
}

func TestFormatHTML_StruckTrailingTilde(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "passphrase",
			markdown: `Passphrase: ||~~\~\~z\~&#126;~~||`,
			want:     "<p>Passphrase: <span data-mx-spoiler><del>~~z~~</del></span></p>",
		},
		{
			name:     "line",
			markdown: `~~Requirements: gg&#126;~~`,
			want:     "<p><del>Requirements: gg~</del></p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FormatHTML(test.markdown)
			if err != nil {
				t.Fatalf("FormatHTML: %v", err)
			}
			if got != test.want {
				t.Errorf("FormatHTML(%q) = %q, want %q", test.markdown, got, test.want)
			}
		})
	}
}

func TestFormatHTML_HardWraps(t *testing.T) {
	got, err := FormatHTML("first\nsecond")
	if err != nil {
		t.Fatalf("FormatHTML: %v", err)
	}
	if !strings.Contains(got, "first<br") || !strings.Contains(got, "second") {
		t.Errorf("FormatHTML kept a soft break: %q", got)
	}
}

func TestFormatHTML_OmitsRawHTML(t *testing.T) {
	for _, markdown := range []string{
		"<script>alert(1)</script>",
		"hello <img src=x onerror=alert(1)>",
	} {
		got, err := FormatHTML(markdown)
		if err != nil {
			t.Fatalf("FormatHTML: %v", err)
		}
		if strings.Contains(got, "<script") || strings.Contains(got, "<img") {
			t.Errorf("FormatHTML(%q) passed raw HTML through: %q", markdown, got)
		}
	}
}
