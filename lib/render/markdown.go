// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"

	"github.com/partycrusher/partycrusher/lib/ref"
)

// Pill is the markdown for a user mention: a matrix.to link labeled
// with the full user ID, which clients display as a pill.
func Pill(user ref.UserID) string {
	return "[" + Escape(user.String()) + "](https://matrix.to/#/" + user.String() + ")"
}

// Escape backslash-escapes characters that would otherwise start
// markdown formatting, so user text renders literally. Line breaks
// become spaces.
func Escape(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\n', '\r':
			builder.WriteByte(' ')
			continue
		case '\\', '*', '_', '~', '|', '`', '[', ']', '<', '>', '#':
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// codeSpan wraps text in a code span. Backticks inside become
// apostrophes; code spans cannot escape them.
func codeSpan(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "'") + "`"
}

// strike wraps line in strikethrough markers. A closing marker right
// after a tilde does not close, escaped or not, so a trailing escaped
// tilde is written as a character reference.
func strike(line string) string {
	if line == "" {
		return line
	}
	if rest, ok := strings.CutSuffix(line, `\~`); ok {
		line = rest + "&#126;"
	}
	return "~~" + line + "~~"
}

// strikeDescription strikes every line. The passphrase line keeps its
// spoiler markers outside and strikes only the hidden value.
func strikeDescription(lines []string) []string {
	struck := make([]string, len(lines))
	for index, line := range lines {
		if value, ok := passphraseValue(line); ok {
			struck[index] = passphrasePrefix + "||" + strike(value) + "||"
			continue
		}
		struck[index] = strike(line)
	}
	return struck
}

// passphraseValue extracts the escaped value from a rendered
// passphrase line.
func passphraseValue(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, passphrasePrefix+"||")
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, "||")
}

// Markdown lays the view out as one message body: a heading, the
// description, one block per role field, the footer, and a line
// listing the enabled controls.
func (v View) Markdown() string {
	var builder strings.Builder
	builder.WriteString("### ")
	builder.WriteString(v.Title)
	builder.WriteString("\n\n")
	for _, line := range v.Description {
		builder.WriteString(line)
		builder.WriteString("  \n")
	}
	for _, field := range v.Fields {
		builder.WriteString("\n**")
		builder.WriteString(field.Name)
		builder.WriteString("**  \n")
		for _, line := range strings.Split(field.Value, "\n") {
			builder.WriteString(line)
			builder.WriteString("  \n")
		}
	}
	builder.WriteString("\n*")
	builder.WriteString(v.Footer)
	builder.WriteString("*\n")

	var enabled []string
	for _, control := range v.Controls {
		if control.Enabled {
			enabled = append(enabled, control.Label)
		}
	}
	if len(enabled) > 0 {
		builder.WriteString("\n")
		builder.WriteString(strings.Join(enabled, " · "))
		builder.WriteString("\n")
	}
	return builder.String()
}
