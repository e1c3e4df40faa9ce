// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/lib/roleresolver"
)

// Placeholder values for empty role fields.
const (
	EmptyRequired    = "*— empty —*"
	EmptyNotRequired = "*Filled Spot*"
	CreatorMarker    = " 👑"
	NoneText         = "None"
)

// Input is everything a view depends on.
type Input struct {
	Listing listing.Snapshot

	// LookingFor holds the resolved handle of each required role in
	// display order. Nil means plain "@Title" mentions.
	LookingFor []roleresolver.Handle
}

// ControlKind identifies an interactive control on the listing.
type ControlKind string

const (
	ControlRole  ControlKind = "role"
	ControlEdit  ControlKind = "edit"
	ControlLeave ControlKind = "leave"
	ControlClose ControlKind = "close"
)

// Control is one interactive control and whether it accepts input.
type Control struct {
	Kind ControlKind
	// Role is set for ControlRole.
	Role    role.Key
	Label   string
	Enabled bool
}

// Field is one role's section of the view.
type Field struct {
	Role  role.Key
	Name  string
	Value string
}

// View is a rendered listing.
type View struct {
	Title       string
	Description []string
	Fields      []Field
	Footer      string
	Controls    []Control

	// Mentions are the users notified by the "Looking For" line. Empty
	// once the listing is no longer Open.
	Mentions []ref.UserID
}

// Render builds the view for in.
func Render(in Input) View {
	snapshot := in.Listing
	open := snapshot.Status == listing.Open

	view := View{
		Title:       title(snapshot),
		Description: description(snapshot, in.LookingFor),
		Fields:      fields(snapshot),
		Footer:      Footer(snapshot),
		Controls:    controls(snapshot),
	}
	if open {
		view.Mentions = mentions(in.LookingFor)
	} else {
		view.Title = strike(view.Title)
		view.Description = strikeDescription(view.Description)
	}
	return view
}

func title(snapshot listing.Snapshot) string {
	return fmt.Sprintf("KC: %s +%d", snapshot.Details.Dungeon, snapshot.Details.KeyLevel)
}

func description(snapshot listing.Snapshot, handles []roleresolver.Handle) []string {
	return []string{
		fmt.Sprintf("🪪 **Listed As**: %s", codeSpan(snapshot.Details.ListedAs)),
		passphraseLine(snapshot.Details.Passphrase),
		fmt.Sprintf("⏱️ **Timing Expectation**: %s", snapshot.Details.Timing),
		fmt.Sprintf("👥 **Looking For**: %s", lookingFor(snapshot.Required, handles)),
		fmt.Sprintf("📌 **Specific Requirements**: %s", orNone(Escape(snapshot.Requirements))),
	}
}

const passphrasePrefix = "🔑 **Passphrase**: "

func passphraseLine(passphrase string) string {
	return passphrasePrefix + "||" + Escape(passphrase) + "||"
}

func lookingFor(required role.Set, handles []roleresolver.Handle) string {
	if handles == nil {
		for _, key := range required.Keys() {
			handles = append(handles, roleresolver.Handle{Title: key.Title()})
		}
	}
	pings := make([]string, 0, len(handles))
	for _, handle := range handles {
		pings = append(pings, Escape(handle.Mention()))
	}
	return orNone(strings.Join(pings, ", "))
}

func mentions(handles []roleresolver.Handle) []ref.UserID {
	var users []ref.UserID
	seen := make(map[ref.UserID]bool)
	for _, handle := range handles {
		for _, member := range handle.Members {
			if !seen[member] {
				seen[member] = true
				users = append(users, member)
			}
		}
	}
	return users
}

func fields(snapshot listing.Snapshot) []Field {
	result := make([]Field, 0, len(snapshot.Members))
	for _, entry := range snapshot.Members {
		lines := make([]string, 0, len(entry.Users))
		for index, user := range entry.Users {
			line := fmt.Sprintf("%d. %s", index+1, Pill(user))
			if user == snapshot.Creator {
				line += CreatorMarker
			}
			lines = append(lines, line)
		}

		value := strings.Join(lines, "\n")
		if value == "" {
			if snapshot.Required.Has(entry.Role) {
				value = EmptyRequired
			} else {
				value = EmptyNotRequired
			}
		}
		result = append(result, Field{
			Role:  entry.Role,
			Name:  fmt.Sprintf("%s %s (%d)", entry.Role.Icon(), entry.Role.Title(), len(entry.Users)),
			Value: value,
		})
	}
	return result
}

// Footer returns the status line for snapshot.
func Footer(snapshot listing.Snapshot) string {
	lifetime := HumanDuration(snapshot.ExpiresAt.Sub(snapshot.CreatedAt))
	switch snapshot.Status {
	case listing.Closed:
		return "❌ This group has been closed."
	case listing.Expired:
		return fmt.Sprintf("⏳ Group expired after %s.", lifetime)
	default:
		return fmt.Sprintf("Click a role to join. Group expires in %s.", lifetime)
	}
}

// HumanDuration formats d as "30 minutes", "1 hour", "2 hours".
func HumanDuration(d time.Duration) string {
	var start time.Time
	return strings.TrimSpace(humanize.RelTime(start, start.Add(d), "", ""))
}

func controls(snapshot listing.Snapshot) []Control {
	open := snapshot.Status == listing.Open
	result := make([]Control, 0, 7)
	for _, key := range role.All() {
		result = append(result, Control{
			Kind:    ControlRole,
			Role:    key,
			Label:   key.Icon() + " " + key.Title(),
			Enabled: open && snapshot.Required.Has(key),
		})
	}
	result = append(result,
		Control{Kind: ControlEdit, Label: "✏️ Edit Requirements", Enabled: open},
		Control{Kind: ControlLeave, Label: "🚪 Leave Party", Enabled: open},
		Control{Kind: ControlClose, Label: "❌ Close Group", Enabled: open},
	)
	return result
}

// Control returns the control of kind (and role, for ControlRole).
func (v View) Control(kind ControlKind, key role.Key) (Control, bool) {
	for _, control := range v.Controls {
		if control.Kind == kind && (kind != ControlRole || control.Role == key) {
			return control, true
		}
	}
	return Control{}, false
}

// Field returns key's field.
func (v View) Field(key role.Key) (Field, bool) {
	for _, field := range v.Fields {
		if field.Role == key {
			return field, true
		}
	}
	return Field{}, false
}

func orNone(value string) string {
	if value == "" {
		return NoneText
	}
	return value
}
