// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated, immutable identifiers for the Matrix
// objects PartyCrusher handles: users (the actors and creators of
// listings), rooms (the guild-equivalent a listing is posted in), and
// events (published listing messages, prompts, and commands).
//
// Identifiers are parsed once at the platform boundary (sync responses,
// command arguments, configuration) and carried as value types from
// then on, so lifecycle code never re-validates raw strings. All types
// implement encoding.TextMarshaler and encoding.TextUnmarshaler and
// serialize as the canonical Matrix string.
package ref
