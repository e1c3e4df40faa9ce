// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the parts of the Matrix client-server API that
// PartyCrusher needs to run a listing bot in a set of rooms.
//
// [Client] is unauthenticated: it holds the homeserver URL and the HTTP
// transport, and produces a [DirectSession] through [Client.Login] or
// [Client.SessionFromToken]. The session keeps its access token in a
// secret.Buffer; callers must Close it.
//
// A session sends messages (with an optional HTML formatted_body),
// edits them in place through m.replace relations, redacts them,
// annotates them with reactions, reads and writes room state, and
// long-polls /sync. Every API error comes back as a [*MatrixError];
// [IsMatrixError] tests for a specific errcode.
//
// Request URLs are built by string concatenation with url.PathEscape on
// each segment, so room IDs and event IDs containing reserved
// characters are never double-encoded.
package messaging
