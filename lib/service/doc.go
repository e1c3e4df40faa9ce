// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the process scaffolding around the bot:
//
//   - Logging: [NewLogger] picks a text or JSON slog handler depending
//     on whether stderr is a terminal.
//   - Session files: [LoadSession] and [SaveSession] persist the token
//     produced by the login subcommand.
//   - Sync loop: [InitialSync] and [RunSyncLoop] drive /sync with
//     exponential backoff; [AcceptInvites] joins allowed rooms.
//   - HTTP: [HTTPServer] serves the metrics endpoint with graceful
//     shutdown.
//
// The binary composes these in its own run function. The package
// provides building blocks, not a runtime.
package service
