// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package render derives a listing's displayed view from a snapshot.
//
// [Render] is pure and deterministic: the same [Input] always yields
// the same [View]. The view is rebuilt wholesale after every
// mutation; nothing edits a previously rendered view. Text fields use
// chat markdown (bold, code spans, ~~strike~~, and ||spoiler||),
// which the platform binding converts to its own formatting.
//
// Closed and Expired listings render struck through. The passphrase
// line is special: its value is struck inside the spoiler markers
// (||~~value~~||) so the spoiler still hides exactly the value.
package render
