// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the bot's Matrix access token and login
// password in memory that is locked against swap, excluded from core
// dumps, and zeroed on Close.
//
// [Buffer] allocates outside the Go heap via mmap(MAP_ANONYMOUS) so
// the garbage collector never copies the contents. Use [Buffer.Bytes]
// where a byte slice is accepted and [Buffer.String] only at API
// boundaries that demand a string (the Authorization header).
//
// Depends on golang.org/x/sys/unix.
package secret
