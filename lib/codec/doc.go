// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides PartyCrusher's deterministic CBOR encoding and
// the fingerprint built on top of it.
//
// JSON is the format for everything that crosses the Matrix
// Client-Server API. CBOR is used internally where byte-identical
// output matters: listing snapshots are encoded with Core
// Deterministic Encoding (RFC 8949 §4.2) and hashed with keyed BLAKE3
// so the bot can tell whether a re-render would change anything.
//
//	fingerprint, err := codec.Fingerprint(snapshot)
//	if fingerprint == lastFingerprint {
//		return // nothing visible changed
//	}
//
// Types that implement encoding.TextMarshaler (ref.UserID, ref.RoomID)
// encode as CBOR text strings.
package codec
