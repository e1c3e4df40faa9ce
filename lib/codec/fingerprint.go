// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte keyed BLAKE3 hash of a value's deterministic
// CBOR encoding.
type Digest [32]byte

// snapshotDomainKey is the ASCII domain name zero-padded to 32 bytes.
// Changing it changes every fingerprint.
var snapshotDomainKey = [32]byte{
	'p', 'a', 'r', 't', 'y', 'c', 'r', 'u', 's', 'h', 'e', 'r', '.',
	's', 'n', 'a', 'p', 's', 'h', 'o', 't',
}

// Fingerprint returns the digest of v. Two values with equal encodings
// have equal fingerprints regardless of map iteration order.
func Fingerprint(v any) (Digest, error) {
	data, err := Marshal(v)
	if err != nil {
		return Digest{}, fmt.Errorf("codec: encoding value for fingerprint: %w", err)
	}

	hasher, err := blake3.NewKeyed(snapshotDomainKey[:])
	if err != nil {
		return Digest{}, fmt.Errorf("codec: creating keyed hasher: %w", err)
	}
	hasher.Write(data)

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// String returns the hex encoding of d.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex characters, for log lines.
func (d Digest) Short() string { return d.String()[:12] }
