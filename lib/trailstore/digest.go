// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailstore

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a BLAKE3 keyed hash of a .path file's bytes.
type Digest [32]byte

// pathDomainKey keys the hash so path digests never collide with
// digests of the same bytes taken for another purpose. ASCII,
// zero-padded to 32 bytes.
var pathDomainKey = [32]byte{
	'w', 'a', 'y', 'p', 'a', 't', 'h', '.', 'p', 'a', 't', 'h',
}

// newHasher returns a keyed BLAKE3 hasher for path contents.
func newHasher() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(pathDomainKey[:])
	if err != nil {
		// Only a wrong key length fails, and the key is a fixed array.
		panic("trailstore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// SumContents returns the digest of a complete .path file.
func SumContents(data []byte) Digest {
	hasher := newHasher()
	hasher.Write(data)
	return finish(hasher)
}

func finish(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest parses the form produced by [Digest.String].
func ParseDigest(text string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return digest, fmt.Errorf("parsing path digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("path digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
