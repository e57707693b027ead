// Package hash wraps xxhash64 for MIMDB's file-level payload checksum.
package hash

import (
	"hash"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the xxHash64 of data. It is used over the concatenated
// payload region to populate header.Metadata.PayloadChecksum.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// NewChecksum returns a streaming xxhash64 hash.Hash64, used on the read
// path to verify the payload checksum without buffering the whole payload
// region a second time: the batch pipeline tees each column's read through
// this hasher as it streams.
func NewChecksum() hash.Hash64 {
	return xxhash.New()
}
