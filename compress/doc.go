// Package compress provides the two fixed-frame compressors used by
// MIMDB's codec pipeline: Zstandard for the VLE-encoded integer stream and
// LZ4 for the length-prefixed string stream.
//
// Unlike a general-purpose compression library, MIMDB does not let callers
// choose an algorithm per column: the file format fixes ZSTD for Int64
// batches and LZ4 for Varchar batches. This package therefore exposes two
// concrete codecs rather than a pluggable registry.
package compress
