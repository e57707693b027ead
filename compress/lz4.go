package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse; the
// lz4.Compressor maintains internal state that benefits from reuse across
// many small batch frames.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses and decompresses the length-prefix stream produced by
// the Varchar codec (codec/strcodec).
type LZ4Codec struct{}

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress LZ4 block-compresses data.
//
// LZ4's block format has no "stored" mode, and CompressBlock returns n == 0
// when the input would not shrink. In that case Compress returns data
// unchanged; Decompress falls back to treating an LZ4 decode failure on a
// frame whose length equals the declared uncompressed size as this
// passthrough case.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	if n == 0 {
		return data, nil
	}

	return dst[:n], nil
}

// Decompress LZ4 block-decompresses data into a buffer of exactly wantSize
// bytes, the uncompressed size declared in the batch's frame descriptor.
// A mismatch between the frame's claims and wantSize is a decode error.
func (c LZ4Codec) Decompress(data []byte, wantSize int) ([]byte, error) {
	if wantSize == 0 {
		return nil, nil
	}

	dst := make([]byte, wantSize)

	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		if len(data) == wantSize {
			copy(dst, data)

			return dst, nil
		}

		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}

	if n != wantSize {
		return nil, fmt.Errorf("lz4 decoded size %d does not match declared size %d", n, wantSize)
	}

	return dst, nil
}
