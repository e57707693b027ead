package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdLevel is the fixed compression level used for Int64 batch frames
// (SpeedDefault, zstd level 3). The codec pipeline is not configurable, so
// no knob is exposed.
const ZstdLevel = zstd.SpeedDefault

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation
// overhead. klauspost/compress/zstd is explicitly designed for decoder
// reuse: "The decoder has been designed to operate without allocations
// after a warmup."
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(ZstdLevel),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// ZstdCodec compresses and decompresses the VLE byte stream produced by the
// Int64 codec (codec/intcodec).
type ZstdCodec struct{}

// NewZstdCodec creates a new Zstd codec using pooled encoders/decoders.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Compress ZSTD-compresses data at the fixed default level and returns a raw
// ZSTD frame (no outer framing of its own — the caller's metadata carries the
// frame length).
func (c ZstdCodec) Compress(data []byte) []byte {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder) //nolint:forcetypeassert
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil)
}

// Decompress decompresses a ZSTD frame and verifies the decompressed length
// equals wantSize, the uncompressed size declared in the batch's frame
// descriptor. A mismatch is a decode error.
func (c ZstdCodec) Decompress(data []byte, wantSize int) ([]byte, error) {
	if wantSize == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder) //nolint:forcetypeassert
	defer zstdDecoderPool.Put(decoder)

	decoded, err := decoder.DecodeAll(data, make([]byte, 0, wantSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	if len(decoded) != wantSize {
		return nil, fmt.Errorf("zstd decoded size %d does not match declared size %d", len(decoded), wantSize)
	}

	return decoded, nil
}
