// Package strcodec implements the Varchar column codec: a length-prefix
// framing of the batch's strings followed by an LZ4 block compression pass.
//
// Strings are byte-transparent: the codec never validates UTF-8 and never
// rejects embedded zero bytes. The 4-byte little-endian length prefix caps
// a single string at 4 GiB.
package strcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/mimdb/mimdb/compress"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/internal/pool"
)

// Frame is the result of encoding one batch of Varchar values.
type Frame struct {
	Compressed       []byte
	UncompressedSize int
	CompressedSize   int
	RowCount         int
}

var lz4Codec = compress.NewLZ4Codec()

// Encode encodes one batch of byte strings: 4-byte little-endian length
// prefix per string, then LZ4 block compression over the whole stream.
func Encode(values []string) (Frame, error) {
	if len(values) == 0 {
		return Frame{}, nil
	}

	total := 0
	for _, s := range values {
		total += 4 + len(s)
	}

	buf := pool.GetBatchBuffer()
	defer pool.PutBatchBuffer(buf)
	buf.Grow(total)

	var lenBuf [4]byte
	for _, s := range values {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s))) //nolint:gosec
		buf.MustWrite(lenBuf[:])
		buf.MustWrite([]byte(s))
	}

	uncompressed := buf.Bytes()
	uncompressedSize := len(uncompressed)

	compressed, err := lz4Codec.Compress(uncompressed)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: varchar batch: %v", errs.ErrCodecFailure, err)
	}

	return Frame{
		Compressed:       compressed,
		UncompressedSize: uncompressedSize,
		CompressedSize:   len(compressed),
		RowCount:         len(values),
	}, nil
}

// Decode inverts Encode: LZ4-decompress to the declared uncompressed size,
// then parse (length, payload) pairs until the declared row count is
// reached.
func Decode(compressed []byte, uncompressedSize, rowCount int) ([]string, error) {
	if rowCount == 0 {
		return nil, nil
	}

	data, err := lz4Codec.Decompress(compressed, uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: varchar batch: %v", errs.ErrCodecFailure, err)
	}

	result := make([]string, rowCount)

	offset := 0
	for i := 0; i < rowCount; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("%w: varchar batch: truncated length prefix at string %d of %d", errs.ErrCodecFailure, i, rowCount)
		}

		length := binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4

		end := offset + int(length)
		if end < offset || end > len(data) {
			return nil, fmt.Errorf("%w: varchar batch: string %d length %d extends past buffer", errs.ErrCodecFailure, i, length)
		}

		result[i] = string(data[offset:end])
		offset = end
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%w: varchar batch: %d trailing bytes after %d declared strings", errs.ErrCodecFailure, len(data)-offset, rowCount)
	}

	return result, nil
}
