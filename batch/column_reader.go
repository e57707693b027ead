package batch

import (
	"fmt"
	"io"
	"iter"

	"github.com/mimdb/mimdb/codec/intcodec"
	"github.com/mimdb/mimdb/codec/strcodec"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/mimdb/mimdb/header"
)

// ColumnReader decodes one column's batches on demand from a random-access
// source, without requiring the whole file to be parsed into a Table. It
// holds at most one decompressed batch at a time, so a caller can scan a
// file larger than RAM one column batch at a time where Read cannot.
type ColumnReader struct {
	src           io.ReaderAt
	meta          *header.Metadata
	payloadOffset int64
}

// OpenColumnReader prepares a ColumnReader over src given a decoded,
// validated Metadata and the byte offset where the payload region begins
// (header.PrefixSize + len(metadata block)).
func OpenColumnReader(src io.ReaderAt, meta *header.Metadata, payloadOffset int64) *ColumnReader {
	return &ColumnReader{src: src, meta: meta, payloadOffset: payloadOffset}
}

// columnOffset returns the byte offset of the named column's payload and
// its ColumnMeta, by summing the compressed sizes of the columns preceding
// it in metadata order.
func (cr *ColumnReader) columnOffset(name string) (int64, header.ColumnMeta, error) {
	offset := cr.payloadOffset

	for _, c := range cr.meta.Columns {
		if c.Name == name {
			return offset, c, nil
		}
		offset += int64(c.CompressedSize) //nolint:gosec
	}

	return 0, header.ColumnMeta{}, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, name)
}

// Int64Batches returns an iterator over the decoded batches of an Int64
// column named name, reading and decompressing one batch frame at a time.
// It returns ErrUnknownColumn if no such column exists, or a type error if
// the column is not Int64.
func (cr *ColumnReader) Int64Batches(name string) (iter.Seq2[[]int64, error], error) {
	offset, col, err := cr.columnOffset(name)
	if err != nil {
		return nil, err
	}

	if col.Type != format.Int64 {
		return nil, fmt.Errorf("%w: column %q is %v, not Int64", errs.ErrMalformedMetadata, name, col.Type)
	}

	return func(yield func([]int64, error) bool) {
		for _, b := range col.Batches {
			buf := make([]byte, b.CompressedSize)
			if _, err := cr.src.ReadAt(buf, offset); err != nil {
				yield(nil, ioErr(err))

				return
			}
			offset += int64(b.CompressedSize) //nolint:gosec

			decoded, err := intcodec.Decode(buf, int(b.UncompressedSize), int(b.RowCount))
			if !yield(decoded, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}, nil
}

// VarcharBatches returns an iterator over the decoded batches of a Varchar
// column named name. See Int64Batches for the iteration contract.
func (cr *ColumnReader) VarcharBatches(name string) (iter.Seq2[[]string, error], error) {
	offset, col, err := cr.columnOffset(name)
	if err != nil {
		return nil, err
	}

	if col.Type != format.Varchar {
		return nil, fmt.Errorf("%w: column %q is %v, not Varchar", errs.ErrMalformedMetadata, name, col.Type)
	}

	return func(yield func([]string, error) bool) {
		for _, b := range col.Batches {
			buf := make([]byte, b.CompressedSize)
			if _, err := cr.src.ReadAt(buf, offset); err != nil {
				yield(nil, ioErr(err))

				return
			}
			offset += int64(b.CompressedSize) //nolint:gosec

			decoded, err := strcodec.Decode(buf, int(b.UncompressedSize), int(b.RowCount))
			if !yield(decoded, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}, nil
}

// ReadMetadata parses the prefix and metadata block from the start of src,
// returning the decoded Metadata and the payload offset to pass to
// OpenColumnReader.
func ReadMetadata(src io.ReaderAt) (*header.Metadata, int64, error) {
	prefixBuf := make([]byte, header.PrefixSize)
	if _, err := src.ReadAt(prefixBuf, 0); err != nil {
		return nil, 0, ioErr(err)
	}

	metadataLen, err := header.DecodePrefix(prefixBuf)
	if err != nil {
		return nil, 0, err
	}

	metaBuf := make([]byte, metadataLen)
	if _, err := src.ReadAt(metaBuf, int64(header.PrefixSize)); err != nil {
		return nil, 0, ioErr(err)
	}

	meta, err := header.Decode(metaBuf)
	if err != nil {
		return nil, 0, err
	}

	if err := meta.Validate(); err != nil {
		return nil, 0, err
	}

	return meta, int64(header.PrefixSize) + int64(metadataLen), nil
}
