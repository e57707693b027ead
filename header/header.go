// Package header implements MIMDB's file header and metadata block: the
// magic sentinel, version field, and the length-prefixed, self-describing
// metadata structure that precedes the payload region.
//
// The layout is version 1 of the on-disk format:
//
//	offset  size     content
//	0       4        magic 'M','I','M','D'
//	4       2        version = 1 (LE u16)
//	6       4        metadata_length L (LE u32)
//	10      L        metadata block
//	10+L    ...      payload region (concatenated column payloads)
//
// The metadata block is variable-length (it carries a per-column, per-batch
// descriptor list), so Encode/Decode operate over the whole block rather
// than a fixed-size struct.
package header

import (
	"fmt"

	"github.com/mimdb/mimdb/endian"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
)

// Magic is the fixed 4-byte ASCII tag at the start of every MIMDB file.
var Magic = [4]byte{'M', 'I', 'M', 'D'}

// Version1 is the only file format version this build understands.
const Version1 uint16 = 1

// engine is the fixed byte order for all on-disk fixed-width fields. The
// format is little-endian; the endian.EndianEngine abstraction keeps the
// field encode/decode uniform rather than hand-rolling binary.LittleEndian
// calls.
var engine = endian.GetLittleEndianEngine()

// BatchDescriptor records one batch's frame sizes within a column, in the
// order the batches were written.
type BatchDescriptor struct {
	UncompressedSize uint64
	CompressedSize   uint64
	RowCount         uint64
}

// ColumnMeta describes one column's on-disk representation: its name, type,
// aggregate sizes, and the ordered list of per-batch frame descriptors that
// make up its payload.
type ColumnMeta struct {
	Name             string
	Type             format.ColumnType
	UncompressedSize uint64
	CompressedSize   uint64
	RowCount         uint64
	Batches          []BatchDescriptor
}

// Metadata is the decoded form of the length-prefixed metadata block that
// follows the magic+version prefix.
type Metadata struct {
	ColumnCount uint32
	RowCount    uint64
	Columns     []ColumnMeta

	// PayloadChecksum is the xxhash64 of the entire payload region,
	// computed by the batch pipeline and stored in the metadata block right
	// after the row count. It catches corruption the per-column size
	// cross-checks cannot, such as a bit flip inside a frame that leaves
	// every length intact.
	PayloadChecksum uint64
}

// PrefixSize is the size in bytes of the fixed magic+version+length prefix
// that precedes the metadata block.
const PrefixSize = 4 + 2 + 4

// EncodePrefix appends the magic, version, and metadata length L to dst.
func EncodePrefix(dst []byte, metadataLen uint32) []byte {
	dst = append(dst, Magic[:]...)
	dst = engine.AppendUint16(dst, Version1)
	dst = engine.AppendUint32(dst, metadataLen)

	return dst
}

// DecodePrefix parses the fixed magic+version+length prefix from the first
// PrefixSize bytes of data. It returns the declared metadata block length.
func DecodePrefix(data []byte) (metadataLen uint32, err error) {
	if len(data) < PrefixSize {
		return 0, fmt.Errorf("%w: short file header", errs.ErrMalformedMetadata)
	}

	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return 0, errs.ErrInvalidMagic
	}

	version := engine.Uint16(data[4:6])
	if version != Version1 {
		return 0, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, version)
	}

	return engine.Uint32(data[6:10]), nil
}

// Encode serialises the metadata block: column count, row count, payload
// checksum, then each column's descriptor with its batch list.
func (m *Metadata) Encode() []byte {
	size := 4 + 8 + 8
	for _, c := range m.Columns {
		size += 4 + len(c.Name) + 1 + 8 + 8 + 8 + 4 + len(c.Batches)*24
	}

	buf := make([]byte, 0, size)
	buf = engine.AppendUint32(buf, m.ColumnCount)
	buf = engine.AppendUint64(buf, m.RowCount)
	buf = engine.AppendUint64(buf, m.PayloadChecksum)

	for _, c := range m.Columns {
		buf = engine.AppendUint32(buf, uint32(len(c.Name))) //nolint:gosec
		buf = append(buf, c.Name...)
		buf = append(buf, byte(c.Type))
		buf = engine.AppendUint64(buf, c.UncompressedSize)
		buf = engine.AppendUint64(buf, c.CompressedSize)
		buf = engine.AppendUint64(buf, c.RowCount)
		buf = engine.AppendUint32(buf, uint32(len(c.Batches))) //nolint:gosec

		for _, b := range c.Batches {
			buf = engine.AppendUint64(buf, b.UncompressedSize)
			buf = engine.AppendUint64(buf, b.CompressedSize)
			buf = engine.AppendUint64(buf, b.RowCount)
		}
	}

	return buf
}

// Decode parses a metadata block previously produced by Encode. It performs
// no cross-column validation; callers apply Validate after decoding.
func Decode(data []byte) (*Metadata, error) {
	r := &reader{data: data}

	columnCount, err := r.uint32()
	if err != nil {
		return nil, err
	}

	rowCount, err := r.uint64()
	if err != nil {
		return nil, err
	}

	checksum, err := r.uint64()
	if err != nil {
		return nil, err
	}

	m := &Metadata{ColumnCount: columnCount, RowCount: rowCount, PayloadChecksum: checksum}
	m.Columns = make([]ColumnMeta, 0, columnCount)

	for i := uint32(0); i < columnCount; i++ {
		var c ColumnMeta

		nameLen, err := r.uint32()
		if err != nil {
			return nil, err
		}

		name, err := r.bytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		c.Name = string(name)

		typeTag, err := r.byte()
		if err != nil {
			return nil, err
		}
		c.Type = format.ColumnType(typeTag)
		if !c.Type.Valid() {
			return nil, fmt.Errorf("%w: column %q has unknown type tag %d", errs.ErrMalformedMetadata, c.Name, typeTag)
		}

		if c.UncompressedSize, err = r.uint64(); err != nil {
			return nil, err
		}
		if c.CompressedSize, err = r.uint64(); err != nil {
			return nil, err
		}
		if c.RowCount, err = r.uint64(); err != nil {
			return nil, err
		}

		batchCount, err := r.uint32()
		if err != nil {
			return nil, err
		}

		c.Batches = make([]BatchDescriptor, batchCount)
		for j := uint32(0); j < batchCount; j++ {
			var b BatchDescriptor
			if b.UncompressedSize, err = r.uint64(); err != nil {
				return nil, err
			}
			if b.CompressedSize, err = r.uint64(); err != nil {
				return nil, err
			}
			if b.RowCount, err = r.uint64(); err != nil {
				return nil, err
			}
			c.Batches[j] = b
		}

		m.Columns = append(m.Columns, c)
	}

	if !r.exhausted() {
		return nil, fmt.Errorf("%w: %d trailing bytes after metadata block", errs.ErrMalformedMetadata, len(r.data)-r.offset)
	}

	return m, nil
}

// Validate performs the metadata cross-checks required on read: every
// column's declared row count must equal the header row count, and the sums
// of a column's batch compressed sizes and batch row counts must equal its
// declared totals. Batch uncompressed sizes are not summed here.
func (m *Metadata) Validate() error {
	if int(m.ColumnCount) != len(m.Columns) {
		return fmt.Errorf("%w: column count %d does not match %d column entries", errs.ErrMalformedMetadata, m.ColumnCount, len(m.Columns))
	}

	for _, c := range m.Columns {
		if c.RowCount != m.RowCount {
			return fmt.Errorf("%w: column %q has row count %d, header declares %d", errs.ErrSizeMismatch, c.Name, c.RowCount, m.RowCount)
		}

		var sumComp, sumRows uint64
		for _, b := range c.Batches {
			sumComp += b.CompressedSize
			sumRows += b.RowCount
		}

		if sumComp != c.CompressedSize {
			return fmt.Errorf("%w: column %q batch compressed sizes sum to %d, declared %d", errs.ErrSizeMismatch, c.Name, sumComp, c.CompressedSize)
		}

		if sumRows != c.RowCount {
			return fmt.Errorf("%w: column %q batch row counts sum to %d, declared %d", errs.ErrSizeMismatch, c.Name, sumRows, c.RowCount)
		}
	}

	return nil
}

// reader is a small cursor over a metadata byte slice; every method returns
// ErrMalformedMetadata on truncation instead of panicking.
type reader struct {
	data   []byte
	offset int
}

func (r *reader) exhausted() bool {
	return r.offset == len(r.data)
}

func (r *reader) byte() (byte, error) {
	if r.offset+1 > len(r.data) {
		return 0, fmt.Errorf("%w: truncated metadata at offset %d", errs.ErrMalformedMetadata, r.offset)
	}
	b := r.data[r.offset]
	r.offset++

	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return nil, fmt.Errorf("%w: truncated metadata at offset %d, wanted %d bytes", errs.ErrMalformedMetadata, r.offset, n)
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n

	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}

	return engine.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}

	return engine.Uint64(b), nil
}
