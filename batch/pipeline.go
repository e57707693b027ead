package batch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mimdb/mimdb/codec/intcodec"
	"github.com/mimdb/mimdb/codec/strcodec"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/mimdb/mimdb/header"
	"github.com/mimdb/mimdb/internal/hash"
	"github.com/mimdb/mimdb/table"
)

// Write serialises t to w: for each column (in t's frozen column order),
// partition its rows into batches of cfg.RowsPerBatch, codec-encode each
// batch, and accumulate the resulting frame into a payload buffer. Once
// every column is encoded the metadata block is built and the full file
// (prefix, metadata, payload) is written to w in one pass.
//
// Frame sizes must be known before the metadata block can be emitted, so
// the payload is staged in a temporary buffer rather than making two
// encoding passes over the table; the file produced is identical either
// way.
func Write(w io.Writer, t *table.Table, cfg Config) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	names := t.ColumnNames()
	columns := make([]header.ColumnMeta, 0, len(names))

	var payload bytes.Buffer

	for _, name := range names {
		data, _ := t.Get(name)

		meta, err := encodeColumn(&payload, name, data, cfg)
		if err != nil {
			return err
		}

		columns = append(columns, meta)
	}

	payloadBytes := payload.Bytes()

	meta := &header.Metadata{
		ColumnCount:     uint32(len(columns)), //nolint:gosec
		RowCount:        uint64(t.RowCount()),  //nolint:gosec
		Columns:         columns,
		PayloadChecksum: hash.Checksum(payloadBytes),
	}
	encodedMeta := meta.Encode()

	prefix := header.EncodePrefix(make([]byte, 0, header.PrefixSize), uint32(len(encodedMeta))) //nolint:gosec

	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}
	if _, err := w.Write(encodedMeta); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}
	if _, err := w.Write(payloadBytes); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}

	return nil
}

// encodeColumn partitions data into batches, feeds each batch to the
// appropriate codec, appends every frame to payload in order, and returns
// the column's metadata entry.
func encodeColumn(payload *bytes.Buffer, name string, data table.ColumnData, cfg Config) (header.ColumnMeta, error) {
	bounds := cfg.batchBounds(data.Len())

	meta := header.ColumnMeta{
		Name:     name,
		Type:     data.Type(),
		RowCount: uint64(data.Len()), //nolint:gosec
		Batches:  make([]header.BatchDescriptor, 0, len(bounds)),
	}

	switch data.Type() {
	case format.Int64:
		values := data.Ints()
		for _, b := range bounds {
			frame := intcodec.Encode(values[b[0]:b[1]])
			payload.Write(frame.Compressed)
			appendBatch(&meta, frame.UncompressedSize, frame.CompressedSize, frame.RowCount)
		}
	case format.Varchar:
		values := data.Strings()
		for _, b := range bounds {
			frame, err := strcodec.Encode(values[b[0]:b[1]])
			if err != nil {
				return header.ColumnMeta{}, fmt.Errorf("column %q: %w", name, err)
			}
			payload.Write(frame.Compressed)
			appendBatch(&meta, frame.UncompressedSize, frame.CompressedSize, frame.RowCount)
		}
	default:
		return header.ColumnMeta{}, fmt.Errorf("%w: column %q has unknown type %v", errs.ErrMalformedMetadata, name, data.Type())
	}

	return meta, nil
}

func appendBatch(meta *header.ColumnMeta, uncompressed, compressed, rows int) {
	meta.UncompressedSize += uint64(uncompressed) //nolint:gosec
	meta.CompressedSize += uint64(compressed)     //nolint:gosec
	meta.Batches = append(meta.Batches, header.BatchDescriptor{
		UncompressedSize: uint64(uncompressed), //nolint:gosec
		CompressedSize:   uint64(compressed),   //nolint:gosec
		RowCount:         uint64(rows),         //nolint:gosec
	})
}

// Read parses a MIMDB file from r and reassembles a Table. cfg is accepted
// for API symmetry with Write but does not affect decoding: the batch
// partitioning actually present on disk is entirely determined by the
// file's own metadata.
func Read(r io.Reader, _ Config) (*table.Table, error) {
	prefixBuf := make([]byte, header.PrefixSize)
	if _, err := io.ReadFull(r, prefixBuf); err != nil {
		return nil, ioErr(err)
	}

	metadataLen, err := header.DecodePrefix(prefixBuf)
	if err != nil {
		return nil, err
	}

	metaBuf := make([]byte, metadataLen)
	if _, err := io.ReadFull(r, metaBuf); err != nil {
		return nil, ioErr(err)
	}

	meta, err := header.Decode(metaBuf)
	if err != nil {
		return nil, err
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	t := table.New()

	hasher := hash.NewChecksum()

	for _, col := range meta.Columns {
		data, err := decodeColumn(io.TeeReader(r, hasher), col)
		if err != nil {
			return nil, err
		}

		if err := t.AddColumn(col.Name, data); err != nil {
			return nil, err
		}
	}

	if hasher.Sum64() != meta.PayloadChecksum {
		return nil, fmt.Errorf("%w: payload checksum mismatch", errs.ErrSizeMismatch)
	}

	if uint64(t.RowCount()) != meta.RowCount { //nolint:gosec
		return nil, fmt.Errorf("%w: table row count %d does not match header %d", errs.ErrSizeMismatch, t.RowCount(), meta.RowCount)
	}

	trailing, err := r.Read(make([]byte, 1))
	if err != nil && err != io.EOF {
		return nil, ioErr(err)
	}
	if trailing != 0 {
		return nil, fmt.Errorf("%w: trailing bytes after payload region", errs.ErrMalformedMetadata)
	}

	return t, nil
}

func decodeColumn(r io.Reader, col header.ColumnMeta) (table.ColumnData, error) {
	switch col.Type {
	case format.Int64:
		values := make([]int64, 0, col.RowCount)
		for _, b := range col.Batches {
			buf := make([]byte, b.CompressedSize)
			if _, err := io.ReadFull(r, buf); err != nil {
				return table.ColumnData{}, ioErr(err)
			}

			decoded, err := intcodec.Decode(buf, int(b.UncompressedSize), int(b.RowCount))
			if err != nil {
				return table.ColumnData{}, fmt.Errorf("column %q: %w", col.Name, err)
			}
			values = append(values, decoded...)
		}

		if uint64(len(values)) != col.RowCount { //nolint:gosec
			return table.ColumnData{}, fmt.Errorf("%w: column %q decoded %d rows, declared %d", errs.ErrSizeMismatch, col.Name, len(values), col.RowCount)
		}

		return table.NewInt64Column(values), nil
	case format.Varchar:
		values := make([]string, 0, col.RowCount)
		for _, b := range col.Batches {
			buf := make([]byte, b.CompressedSize)
			if _, err := io.ReadFull(r, buf); err != nil {
				return table.ColumnData{}, ioErr(err)
			}

			decoded, err := strcodec.Decode(buf, int(b.UncompressedSize), int(b.RowCount))
			if err != nil {
				return table.ColumnData{}, fmt.Errorf("column %q: %w", col.Name, err)
			}
			values = append(values, decoded...)
		}

		if uint64(len(values)) != col.RowCount { //nolint:gosec
			return table.ColumnData{}, fmt.Errorf("%w: column %q decoded %d rows, declared %d", errs.ErrSizeMismatch, col.Name, len(values), col.RowCount)
		}

		return table.NewVarcharColumn(values), nil
	default:
		return table.ColumnData{}, fmt.Errorf("%w: column %q has unknown type tag", errs.ErrMalformedMetadata, col.Name)
	}
}

func ioErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", errs.ErrSizeMismatch, err)
	}

	return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
}
