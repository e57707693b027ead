// Package mimdb provides a columnar analytical storage engine that persists
// tabular data in a self-describing binary file format.
//
// Tables hold two column types: signed 64-bit integers and variable-length
// byte strings. Integer columns are compressed with delta + zig-zag +
// variable-length encoding followed by a ZSTD frame; string columns are
// length-prefix framed and LZ4 block-compressed. Columns are split into row
// batches. Reading never holds a full column in compressed and decompressed
// form at once, and batch.ColumnReader scans a column one batch at a time;
// writing stages the whole compressed payload in memory before emitting it.
//
// # Basic Usage
//
// Building and serialising a table:
//
//	t := mimdb.NewTable()
//	_ = t.AddColumn("id", mimdb.NewInt64Column([]int64{1, 2, 3}))
//	_ = t.AddColumn("name", mimdb.NewVarcharColumn([]string{"a", "b", "c"}))
//
//	var buf bytes.Buffer
//	err := mimdb.Serialize(&buf, t, mimdb.Config{})
//
// Reading it back:
//
//	decoded, err := mimdb.Deserialize(&buf, mimdb.Config{})
//
// The zero-value Config applies the default batch size. Batch size bounds
// memory, not meaning: files written with different batch sizes decode to
// equal tables.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the table and
// batch packages, simplifying the most common use cases. For fine-grained
// control (for example, streaming a single column with batch.ColumnReader)
// use those packages directly.
//
//   - table: in-memory columnar model (Table, ColumnData)
//   - batch: batched serialise/deserialise pipeline and ColumnReader
//   - codec/intcodec, codec/strcodec: per-batch column codecs
//   - header: file header and metadata block
//   - metrics: aggregate functions over a loaded Table
//   - errs: sentinel errors for errors.Is matching
package mimdb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mimdb/mimdb/batch"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/table"
)

// Table is the in-memory columnar model: named columns sharing one row
// count, in a frozen insertion order.
type Table = table.Table

// ColumnData is a tagged variant holding either Int64 or Varchar values.
type ColumnData = table.ColumnData

// Config carries the batch pipeline's single tunable, RowsPerBatch. The
// zero value means "use the default".
type Config = batch.Config

// NewTable constructs an empty Table.
func NewTable() *Table {
	return table.New()
}

// NewInt64Column wraps a slice of signed 64-bit integers as column data.
func NewInt64Column(values []int64) ColumnData {
	return table.NewInt64Column(values)
}

// NewVarcharColumn wraps a slice of byte strings as column data.
func NewVarcharColumn(values []string) ColumnData {
	return table.NewVarcharColumn(values)
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return batch.DefaultConfig()
}

// Serialize writes t to w in the MIMDB file format. A zero-value cfg uses
// the default batch size. On failure no promise is made about how much of w
// was written; callers that need atomicity should use WriteFile, which
// writes to a temporary path and renames.
func Serialize(w io.Writer, t *Table, cfg Config) error {
	return batch.Write(w, t, cfg)
}

// Deserialize reads a MIMDB file from r and reassembles the Table it
// contains. A failed Deserialize yields no Table.
func Deserialize(r io.Reader, cfg Config) (*Table, error) {
	return batch.Read(r, cfg)
}

// WriteFile serialises t to path atomically: the file is written to a
// temporary sibling and renamed into place only after a successful flush,
// so a crash or encoding failure never leaves a truncated file at path.
func WriteFile(path string, t *Table, cfg Config) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}
	tmpName := tmp.Name()

	if err := Serialize(tmp, t, cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}

	return nil
}

// ReadFile deserialises the Table stored at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}
	defer f.Close()

	return Deserialize(f, Config{})
}
