// Package errs defines the sentinel errors surfaced across MIMDB's storage
// core. Each error identifies one of the failure kinds named by the format
// specification; callers use errors.Is against these values rather than
// matching on string content.
package errs

import "errors"

var (
	// ErrInvalidMagic is returned when a file's first four bytes do not match
	// the MIMDB magic tag.
	ErrInvalidMagic = errors.New("mimdb: not a mimdb file (invalid magic)")

	// ErrUnsupportedVersion is returned when a file's version field is not a
	// version this build of MIMDB knows how to read.
	ErrUnsupportedVersion = errors.New("mimdb: unsupported file version")

	// ErrMalformedMetadata is returned when the metadata block fails to
	// decode, when its column count disagrees with its column entries, or
	// when bytes trail the payload region. Batch/column size and row count
	// sums that do not add up are reported as ErrSizeMismatch instead.
	ErrMalformedMetadata = errors.New("mimdb: malformed metadata")

	// ErrSizeMismatch is returned when a declared size (uncompressed,
	// compressed, or row count) diverges from what was actually observed.
	ErrSizeMismatch = errors.New("mimdb: size mismatch")

	// ErrCodecFailure is returned when a codec (ZSTD, LZ4, or VLE) reports
	// corrupted or truncated input.
	ErrCodecFailure = errors.New("mimdb: codec failure")

	// ErrDuplicateColumn is returned by Table.AddColumn when the given name
	// is already present in the table.
	ErrDuplicateColumn = errors.New("mimdb: duplicate column name")

	// ErrColumnLengthMismatch is returned by Table.AddColumn when the new
	// column's length does not equal the table's current row count.
	ErrColumnLengthMismatch = errors.New("mimdb: column length does not match table row count")

	// ErrEmptyColumnName is returned by Table.AddColumn when the given name
	// is empty.
	ErrEmptyColumnName = errors.New("mimdb: column name must not be empty")

	// ErrIoFailure wraps an underlying sink/source I/O error encountered
	// while streaming a table to or from a byte sink.
	ErrIoFailure = errors.New("mimdb: i/o failure")

	// ErrUnknownColumn is returned when a column lookup misses.
	ErrUnknownColumn = errors.New("mimdb: unknown column")

	// ErrInvalidBatchConfig is returned when a batch.Config carries a
	// negative RowsPerBatch (zero selects the default).
	ErrInvalidBatchConfig = errors.New("mimdb: invalid batch config")
)
