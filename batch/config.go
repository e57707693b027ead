// Package batch drives the codec layer (codec/intcodec, codec/strcodec)
// over a table's columns, splitting each column into row batches on write
// and reassembling decoded batches into columns on read. Batch size bounds
// memory, not correctness: any two configurations decode to the same table.
package batch

import "github.com/mimdb/mimdb/errs"

// DefaultRowsPerBatch is the default batch size applied when a caller
// passes the zero value of Config.
const DefaultRowsPerBatch = 100_000

// Config carries the single pipeline tunable: how many rows each codec
// invocation covers. A plain struct with a defaulted zero value; there is
// not enough configuration surface here to justify a builder or
// functional-options slice.
type Config struct {
	// RowsPerBatch is the number of rows per codec invocation. Zero means
	// "use DefaultRowsPerBatch"; Write (and so Serialize) applies this
	// default for a zero-value Config. Read ignores the Config.
	RowsPerBatch int
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{RowsPerBatch: DefaultRowsPerBatch}
}

// normalize returns c with its default applied, and validates it.
func (c Config) normalize() (Config, error) {
	if c.RowsPerBatch == 0 {
		c.RowsPerBatch = DefaultRowsPerBatch
	}

	if c.RowsPerBatch < 1 {
		return c, errs.ErrInvalidBatchConfig
	}

	return c, nil
}

// batchBounds yields the [start, end) row ranges a column of n rows splits
// into under RowsPerBatch. A zero-length column yields no batches at all;
// a non-empty column never yields an empty batch.
func (c Config) batchBounds(n int) [][2]int {
	if n == 0 {
		return nil
	}

	bounds := make([][2]int, 0, (n+c.RowsPerBatch-1)/c.RowsPerBatch)
	for start := 0; start < n; start += c.RowsPerBatch {
		end := start + c.RowsPerBatch
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}

	return bounds
}
