// Package metrics implements MIMDB's two pure, file-free aggregate
// functions over a loaded Table: the arithmetic mean of an Int64 column and
// the ASCII byte count of a Varchar column. Metrics never touch files.
package metrics

import (
	"fmt"
	"math/bits"

	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/mimdb/mimdb/table"
)

// Average returns the arithmetic mean of an Int64 column's values as a
// float64. The accumulator is a 128-bit two's-complement integer: a naive
// int64 sum silently overflows on long columns of large magnitudes, and a
// float64 sum loses the cancellation between values like INT64_MIN and
// INT64_MAX. The only rounding happens in the final conversion to float64.
//
// ok is false for an empty column, distinguishing "no rows" from a mean of
// 0.0.
func Average(data table.ColumnData) (avg float64, ok bool) {
	values := data.Ints()
	if len(values) == 0 {
		return 0, false
	}

	var hi int64
	var lo uint64
	for _, v := range values {
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(v), 0)
		hi += v>>63 + int64(carry)
	}

	return int128ToFloat(hi, lo) / float64(len(values)), true
}

// int128ToFloat converts a 128-bit two's-complement integer (hi carries the
// sign) to the nearest float64, negating first so the low word never
// swamps the sign during rounding.
func int128ToFloat(hi int64, lo uint64) float64 {
	neg := hi < 0
	magHi, magLo := uint64(hi), lo
	if neg {
		var borrow uint64
		magLo, borrow = bits.Sub64(0, lo, 0)
		magHi, _ = bits.Sub64(0, uint64(hi), borrow)
	}

	f := float64(magHi)*0x1p64 + float64(magLo)
	if neg {
		f = -f
	}

	return f
}

// AsciiByteCount returns the total count of bytes whose value is in
// [0, 127] across every string in a Varchar column. Strings are treated as
// opaque bytes; no UTF-8 validation is performed.
func AsciiByteCount(data table.ColumnData) int {
	count := 0
	for _, s := range data.Strings() {
		for i := 0; i < len(s); i++ {
			if s[i] <= 127 {
				count++
			}
		}
	}

	return count
}

// TableAverages computes Average for every Int64 column in t, keyed by
// column name. Columns with an undefined average (empty) are omitted.
func TableAverages(t *table.Table) map[string]float64 {
	result := make(map[string]float64)

	for _, name := range t.ColumnNames() {
		data, _ := t.Get(name)
		if data.Type() != format.Int64 {
			continue
		}

		if avg, ok := Average(data); ok {
			result[name] = avg
		}
	}

	return result
}

// TableAsciiByteCounts computes AsciiByteCount for every Varchar column in
// t, keyed by column name.
func TableAsciiByteCounts(t *table.Table) map[string]int {
	result := make(map[string]int)

	for _, name := range t.ColumnNames() {
		data, _ := t.Get(name)
		if data.Type() != format.Varchar {
			continue
		}

		result[name] = AsciiByteCount(data)
	}

	return result
}

// ColumnAverage looks up column by name in t and returns its Average. It
// returns an error if the column does not exist or is not Int64-typed.
func ColumnAverage(t *table.Table, column string) (float64, bool, error) {
	data, ok := t.Get(column)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, column)
	}

	if data.Type() != format.Int64 {
		return 0, false, fmt.Errorf("%w: column %q is not Int64", errs.ErrMalformedMetadata, column)
	}

	avg, ok := Average(data)

	return avg, ok, nil
}

// ColumnAsciiByteCount looks up column by name in t and returns its
// AsciiByteCount. It returns an error if the column does not exist or is
// not Varchar-typed.
func ColumnAsciiByteCount(t *table.Table, column string) (int, error) {
	data, ok := t.Get(column)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, column)
	}

	if data.Type() != format.Varchar {
		return 0, fmt.Errorf("%w: column %q is not Varchar", errs.ErrMalformedMetadata, column)
	}

	return AsciiByteCount(data), nil
}
