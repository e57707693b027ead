// Package table implements the in-memory columnar model MIMDB reads and
// writes: ColumnData as a tagged variant over Int64/Varchar, and Table as a
// name-keyed collection of columns sharing one row count.
package table

import (
	"fmt"

	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
)

// ColumnData is a tagged variant carrying either an ordered sequence of
// signed 64-bit integers or an ordered sequence of byte strings. Go has no
// sum types, so the variant is a struct with a type tag and exactly one of
// the two slices populated.
type ColumnData struct {
	typ     format.ColumnType
	ints    []int64
	strings []string
}

// NewInt64Column wraps a slice of signed 64-bit integers as column data.
// The slice is not copied; callers must not mutate it afterward.
func NewInt64Column(values []int64) ColumnData {
	return ColumnData{typ: format.Int64, ints: values}
}

// NewVarcharColumn wraps a slice of byte strings as column data. Strings are
// byte-transparent: MIMDB never validates UTF-8 and never rejects embedded
// zero bytes.
func NewVarcharColumn(values []string) ColumnData {
	return ColumnData{typ: format.Varchar, strings: values}
}

// Type reports the column's physical type.
func (c ColumnData) Type() format.ColumnType {
	return c.typ
}

// Len reports the number of rows in the column.
func (c ColumnData) Len() int {
	switch c.typ {
	case format.Varchar:
		return len(c.strings)
	default:
		return len(c.ints)
	}
}

// Ints returns the underlying int64 slice. It panics if the column is not
// Int64-typed; callers should check Type() first, or use Table.Get in
// combination with a type switch on Type().
func (c ColumnData) Ints() []int64 {
	if c.typ != format.Int64 {
		panic("table: Ints called on non-Int64 column")
	}

	return c.ints
}

// Strings returns the underlying string slice. It panics if the column is
// not Varchar-typed.
func (c ColumnData) Strings() []string {
	if c.typ != format.Varchar {
		panic("table: Strings called on non-Varchar column")
	}

	return c.strings
}

// Equal reports whether c and other hold the same type tag and the same
// ordered values.
func (c ColumnData) Equal(other ColumnData) bool {
	if c.typ != other.typ {
		return false
	}

	switch c.typ {
	case format.Varchar:
		if len(c.strings) != len(other.strings) {
			return false
		}

		for i, s := range c.strings {
			if s != other.strings[i] {
				return false
			}
		}

		return true
	default:
		if len(c.ints) != len(other.ints) {
			return false
		}

		for i, v := range c.ints {
			if v != other.ints[i] {
				return false
			}
		}

		return true
	}
}

// column is a name/data pair kept in insertion order; Table freezes this
// order at serialization time and readers reproduce it exactly.
type column struct {
	name string
	data ColumnData
}

// Table is a mapping from column name to ColumnData, plus the row count all
// columns must agree on. A zero-value Table is empty and ready to use.
type Table struct {
	columns  []column
	byName   map[string]int
	rowCount int
	hasCols  bool
}

// New constructs an empty Table.
func New() *Table {
	return &Table{byName: make(map[string]int)}
}

// AddColumn appends a named column to the table, in insertion order.
//
// It fails with ErrEmptyColumnName if name is empty, ErrDuplicateColumn if
// name is already present, and ErrColumnLengthMismatch if the table already
// has columns and data's length does not equal the table's current row
// count. On any failure the table is left unmodified.
func (t *Table) AddColumn(name string, data ColumnData) error {
	if name == "" {
		return errs.ErrEmptyColumnName
	}

	if t.byName == nil {
		t.byName = make(map[string]int)
	}

	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateColumn, name)
	}

	if t.hasCols && data.Len() != t.rowCount {
		return fmt.Errorf("%w: column %q has %d rows, table has %d", errs.ErrColumnLengthMismatch, name, data.Len(), t.rowCount)
	}

	if !t.hasCols {
		t.rowCount = data.Len()
		t.hasCols = true
	}

	t.byName[name] = len(t.columns)
	t.columns = append(t.columns, column{name: name, data: data})

	return nil
}

// RowCount returns the table's row count, which is zero iff the table has
// no columns or all its columns are empty.
func (t *Table) RowCount() int {
	return t.rowCount
}

// ColumnNames returns column names in the frozen on-disk order (insertion
// order).
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}

	return names
}

// Get looks up a column by name. ok is false if no such column exists.
func (t *Table) Get(name string) (data ColumnData, ok bool) {
	idx, exists := t.byName[name]
	if !exists {
		return ColumnData{}, false
	}

	return t.columns[idx].data, true
}

// Equal reports whether t and other have the same columns, in the same
// order, with the same names and values, and the same row count.
func (t *Table) Equal(other *Table) bool {
	if t.rowCount != other.rowCount || len(t.columns) != len(other.columns) {
		return false
	}

	for i, c := range t.columns {
		oc := other.columns[i]
		if c.name != oc.name || !c.data.Equal(oc.data) {
			return false
		}
	}

	return true
}
