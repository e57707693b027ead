package table

import (
	"testing"

	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumn_FirstColumnEstablishesRowCount(t *testing.T) {
	tbl := New()
	require.Equal(t, 0, tbl.RowCount())

	require.NoError(t, tbl.AddColumn("id", NewInt64Column([]int64{1, 2, 3})))
	assert.Equal(t, 3, tbl.RowCount())
}

func TestAddColumn_DuplicateNameRejected(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("x", NewInt64Column([]int64{1, 2})))

	err := tbl.AddColumn("x", NewInt64Column([]int64{3, 4}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDuplicateColumn)

	// The failed add must leave the table untouched.
	assert.Equal(t, []string{"x"}, tbl.ColumnNames())
	data, ok := tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, data.Ints())
}

func TestAddColumn_LengthMismatchRejected(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("x", NewInt64Column([]int64{1, 2})))

	err := tbl.AddColumn("y", NewInt64Column([]int64{3, 4, 5}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrColumnLengthMismatch)
	assert.Equal(t, []string{"x"}, tbl.ColumnNames())
}

func TestAddColumn_EmptyNameRejected(t *testing.T) {
	tbl := New()

	err := tbl.AddColumn("", NewInt64Column([]int64{1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrEmptyColumnName)
	assert.Empty(t, tbl.ColumnNames())
}

func TestAddColumn_EmptyFirstColumnKeepsRowCountZero(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("empty", NewInt64Column(nil)))
	assert.Equal(t, 0, tbl.RowCount())

	// A second empty column is consistent; a non-empty one is not.
	require.NoError(t, tbl.AddColumn("also-empty", NewVarcharColumn(nil)))
	err := tbl.AddColumn("full", NewInt64Column([]int64{1}))
	assert.ErrorIs(t, err, errs.ErrColumnLengthMismatch)
}

func TestColumnNames_PreservesInsertionOrder(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("zebra", NewInt64Column([]int64{1})))
	require.NoError(t, tbl.AddColumn("apple", NewVarcharColumn([]string{"a"})))
	require.NoError(t, tbl.AddColumn("mango", NewInt64Column([]int64{2})))

	assert.Equal(t, []string{"zebra", "apple", "mango"}, tbl.ColumnNames())
}

func TestGet_UnknownColumn(t *testing.T) {
	tbl := New()
	_, ok := tbl.Get("missing")
	assert.False(t, ok)
}

func TestColumnData_TypeAndLen(t *testing.T) {
	ints := NewInt64Column([]int64{1, 2, 3})
	assert.Equal(t, format.Int64, ints.Type())
	assert.Equal(t, 3, ints.Len())

	strs := NewVarcharColumn([]string{"a", "b"})
	assert.Equal(t, format.Varchar, strs.Type())
	assert.Equal(t, 2, strs.Len())
}

func TestColumnData_AccessorPanicsOnWrongType(t *testing.T) {
	ints := NewInt64Column([]int64{1})
	assert.Panics(t, func() { ints.Strings() })

	strs := NewVarcharColumn([]string{"a"})
	assert.Panics(t, func() { strs.Ints() })
}

func TestColumnData_Equal(t *testing.T) {
	assert.True(t, NewInt64Column([]int64{1, 2}).Equal(NewInt64Column([]int64{1, 2})))
	assert.False(t, NewInt64Column([]int64{1, 2}).Equal(NewInt64Column([]int64{1, 3})))
	assert.False(t, NewInt64Column([]int64{1}).Equal(NewVarcharColumn([]string{"1"})))
	assert.True(t, NewVarcharColumn([]string{"a", ""}).Equal(NewVarcharColumn([]string{"a", ""})))
}

func TestTable_Equal(t *testing.T) {
	build := func() *Table {
		tbl := New()
		require.NoError(t, tbl.AddColumn("id", NewInt64Column([]int64{1, 2})))
		require.NoError(t, tbl.AddColumn("name", NewVarcharColumn([]string{"a", "b"})))

		return tbl
	}

	assert.True(t, build().Equal(build()))

	other := New()
	require.NoError(t, other.AddColumn("name", NewVarcharColumn([]string{"a", "b"})))
	require.NoError(t, other.AddColumn("id", NewInt64Column([]int64{1, 2})))
	assert.False(t, build().Equal(other), "column order is part of table identity")
}
