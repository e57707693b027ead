package mimdb_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mimdb/mimdb"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peopleTable(t *testing.T) *mimdb.Table {
	t.Helper()

	tbl := mimdb.NewTable()
	require.NoError(t, tbl.AddColumn("id", mimdb.NewInt64Column([]int64{1, 2, 3, 4, 5})))
	require.NoError(t, tbl.AddColumn("name", mimdb.NewVarcharColumn([]string{"Alice", "Bob", "Charlie", "Diana", "Eve"})))

	return tbl
}

func TestSerializeDeserialize_WithMetrics(t *testing.T) {
	tbl := peopleTable(t)

	var buf bytes.Buffer
	require.NoError(t, mimdb.Serialize(&buf, tbl, mimdb.Config{RowsPerBatch: 2}))

	decoded, err := mimdb.Deserialize(&buf, mimdb.Config{})
	require.NoError(t, err)
	require.True(t, tbl.Equal(decoded))

	id, _ := decoded.Get("id")
	avg, ok := metrics.Average(id)
	require.True(t, ok)
	assert.Equal(t, 3.0, avg)

	name, _ := decoded.Get("name")
	assert.Equal(t, 23, metrics.AsciiByteCount(name))
}

func TestSerialize_ZeroConfigUsesDefault(t *testing.T) {
	tbl := peopleTable(t)

	var defaulted, explicit bytes.Buffer
	require.NoError(t, mimdb.Serialize(&defaulted, tbl, mimdb.Config{}))
	require.NoError(t, mimdb.Serialize(&explicit, tbl, mimdb.DefaultConfig()))

	assert.Equal(t, explicit.Bytes(), defaulted.Bytes())
}

func TestWriteFileReadFile(t *testing.T) {
	tbl := peopleTable(t)
	path := filepath.Join(t.TempDir(), "people.mimdb")

	require.NoError(t, mimdb.WriteFile(path, tbl, mimdb.Config{}))

	decoded, err := mimdb.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(decoded))
}

func TestWriteFile_LeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.mimdb")

	require.NoError(t, mimdb.WriteFile(path, peopleTable(t), mimdb.Config{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t.mimdb", entries[0].Name())
}

func TestWriteFile_InvalidConfigWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.mimdb")

	err := mimdb.WriteFile(path, peopleTable(t), mimdb.Config{RowsPerBatch: -5})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidBatchConfig)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed write must not leave files at or near the target path")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := mimdb.ReadFile(filepath.Join(t.TempDir(), "missing.mimdb"))
	assert.ErrorIs(t, err, errs.ErrIoFailure)
}

func TestDeserialize_GarbageInput(t *testing.T) {
	_, err := mimdb.Deserialize(bytes.NewReader([]byte("this is not a mimdb file")), mimdb.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidMagic)
}
