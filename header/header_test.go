package header

import (
	"testing"

	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMetadata() *Metadata {
	return &Metadata{
		ColumnCount:     2,
		RowCount:        5,
		PayloadChecksum: 0xDEADBEEF,
		Columns: []ColumnMeta{
			{
				Name: "id", Type: format.Int64,
				UncompressedSize: 40, CompressedSize: 20, RowCount: 5,
				Batches: []BatchDescriptor{{UncompressedSize: 40, CompressedSize: 20, RowCount: 5}},
			},
			{
				Name: "name", Type: format.Varchar,
				UncompressedSize: 60, CompressedSize: 30, RowCount: 5,
				Batches: []BatchDescriptor{
					{UncompressedSize: 30, CompressedSize: 15, RowCount: 3},
					{UncompressedSize: 30, CompressedSize: 15, RowCount: 2},
				},
			},
		},
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	m := sampleMetadata()
	encoded := m.Encode()

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
	require.NoError(t, decoded.Validate())
}

func TestMetadataValidateRowCountMismatch(t *testing.T) {
	m := sampleMetadata()
	m.Columns[0].RowCount = 4

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestMetadataValidateBatchSizeMismatch(t *testing.T) {
	m := sampleMetadata()
	m.Columns[0].Batches[0].CompressedSize = 999

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestMetadataDecodeTruncated(t *testing.T) {
	m := sampleMetadata()
	encoded := m.Encode()

	_, err := Decode(encoded[:len(encoded)-5])
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedMetadata)
}

func TestMetadataDecodeTrailingGarbage(t *testing.T) {
	m := sampleMetadata()
	encoded := append(m.Encode(), 0xFF)

	_, err := Decode(encoded)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedMetadata)
}

func TestMetadataDecodeUnknownColumnType(t *testing.T) {
	m := sampleMetadata()
	m.Columns[0].Type = format.ColumnType(99)
	encoded := m.Encode()

	_, err := Decode(encoded)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedMetadata)
}

func TestPrefixRoundTrip(t *testing.T) {
	var buf []byte
	buf = EncodePrefix(buf, 123)

	length, err := DecodePrefix(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), length)
}

func TestPrefixInvalidMagic(t *testing.T) {
	buf := []byte{'X', 'X', 'X', 'X', 1, 0, 0, 0, 0, 0}

	_, err := DecodePrefix(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestPrefixUnsupportedVersion(t *testing.T) {
	var buf []byte
	buf = EncodePrefix(buf, 0)
	buf[4] = 2
	buf[5] = 0

	_, err := DecodePrefix(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestPrefixShort(t *testing.T) {
	_, err := DecodePrefix([]byte{'M', 'I', 'M'})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedMetadata)
}

func TestEmptyMetadataRoundTrip(t *testing.T) {
	m := &Metadata{ColumnCount: 0, RowCount: 0, Columns: []ColumnMeta{}}
	decoded, err := Decode(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
	require.NoError(t, decoded.Validate())
}
