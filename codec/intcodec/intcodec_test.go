package intcodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, values []int64) []int64 {
	t.Helper()

	frame := Encode(values)
	got, err := Decode(frame.Compressed, frame.UncompressedSize, frame.RowCount)
	require.NoError(t, err)

	return got
}

func TestEncodeDecode_Empty(t *testing.T) {
	frame := Encode(nil)
	require.Equal(t, 0, frame.UncompressedSize)
	require.Equal(t, 0, frame.CompressedSize)

	got, err := Decode(frame.Compressed, frame.UncompressedSize, frame.RowCount)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEncodeDecode_Sequential(t *testing.T) {
	values := []int64{1, 2, 3, 4, 5}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_BoundaryValues(t *testing.T) {
	values := []int64{math.MinInt64, -1, 0, 1, math.MaxInt64}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_SingleValue(t *testing.T) {
	for _, v := range []int64{0, 1, -1, math.MinInt64, math.MaxInt64} {
		got := roundTrip(t, []int64{v})
		require.Equal(t, []int64{v}, got)
	}
}

func TestEncodeDecode_NegativeAndWraparoundDeltas(t *testing.T) {
	// Delta between MinInt64 and MaxInt64 wraps around int64 range.
	values := []int64{math.MaxInt64, math.MinInt64, math.MaxInt64, 0}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_LargeColumn(t *testing.T) {
	values := make([]int64, 100_000)
	for i := range values {
		values[i] = int64(i) * 7
	}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestDecode_SizeMismatchRejected(t *testing.T) {
	frame := Encode([]int64{1, 2, 3})

	_, err := Decode(frame.Compressed, frame.UncompressedSize+1, frame.RowCount)
	require.Error(t, err)
}

func TestDecode_TruncatedPayloadRejected(t *testing.T) {
	frame := Encode([]int64{100, 200, 300, 400})
	truncated := frame.Compressed[:len(frame.Compressed)-1]

	_, err := Decode(truncated, frame.UncompressedSize, frame.RowCount)
	require.Error(t, err)
}

func TestDecode_CorruptedByteNeverPanics(t *testing.T) {
	frame := Encode([]int64{10, 20, 30, 40, 50})

	for i := range frame.Compressed {
		corrupted := append([]byte(nil), frame.Compressed...)
		corrupted[i] ^= 0xFF

		require.NotPanics(t, func() {
			_, _ = Decode(corrupted, frame.UncompressedSize, frame.RowCount)
		})
	}
}
