package strcodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, values []string) []string {
	t.Helper()

	frame, err := Encode(values)
	require.NoError(t, err)

	got, err := Decode(frame.Compressed, frame.UncompressedSize, frame.RowCount)
	require.NoError(t, err)

	return got
}

func TestEncodeDecode_Empty(t *testing.T) {
	frame, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, 0, frame.UncompressedSize)

	got, err := Decode(frame.Compressed, frame.UncompressedSize, frame.RowCount)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEncodeDecode_BasicStrings(t *testing.T) {
	values := []string{"Alice", "Bob", "Charlie", "Diana", "Eve"}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_EmptyStrings(t *testing.T) {
	values := []string{"", "x", "", "yz", ""}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_EmbeddedZeroBytes(t *testing.T) {
	values := []string{"a\x00b", "\x00\x00\x00", "tail\x00"}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_NonASCIIBytes(t *testing.T) {
	values := []string{string([]byte{0xff, 0xfe, 0x80, 0x01}), "plain"}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestEncodeDecode_LargeString(t *testing.T) {
	big := strings.Repeat("x", 1<<20) // 1 MiB
	values := []string{"small", big, "tail"}
	got := roundTrip(t, values)
	require.Equal(t, values, got)
}

func TestDecode_TruncatedPayloadRejected(t *testing.T) {
	frame, err := Encode([]string{"hello", "world", "foo", "bar"})
	require.NoError(t, err)
	truncated := frame.Compressed[:len(frame.Compressed)-1]

	_, err = Decode(truncated, frame.UncompressedSize, frame.RowCount)
	require.Error(t, err)
}

func TestDecode_SizeMismatchRejected(t *testing.T) {
	frame, err := Encode([]string{"hello", "world"})
	require.NoError(t, err)

	_, err = Decode(frame.Compressed, frame.UncompressedSize+5, frame.RowCount)
	require.Error(t, err)
}

func TestDecode_CorruptedByteNeverPanics(t *testing.T) {
	frame, err := Encode([]string{"hello", "world", "foo", "bar", "baz"})
	require.NoError(t, err)

	for i := range frame.Compressed {
		corrupted := append([]byte(nil), frame.Compressed...)
		corrupted[i] ^= 0xFF

		require.NotPanics(t, func() {
			_, _ = Decode(corrupted, frame.UncompressedSize, frame.RowCount)
		})
	}
}
