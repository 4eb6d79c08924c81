package message_fields

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumbersAreBigEndian(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x02}, SerializeInt16(0x0102))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xfe}, SerializeInt32(-2))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x1b, 0x58}, SerializeInt64(7000))

	value, err := ReadInt64(bytes.NewReader(SerializeInt64(-9)))
	require.NoError(t, err)
	require.Equal(t, int64(-9), value)
}

func TestShortReadFails(t *testing.T) {
	_, err := ReadInt32(bytes.NewReader([]byte{1, 2}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadNodeId(bytes.NewReader(make([]byte, 31)))
	require.Error(t, err)

	_, err = ReadByte(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestStringTruncation(t *testing.T) {
	serialized := SerializeString("sentinel block", 8)
	require.Len(t, serialized, SerializedStringLength("sentinel block", 8))
	read, err := ReadString(bytes.NewReader(serialized))
	require.NoError(t, err)
	require.Equal(t, "sentinel", read)
}

func TestIP4(t *testing.T) {
	require.Equal(t, []byte{10, 0, 0, 7}, IP4StringToBytes("10.0.0.7"))
	require.Equal(t, []byte{0, 0, 0, 0}, IP4StringToBytes("not an ip"))
	require.Equal(t, "10.0.0.7", IP4BytesToString([]byte{10, 0, 0, 7}))
}

func TestOversizedLengthRejected(t *testing.T) {
	_, err := ReadBytes(bytes.NewReader(nil), MaximumReadLength+1)
	require.Error(t, err)
}
