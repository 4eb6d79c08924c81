/*
Byte level message field serialization. All multi-byte numbers are big endian, reads consume exactly the field size.
*/
package message_fields

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/pkg/errors"
)

func SerializeInt16(number int16) []byte {
	buffer := make([]byte, 2)
	binary.BigEndian.PutUint16(buffer, uint16(number))
	return buffer
}

func DeserializeInt16(bytes []byte) int16 {
	return int16(binary.BigEndian.Uint16(bytes))
}

func ReadInt16(r io.Reader) (int16, error) {
	b, err := ReadBytes(r, 2)
	if err != nil {
		return 0, err
	}
	return DeserializeInt16(b), nil
}

func SerializeInt32(number int32) []byte {
	buffer := make([]byte, 4)
	binary.BigEndian.PutUint32(buffer, uint32(number))
	return buffer
}

func DeserializeInt32(bytes []byte) int32 {
	return int32(binary.BigEndian.Uint32(bytes))
}

func ReadInt32(r io.Reader) (int32, error) {
	b, err := ReadBytes(r, 4)
	if err != nil {
		return 0, err
	}
	return DeserializeInt32(b), nil
}

func SerializeInt64(number int64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, uint64(number))
	return buffer
}

func DeserializeInt64(bytes []byte) int64 {
	return int64(binary.BigEndian.Uint64(bytes))
}

func ReadInt64(r io.Reader) (int64, error) {
	b, err := ReadBytes(r, 8)
	if err != nil {
		return 0, err
	}
	return DeserializeInt64(b), nil
}

func SerializeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadByte(r)
	return b == 1, err
}

// Strings are truncated to maxLength bytes.
func SerializedStringLength(s string, maxLength int) int {
	length := len(s)
	if length > maxLength {
		length = maxLength
	}
	return SizeStringLength + length
}

func SerializeString(s string, maxLength int) []byte {
	stringBytes := []byte(s)
	if len(stringBytes) > maxLength {
		stringBytes = stringBytes[:maxLength]
	}
	serialized := SerializeInt16(int16(len(stringBytes)))
	return append(serialized, stringBytes...)
}

func ReadString(r io.Reader) (string, error) {
	length, err := ReadInt16(r)
	if err != nil {
		return "", err
	}
	if length <= 0 {
		return "", nil
	}
	bytes, err := ReadBytes(r, int64(length))
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func IP4BytesToString(bytes []byte) string {
	if len(bytes) < 4 {
		return "0.0.0.0"
	}
	return net.IPv4(bytes[0], bytes[1], bytes[2], bytes[3]).String()
}

func IP4StringToBytes(ip string) []byte {
	parsed := net.ParseIP(ip).To4()
	if parsed == nil {
		return []byte{0, 0, 0, 0}
	}
	return []byte(parsed)
}

func AllZeroes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func ReadNodeId(r io.Reader) ([]byte, error) {
	return ReadBytes(r, SizeNodeIdentifier)
}

func ReadHash(r io.Reader) ([]byte, error) {
	return ReadBytes(r, SizeHash)
}

func ReadSignature(r io.Reader) ([]byte, error) {
	return ReadBytes(r, SizeSignature)
}

func ReadByte(r io.Reader) (byte, error) {
	b, err := ReadBytes(r, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads exactly length bytes, short reads are reported as io.ErrUnexpectedEOF.
func ReadBytes(r io.Reader, length int64) ([]byte, error) {
	if length < 0 || length > MaximumReadLength {
		return nil, errors.Errorf("invalid field length %d", length)
	}
	b := make([]byte, length)
	_, err := io.ReadFull(r, b)
	if err == io.EOF && length > 0 {
		err = io.ErrUnexpectedEOF
	}
	return b, err
}
