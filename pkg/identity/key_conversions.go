package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	NyzoStringTypePrivateKey   = 1
	NyzoStringPrivateKeyPrefix = "key_"
	NyzoStringTypePublicKey    = 2
	NyzoStringPublicKeyPrefix  = "id__"
	NyzoStringCharacters       = "0123456789abcdefghijkmnopqrstuvwxyzABCDEFGHIJKLMNPQRSTUVWXYZ-.~_"
)

// Unknown characters decode as zero.
var characterValues [256]byte

func init() {
	for i := 0; i < len(NyzoStringCharacters); i++ {
		characterValues[NyzoStringCharacters[i]] = byte(i)
	}
}

func isHexCharacter(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// NyzoHexToBytes decodes the first length*2 hex characters found in data. Anything that isn't a hex character,
// like the separating dashes, is skipped, and surplus input is ignored. Too little input is an error.
func NyzoHexToBytes(data []byte, length int) ([]byte, error) {
	wanted := length * 2
	cleaned := make([]byte, 0, wanted)
	for _, c := range data {
		if len(cleaned) == wanted {
			break
		}
		if isHexCharacter(c) {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) != wanted {
		return nil, errors.Errorf("cannot convert hex to bytes, need %d hex characters, got %d", wanted, len(cleaned))
	}
	decoded := make([]byte, length)
	if _, err := hex.Decode(decoded, cleaned); err != nil {
		return nil, errors.Wrap(err, "cannot convert hex to bytes")
	}
	return decoded, nil
}

// BytesToNyzoHex renders data as hex with a dash after every 16 characters.
func BytesToNyzoHex(data []byte) string {
	plain := hex.EncodeToString(data)
	var result strings.Builder
	for start := 0; start < len(plain); start += 16 {
		if start > 0 {
			result.WriteByte('-')
		}
		end := start + 16
		if end > len(plain) {
			end = len(plain)
		}
		result.WriteString(plain[start:end])
	}
	return result.String()
}

// ToNyzoString encodes content as prefix (3 bytes), content length (1 byte), content and a 4 to 6 byte checksum.
// The checksum is sized so the whole array is a multiple of 3 bytes, which then maps to whole characters.
func ToNyzoString(stringType int, content []byte) string {
	prefix := []byte{0, 0, 0}
	switch stringType {
	case NyzoStringTypePrivateKey:
		prefix = decodeCharacters(NyzoStringPrivateKeyPrefix)
	case NyzoStringTypePublicKey:
		prefix = decodeCharacters(NyzoStringPublicKeyPrefix)
	}
	checksumLength := 4 + (3-(len(content)+2)%3)%3
	raw := make([]byte, 0, 4+len(content)+checksumLength)
	raw = append(raw, prefix...)
	raw = append(raw, byte(len(content)))
	raw = append(raw, content...)
	checksum := checksumOf(raw)
	raw = append(raw, checksum[:checksumLength]...)
	return encodeCharacters(raw)
}

// FromNyzoString decodes a key_ or id__ Nyzo string back to its type and content, verifying the checksum.
func FromNyzoString(encoded string) (int, []byte, error) {
	encoded = strings.TrimSpace(encoded)
	var stringType int
	switch {
	case strings.HasPrefix(encoded, NyzoStringPrivateKeyPrefix):
		stringType = NyzoStringTypePrivateKey
	case strings.HasPrefix(encoded, NyzoStringPublicKeyPrefix):
		stringType = NyzoStringTypePublicKey
	default:
		return 0, nil, errors.Errorf("unsupported Nyzo string: %s", encoded)
	}
	raw := decodeCharacters(encoded)
	if len(raw) < 4 {
		return 0, nil, errors.New("Nyzo string too short")
	}
	contentEnd := 4 + int(raw[3])
	checksumLength := len(raw) - contentEnd
	if checksumLength < 4 || checksumLength > 6 {
		return 0, nil, errors.New("invalid Nyzo string length")
	}
	checksum := checksumOf(raw[:contentEnd])
	if !bytes.Equal(checksum[:checksumLength], raw[contentEnd:]) {
		return 0, nil, errors.New("invalid Nyzo string checksum")
	}
	return stringType, raw[4:contentEnd], nil
}

func checksumOf(raw []byte) [32]byte {
	first := sha256.Sum256(raw)
	return sha256.Sum256(first[:])
}

// Six bits per character, most significant bit first, zero padded at the end.
func encodeCharacters(raw []byte) string {
	totalBits := len(raw) * 8
	var result strings.Builder
	for position := 0; position < totalBits; position += 6 {
		value := 0
		for bit := position; bit < position+6; bit++ {
			value <<= 1
			if bit < totalBits && raw[bit/8]&(0x80>>(bit%8)) != 0 {
				value |= 1
			}
		}
		result.WriteByte(NyzoStringCharacters[value])
	}
	return result.String()
}

func decodeCharacters(encoded string) []byte {
	totalBits := len(encoded) * 6
	raw := make([]byte, (totalBits+7)/8)
	for bit := 0; bit < totalBits; bit++ {
		if characterValues[encoded[bit/6]]&(0x20>>(bit%6)) != 0 {
			raw[bit/8] |= 0x80 >> (bit % 8)
		}
	}
	return raw
}
