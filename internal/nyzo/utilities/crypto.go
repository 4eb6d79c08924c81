package utilities

import "crypto/sha256"

// Blocks, balance lists and transactions are all identified by a double hash.
func DoubleSha256(input []byte) [32]byte {
	first := sha256.Sum256(input)
	return sha256.Sum256(first[:])
}
