/*
Some helper functions used in various parts of the system.
*/
package utilities

import (
	"bytes"
	"time"
)

// Now returns the current time in milliseconds, the unit of all Nyzo timestamps.
func Now() int64 {
	return time.Now().UnixMilli()
}

// Returns true if the given array of byte arrays contains lookFor
func ByteArrayContains(array [][]byte, lookFor []byte) bool {
	return ByteArrayIndex(array, lookFor) >= 0
}

// ByteArrayIndex returns the position of lookFor in array, or -1.
func ByteArrayIndex(array [][]byte, lookFor []byte) int {
	for i, item := range array {
		if bytes.Equal(item, lookFor) {
			return i
		}
	}
	return -1
}

// Compares two byte arrays for sorting purposes: true if a comes first in ascending (unsigned) order.
func ByteArrayComparator(a, b []byte) bool {
	return bytes.Compare(a, b) < 0
}
