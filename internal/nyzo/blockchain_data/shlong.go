package blockchain_data

// A shlong packs a 2 byte version and a 6 byte block height into one 64-bit number, so that blocks and balance
// lists keep their leading bytes across version upgrades.

func FromShlong(combined int64) (int16, int64) {
	return int16((combined >> 48) & 0xffff), combined & 0xffffffffffff
}

func ToShlong(version int16, height int64) int64 {
	return (int64(version)&0xffff)<<48 | (height & 0xffffffffffff)
}
