package data_store

const (
	createTransmissionsTableStatement = `CREATE TABLE IF NOT EXISTS sentinel_transmissions (
		height BIGINT SIGNED NOT NULL,
		hash BINARY(32) NOT NULL,
		verifier BINARY(32) NOT NULL,
		score BIGINT SIGNED NOT NULL,
		recipients INT SIGNED NOT NULL,
		timestamp BIGINT SIGNED NOT NULL,
		INDEX(verifier(4)),
		INDEX(timestamp),
		PRIMARY KEY (height, hash))`
	addTransmissionStatement = `REPLACE INTO sentinel_transmissions(height, hash, verifier, score, recipients, timestamp) VALUES(?, ?, ?, ?, ?, ?)`
)
