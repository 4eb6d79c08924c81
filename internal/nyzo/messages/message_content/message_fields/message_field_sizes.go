/*
Byte sizes of the fields used by the messages the sentinel exchanges.
*/
package message_fields

const (
	SizeNodeIdentifier = 32
	SizeSignature      = 64
	SizeHash           = 32
	SizeIPAddress      = 4
	SizePort           = 4
	SizeTimestamp      = 8
	SizeBlockHeight    = 8
	SizeBool           = 1
	SizeMessageLength  = 4
	SizeMessageType    = 2
	SizeStringLength   = 2
	SizeNodeListLength = 4
	SizeCycleLength    = 2

	// Upper bound for any single length-prefixed read.
	MaximumReadLength = 10 * 1024 * 1024
)
