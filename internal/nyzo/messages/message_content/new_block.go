package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
)

type NewBlock struct {
	Block *blockchain_data.Block
}

func NewNewBlock(block *blockchain_data.Block) *NewBlock {
	return &NewBlock{Block: block}
}

func (c *NewBlock) GetSerializedLength() int {
	return c.Block.GetSerializedLength() + message_fields.SizePort
}

// The trailing port is a legacy field, always -1.
func (c *NewBlock) ToBytes() []byte {
	return append(c.Block.ToBytes(), message_fields.SerializeInt32(-1)...)
}

func (c *NewBlock) Read(r io.Reader) error {
	var err error
	if c.Block, err = blockchain_data.ReadBlock(r); err != nil {
		return err
	}
	_, err = message_fields.ReadInt32(r)
	return err
}
