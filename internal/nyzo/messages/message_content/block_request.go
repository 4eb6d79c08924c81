package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
)

// BlockRequest asks for the frozen blocks [StartHeight, EndHeight], optionally with the balance list of the first one.
type BlockRequest struct {
	StartHeight        int64
	EndHeight          int64
	IncludeBalanceList bool
}

func NewBlockRequest(startHeight, endHeight int64, includeBalanceList bool) *BlockRequest {
	return &BlockRequest{StartHeight: startHeight, EndHeight: endHeight, IncludeBalanceList: includeBalanceList}
}

func (c *BlockRequest) GetSerializedLength() int {
	return message_fields.SizeBlockHeight*2 + message_fields.SizeBool
}

func (c *BlockRequest) ToBytes() []byte {
	serialized := message_fields.SerializeInt64(c.StartHeight)
	serialized = append(serialized, message_fields.SerializeInt64(c.EndHeight)...)
	return append(serialized, message_fields.SerializeBool(c.IncludeBalanceList)...)
}

func (c *BlockRequest) Read(r io.Reader) error {
	var err error
	if c.StartHeight, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	if c.EndHeight, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	c.IncludeBalanceList, err = message_fields.ReadBool(r)
	return err
}
