package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/pkg/errors"
)

// A block response never carries more than this many blocks.
const MaximumBlocksPerResponse = 10

type BlockResponse struct {
	BalanceList *blockchain_data.BalanceList // optional
	Blocks      []*blockchain_data.Block
}

func NewBlockResponse(balanceList *blockchain_data.BalanceList, blocks []*blockchain_data.Block) *BlockResponse {
	return &BlockResponse{BalanceList: balanceList, Blocks: blocks}
}

func (c *BlockResponse) GetSerializedLength() int {
	return len(c.ToBytes())
}

func (c *BlockResponse) ToBytes() []byte {
	serialized := message_fields.SerializeBool(c.BalanceList != nil)
	if c.BalanceList != nil {
		serialized = append(serialized, c.BalanceList.ToBytes()...)
	}
	serialized = append(serialized, message_fields.SerializeInt16(int16(len(c.Blocks)))...)
	for _, block := range c.Blocks {
		serialized = append(serialized, block.ToBytes()...)
	}
	return serialized
}

func (c *BlockResponse) Read(r io.Reader) error {
	hasBalanceList, err := message_fields.ReadBool(r)
	if err != nil {
		return err
	}
	if hasBalanceList {
		if c.BalanceList, err = blockchain_data.ReadBalanceList(r); err != nil {
			return errors.Wrap(err, "invalid balance list in block response")
		}
	}
	count, err := message_fields.ReadInt16(r)
	if err != nil {
		return err
	}
	if count < 0 || count > MaximumBlocksPerResponse {
		return errors.Errorf("invalid block count in block response: %d", count)
	}
	c.Blocks = make([]*blockchain_data.Block, 0, count)
	for i := int16(0); i < count; i++ {
		block, err := blockchain_data.ReadBlock(r)
		if err != nil {
			return errors.Wrap(err, "invalid block in block response")
		}
		c.Blocks = append(c.Blocks, block)
	}
	return nil
}
