package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/pkg/errors"
)

// BootstrapResponse: frozen edge height and hash, plus the ids of all in-cycle verifiers.
type BootstrapResponse struct {
	FrozenEdgeHeight int64
	FrozenEdgeHash   []byte
	CycleVerifiers   [][]byte
}

func NewBootstrapResponse(frozenEdgeHeight int64, frozenEdgeHash []byte, cycleVerifiers [][]byte) *BootstrapResponse {
	return &BootstrapResponse{FrozenEdgeHeight: frozenEdgeHeight, FrozenEdgeHash: frozenEdgeHash, CycleVerifiers: cycleVerifiers}
}

func (c *BootstrapResponse) GetSerializedLength() int {
	return message_fields.SizeBlockHeight + message_fields.SizeHash + message_fields.SizeCycleLength + message_fields.SizeNodeIdentifier*len(c.CycleVerifiers)
}

func (c *BootstrapResponse) ToBytes() []byte {
	serialized := message_fields.SerializeInt64(c.FrozenEdgeHeight)
	serialized = append(serialized, c.FrozenEdgeHash...)
	serialized = append(serialized, message_fields.SerializeInt16(int16(len(c.CycleVerifiers)))...)
	for _, id := range c.CycleVerifiers {
		serialized = append(serialized, id...)
	}
	return serialized
}

func (c *BootstrapResponse) Read(r io.Reader) error {
	var err error
	if c.FrozenEdgeHeight, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	if c.FrozenEdgeHash, err = message_fields.ReadHash(r); err != nil {
		return err
	}
	count, err := message_fields.ReadInt16(r)
	if err != nil {
		return err
	}
	if count < 0 {
		return errors.Errorf("invalid cycle length %d in bootstrap response", count)
	}
	c.CycleVerifiers = make([][]byte, 0, count)
	for i := int16(0); i < count; i++ {
		id, err := message_fields.ReadNodeId(r)
		if err != nil {
			return err
		}
		c.CycleVerifiers = append(c.CycleVerifiers, id)
	}
	return nil
}
