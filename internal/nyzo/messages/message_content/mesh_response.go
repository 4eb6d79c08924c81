package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
)

// max number of nodes that we'll accept in a mesh response
const meshResponseMaxNodes = 10000

type MeshResponse struct {
	Nodes []*node.Node
}

func NewMeshResponse(nodes []*node.Node) *MeshResponse {
	return &MeshResponse{Nodes: nodes}
}

func (c *MeshResponse) GetSerializedLength() int {
	return message_fields.SizeNodeListLength + len(c.Nodes)*node.SerializedLength
}

func (c *MeshResponse) ToBytes() []byte {
	serialized := message_fields.SerializeInt32(int32(len(c.Nodes)))
	for _, n := range c.Nodes {
		serialized = append(serialized, n.ToBytes()...)
	}
	return serialized
}

// Some verifiers append extra data after the node list, the message envelope bounds the content so it is ignored.
func (c *MeshResponse) Read(r io.Reader) error {
	count, err := message_fields.ReadInt32(r)
	if err != nil {
		return err
	}
	if count > meshResponseMaxNodes {
		count = meshResponseMaxNodes
	}
	c.Nodes = make([]*node.Node, 0, count)
	for i := int32(0); i < count; i++ {
		n, err := node.ReadNode(r)
		if err != nil {
			return err
		}
		c.Nodes = append(c.Nodes, n)
	}
	return nil
}
