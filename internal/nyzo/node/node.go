/*
A peer as reported in a mesh response. Kept out of 'networking' so message contents can use it without an
import cycle.
*/
package node

import (
	"io"
	"net"
	"strconv"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/pkg/errors"
)

// SerializedLength is the size of one node entry on the wire (the UDP port is not transmitted).
const SerializedLength = message_fields.SizeNodeIdentifier + message_fields.SizeIPAddress + message_fields.SizePort + message_fields.SizeTimestamp

type Node struct {
	Identifier     []byte // public key of the verifier
	IpAddress      []byte // IPv4, 4 bytes
	IpString       string
	PortTcp        int32
	QueueTimestamp int64 // when the verifier joined the mesh or was last updated
}

func NewNode(id, ip []byte, portTcp int32, queueTimestamp int64) *Node {
	return &Node{
		Identifier:     id,
		IpAddress:      ip,
		IpString:       message_fields.IP4BytesToString(ip),
		PortTcp:        portTcp,
		QueueTimestamp: queueTimestamp,
	}
}

func ReadNode(r io.Reader) (*Node, error) {
	n := &Node{}
	return n, n.Read(r)
}

// Address is the TCP dial address of the node.
func (n *Node) Address() string {
	return net.JoinHostPort(n.IpString, strconv.Itoa(int(n.PortTcp)))
}

func (n *Node) ToBytes() []byte {
	serialized := append([]byte(nil), n.Identifier...)
	serialized = append(serialized, n.IpAddress...)
	serialized = append(serialized, message_fields.SerializeInt32(n.PortTcp)...)
	serialized = append(serialized, message_fields.SerializeInt64(n.QueueTimestamp)...)
	if len(serialized) != SerializedLength {
		return make([]byte, SerializedLength)
	}
	return serialized
}

func (n *Node) Read(r io.Reader) error {
	var err error
	if n.Identifier, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if message_fields.AllZeroes(n.Identifier) {
		return errors.New("cannot read node: identifier is all zeroes")
	}
	if n.IpAddress, err = message_fields.ReadBytes(r, message_fields.SizeIPAddress); err != nil {
		return err
	}
	if n.PortTcp, err = message_fields.ReadInt32(r); err != nil {
		return err
	}
	if n.QueueTimestamp, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	n.IpString = message_fields.IP4BytesToString(n.IpAddress)
	return nil
}
