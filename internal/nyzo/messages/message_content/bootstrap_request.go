package message_content

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
)

// BootstrapRequest asks a verifier for its frozen edge and cycle. The port is a legacy field.
type BootstrapRequest struct {
	Port int32
}

func NewBootstrapRequest(port int32) *BootstrapRequest {
	return &BootstrapRequest{Port: port}
}

func (c *BootstrapRequest) GetSerializedLength() int {
	return message_fields.SizePort
}

func (c *BootstrapRequest) ToBytes() []byte {
	return message_fields.SerializeInt32(c.Port)
}

func (c *BootstrapRequest) Read(r io.Reader) error {
	var err error
	c.Port, err = message_fields.ReadInt32(r)
	return err
}
