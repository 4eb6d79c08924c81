package message_content

import "io"

// An empty message.
type NoContent struct{}

func (c *NoContent) GetSerializedLength() int { return 0 }

func (c *NoContent) ToBytes() []byte { return nil }

func (c *NoContent) Read(r io.Reader) error { return nil }

// Raw keeps the content of message types we don't decode.
type Raw struct {
	Content []byte
}

func (c *Raw) GetSerializedLength() int { return len(c.Content) }

func (c *Raw) ToBytes() []byte { return c.Content }

func (c *Raw) Read(r io.Reader) error {
	var err error
	c.Content, err = io.ReadAll(r)
	return err
}
