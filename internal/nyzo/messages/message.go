/*
A signed message to/from a peer.
*/
package messages

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
)

// Everything but the content: length, timestamp, type, source id and signature.
const envelopeLength = message_fields.SizeMessageLength + message_fields.SizeTimestamp + message_fields.SizeMessageType + message_fields.SizeNodeIdentifier + message_fields.SizeSignature

// Any object that can be serialized to and from a byte stream
type Serializable interface {
	GetSerializedLength() int
	ToBytes() []byte
	Read(r io.Reader) error
}

type Message struct {
	Timestamp int64 // milliseconds, when the message was created
	Type      int16
	Content   Serializable
	SourceId  []byte // public key of the node that created and signed this message
	Signature []byte
}

// NewLocal creates a message signed by the given identity.
func NewLocal(messageType int16, content Serializable, id *identity.Identity) *Message {
	m := &Message{Timestamp: utilities.Now(), Type: messageType, Content: content, SourceId: id.PublicKey}
	m.Signature = id.Sign(m.SerializeForSigning())
	return m
}

func newContent(messageType int16) Serializable {
	switch messageType {
	case TypeNewBlock:
		return &message_content.NewBlock{}
	case TypeBlockRequest:
		return &message_content.BlockRequest{}
	case TypeBlockResponse:
		return &message_content.BlockResponse{}
	case TypeMeshRequest:
		return &message_content.NoContent{}
	case TypeMeshResponse:
		return &message_content.MeshResponse{}
	case TypeBootstrapRequest:
		return &message_content.BootstrapRequest{}
	case TypeBootstrapResponse:
		return &message_content.BootstrapResponse{}
	default:
		return &message_content.Raw{}
	}
}

// ReadNew reads one length-prefixed message and verifies its signature.
// Layout: length 4, timestamp 8, type 2, content, source id 32, signature 64.
func ReadNew(r io.Reader) (*Message, error) {
	length, err := message_fields.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if length < envelopeLength || length > message_fields.MaximumReadLength {
		return nil, errors.Errorf("invalid message length %d", length)
	}
	body, err := message_fields.ReadBytes(r, int64(length-message_fields.SizeMessageLength))
	if err != nil {
		return nil, errors.Wrap(err, "truncated message")
	}
	m := &Message{}
	m.Timestamp = message_fields.DeserializeInt64(body[0:8])
	m.Type = message_fields.DeserializeInt16(body[8:10])
	contentEnd := len(body) - message_fields.SizeNodeIdentifier - message_fields.SizeSignature
	m.Content = newContent(m.Type)
	if err := m.Content.Read(bytes.NewReader(body[10:contentEnd])); err != nil {
		return nil, errors.Wrapf(err, "cannot read content of message type %d", m.Type)
	}
	m.SourceId = body[contentEnd : contentEnd+message_fields.SizeNodeIdentifier]
	m.Signature = body[contentEnd+message_fields.SizeNodeIdentifier:]
	if message_fields.AllZeroes(m.SourceId) {
		return nil, errors.New("message source id is all zeroes")
	}
	// verified over the received bytes, content we don't fully decode stays covered
	if !ed25519.Verify(m.SourceId, body[:contentEnd+message_fields.SizeNodeIdentifier], m.Signature) {
		return nil, errors.Errorf("invalid signature on message type %d", m.Type)
	}
	return m, nil
}

// Layout: timestamp 8, type 2, content, source id 32.
func (m *Message) SerializeForSigning() []byte {
	serialized := message_fields.SerializeInt64(m.Timestamp)
	serialized = append(serialized, message_fields.SerializeInt16(m.Type)...)
	if m.Content != nil {
		serialized = append(serialized, m.Content.ToBytes()...)
	}
	return append(serialized, m.SourceId...)
}

func (m *Message) SerializeForTransmission() []byte {
	content := []byte(nil)
	if m.Content != nil {
		content = m.Content.ToBytes()
	}
	serialized := message_fields.SerializeInt32(int32(envelopeLength + len(content)))
	serialized = append(serialized, message_fields.SerializeInt64(m.Timestamp)...)
	serialized = append(serialized, message_fields.SerializeInt16(m.Type)...)
	serialized = append(serialized, content...)
	serialized = append(serialized, m.SourceId...)
	return append(serialized, m.Signature...)
}

func (m *Message) SignatureIsValid() bool {
	return len(m.SourceId) == ed25519.PublicKeySize && ed25519.Verify(m.SourceId, m.SerializeForSigning(), m.Signature)
}
