package messages

import (
	"bytes"
	"testing"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/stretchr/testify/require"
)

func testIdentity(t *testing.T) *identity.Identity {
	id, err := identity.FromPrivateKey(bytes.Repeat([]byte{42}, 32))
	require.NoError(t, err)
	return id
}

func TestBootstrapResponseTransmission(t *testing.T) {
	id := testIdentity(t)
	cycle := [][]byte{bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32)}
	sent := NewLocal(TypeBootstrapResponse, message_content.NewBootstrapResponse(100, bytes.Repeat([]byte{3}, 32), cycle), id)

	received, err := ReadNew(bytes.NewReader(sent.SerializeForTransmission()))
	require.NoError(t, err)
	require.Equal(t, TypeBootstrapResponse, received.Type)
	require.Equal(t, sent.Timestamp, received.Timestamp)
	content, ok := received.Content.(*message_content.BootstrapResponse)
	require.True(t, ok)
	require.Equal(t, int64(100), content.FrozenEdgeHeight)
	require.Equal(t, cycle, content.CycleVerifiers)
}

func TestTamperedMessageRejected(t *testing.T) {
	sent := NewLocal(TypeBlockRequest, message_content.NewBlockRequest(5, 14, true), testIdentity(t))
	serialized := sent.SerializeForTransmission()
	serialized[20] ^= 0xff
	_, err := ReadNew(bytes.NewReader(serialized))
	require.Error(t, err)
}

func TestMeshResponseWithTrailingData(t *testing.T) {
	id := testIdentity(t)
	nodes := []*node.Node{node.NewNode(bytes.Repeat([]byte{5}, 32), []byte{10, 0, 0, 1}, 9444, 1000)}
	m := &Message{Timestamp: 1, Type: TypeMeshResponse, Content: &message_content.Raw{Content: append(message_content.NewMeshResponse(nodes).ToBytes(), 1, 2, 3)}, SourceId: id.PublicKey}
	m.Signature = id.Sign(m.SerializeForSigning())

	received, err := ReadNew(bytes.NewReader(m.SerializeForTransmission()))
	require.NoError(t, err)
	content := received.Content.(*message_content.MeshResponse)
	require.Len(t, content.Nodes, 1)
	require.Equal(t, "10.0.0.1:9444", content.Nodes[0].Address())
}

func TestInvalidLengthRejected(t *testing.T) {
	_, err := ReadNew(bytes.NewReader(message_fields.SerializeInt32(3)))
	require.Error(t, err)
}

func TestEmptyMeshRequest(t *testing.T) {
	sent := NewLocal(TypeMeshRequest, nil, testIdentity(t))
	received, err := ReadNew(bytes.NewReader(sent.SerializeForTransmission()))
	require.NoError(t, err)
	require.Equal(t, TypeMeshRequest, received.Type)
}
