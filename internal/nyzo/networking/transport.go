package networking

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	broadcastConcurrency = 50
	broadcastTimeout     = 5 * time.Second
)

// FrozenEdgeView is a verifier's report of its frozen edge and the current cycle, oldest verifier first.
type FrozenEdgeView struct {
	Height       int64
	Hash         []byte
	CycleMembers [][]byte
	Source       *ManagedVerifier
}

// Transport talks to shadowed verifiers and the mesh. Requests are signed with the sentinel's own identity.
type Transport struct {
	identity *identity.Identity
	pending  sync.WaitGroup
}

func NewTransport(id *identity.Identity) *Transport {
	return &Transport{identity: id}
}

// fetch also makes sure the answer has the expected type and was signed by the verifier itself.
func (t *Transport) fetch(ctx context.Context, request *messages.Message, verifier *ManagedVerifier, expectedType int16) (*messages.Message, error) {
	answer, err := Fetch(ctx, request, verifier.Address())
	if err != nil {
		return nil, err
	}
	if answer.Type != expectedType {
		return nil, errors.Errorf("%s answered with message type %d, expected %d", verifier.Identity.Nickname, answer.Type, expectedType)
	}
	if !bytes.Equal(answer.SourceId, verifier.Identity.PublicKey) {
		return nil, errors.Errorf("answer from %s is not signed by the verifier", verifier.Address())
	}
	return answer, nil
}

func (t *Transport) RequestFrozenEdgeView(ctx context.Context, verifier *ManagedVerifier) (*FrozenEdgeView, error) {
	request := messages.NewLocal(messages.TypeBootstrapRequest, message_content.NewBootstrapRequest(configuration.ListeningPortTcp), t.identity)
	answer, err := t.fetch(ctx, request, verifier, messages.TypeBootstrapResponse)
	if err != nil {
		return nil, err
	}
	content := answer.Content.(*message_content.BootstrapResponse)
	return &FrozenEdgeView{
		Height:       content.FrozenEdgeHeight,
		Hash:         content.FrozenEdgeHash,
		CycleMembers: content.CycleVerifiers,
		Source:       verifier,
	}, nil
}

func (t *Transport) RequestMesh(ctx context.Context, verifier *ManagedVerifier) ([]*node.Node, error) {
	request := messages.NewLocal(messages.TypeMeshRequest, nil, t.identity)
	answer, err := t.fetch(ctx, request, verifier, messages.TypeMeshResponse)
	if err != nil {
		return nil, err
	}
	return answer.Content.(*message_content.MeshResponse).Nodes, nil
}

func (t *Transport) RequestBlocks(ctx context.Context, verifier *ManagedVerifier, startHeight, endHeight int64, includeBalanceList bool) ([]*blockchain_data.Block, *blockchain_data.BalanceList, error) {
	request := messages.NewLocal(messages.TypeBlockRequest, message_content.NewBlockRequest(startHeight, endHeight, includeBalanceList), t.identity)
	answer, err := t.fetch(ctx, request, verifier, messages.TypeBlockResponse)
	if err != nil {
		return nil, nil, err
	}
	content := answer.Content.(*message_content.BlockResponse)
	return content.Blocks, content.BalanceList, nil
}

// Broadcast sends m to all peers in the background and returns immediately. Delivery is not tracked.
func (t *Transport) Broadcast(m *messages.Message, peers []*node.Node) {
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		group := new(errgroup.Group)
		group.SetLimit(broadcastConcurrency)
		for _, peer := range peers {
			address := peer.Address()
			group.Go(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
				defer cancel()
				if err := Send(ctx, m, address); err != nil {
					logging.TraceLog.Printf("Broadcast of message type %d failed: %s.", m.Type, err.Error())
				}
				return nil
			})
		}
		_ = group.Wait()
	}()
}

// Wait blocks until all running broadcasts are done.
func (t *Transport) Wait() {
	t.pending.Wait()
}
