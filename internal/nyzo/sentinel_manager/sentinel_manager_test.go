package sentinel_manager

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/block_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/cycle_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("timeout")

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) RequestFrozenEdgeView(ctx context.Context, verifier *networking.ManagedVerifier) (*networking.FrozenEdgeView, error) {
	args := m.Called(verifier)
	view, _ := args.Get(0).(*networking.FrozenEdgeView)
	return view, args.Error(1)
}

func (m *mockTransport) RequestMesh(ctx context.Context, verifier *networking.ManagedVerifier) ([]*node.Node, error) {
	args := m.Called(verifier)
	nodes, _ := args.Get(0).([]*node.Node)
	return nodes, args.Error(1)
}

func (m *mockTransport) RequestBlocks(ctx context.Context, verifier *networking.ManagedVerifier, startHeight, endHeight int64, includeBalanceList bool) ([]*blockchain_data.Block, *blockchain_data.BalanceList, error) {
	args := m.Called(verifier, startHeight, endHeight, includeBalanceList)
	blocks, _ := args.Get(0).([]*blockchain_data.Block)
	balanceList, _ := args.Get(1).(*blockchain_data.BalanceList)
	return blocks, balanceList, args.Error(2)
}

func (m *mockTransport) Broadcast(message *messages.Message, peers []*node.Node) {
	m.Called(message, peers)
}

// Passes everything, no pending or seed transactions.
type fakeTransactionManager struct {
	interfaces.TransactionManagerInterface
}

func (f *fakeTransactionManager) TransactionsForHeight(height int64) []*blockchain_data.Transaction {
	return nil
}

func (f *fakeTransactionManager) SeedTransactionForBlock(height int64) *blockchain_data.Transaction {
	return nil
}

func (f *fakeTransactionManager) ApprovedTransactionsForBlock(transactions []*blockchain_data.Transaction, previousBlock *blockchain_data.Block, balanceList *blockchain_data.BalanceList) []*blockchain_data.Transaction {
	return transactions
}

type testSentinel struct {
	state         *state
	transport     *mockTransport
	chainState    interfaces.ChainStateInterface
	identities    []*identity.Identity
	clock         int64
	transmissions []*router.BlockTransmission
	sent          []*messages.Message
	sleeps        []time.Duration
}

func newIdentity(t *testing.T, seed byte) *identity.Identity {
	id, err := identity.FromPrivateKey(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return id
}

// A sentinel managing the verifiers with the given seeds, on an empty chain. Three identities exist: 1, 2 and 3.
func newTestSentinel(t *testing.T, managed ...int) *testSentinel {
	ts := &testSentinel{transport: &mockTransport{}, clock: 100000}
	for i := byte(1); i <= 3; i++ {
		ts.identities = append(ts.identities, newIdentity(t, i))
	}
	ctxt := &interfaces.Context{
		Router:             router.New(),
		Settings:           &configuration.Settings{DataDirectory: t.TempDir(), BootstrapStrategy: configuration.BootstrapStrategyFast},
		TransactionManager: &fakeTransactionManager{},
		Transport:          ts.transport,
	}
	ctxt.ChainState = block_authority.NewBlockAuthority(ctxt)
	ctxt.Router.Subscribe(router.TopicBlockTransmitted, func(transmission *router.BlockTransmission) {
		ts.transmissions = append(ts.transmissions, transmission)
	})
	ts.chainState = ctxt.ChainState
	ts.state = newState(ctxt, NopMetrics(), func() int64 { return ts.clock })
	ts.state.sleep = func(ctx context.Context, d time.Duration) bool {
		ts.sleeps = append(ts.sleeps, d)
		return ctx.Err() == nil
	}
	for _, i := range managed {
		ts.state.verifiers = append(ts.state.verifiers, &networking.ManagedVerifier{Host: "127.0.0.1", Port: 9444, Identity: ts.identities[i-1]})
	}
	ts.transport.On("Broadcast", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ts.sent = append(ts.sent, args.Get(0).(*messages.Message))
	}).Return()
	return ts
}

// Cycle oldest first: 2, 3, 1. Verifier 1 produced the last block, it's verifier 2's turn.
func (ts *testSentinel) cycle() [][]byte {
	return [][]byte{ts.identities[1].PublicKey, ts.identities[2].PublicKey, ts.identities[0].PublicKey}
}

// A block by verifier 1 at height, with its balance list.
func (ts *testSentinel) snapshot(height int64) (*blockchain_data.Block, *blockchain_data.BalanceList) {
	balanceList := &blockchain_data.BalanceList{BlockchainVersion: 2, BlockHeight: height}
	for i := 0; i < blockchain_data.MaximumPreviousVerifiers; i++ {
		balanceList.PreviousVerifiers = append(balanceList.PreviousVerifiers, bytes.Repeat([]byte{byte(50 + i)}, 32))
	}
	balanceList.Items = []blockchain_data.BalanceListItem{{Identifier: bytes.Repeat([]byte{9}, 32), Balance: configuration.MicronyzosInSystem, BlocksUntilFee: 200}}
	block := &blockchain_data.Block{
		BlockchainVersion:     2,
		Height:                height,
		PreviousBlockHash:     bytes.Repeat([]byte{8}, 32),
		StartTimestamp:        1000,
		VerificationTimestamp: 8000,
		BalanceListHash:       balanceList.GetHash(),
	}
	block.Sign(ts.identities[0])
	return block, balanceList
}

func (ts *testSentinel) importAt(t *testing.T, height int64) *blockchain_data.Block {
	block, balanceList := ts.snapshot(height)
	require.NoError(t, ts.chainState.TrustedImport(block, balanceList, ts.cycle()))
	return block
}

// The block following previous, produced by verifier.
func (ts *testSentinel) next(t *testing.T, previous *blockchain_data.Block, verifier *identity.Identity) *blockchain_data.Block {
	block := &blockchain_data.Block{
		BlockchainVersion:     previous.BlockchainVersion,
		Height:                previous.Height + 1,
		PreviousBlockHash:     previous.Hash,
		StartTimestamp:        previous.StartTimestamp + configuration.BlockDuration,
		VerificationTimestamp: previous.VerificationTimestamp + configuration.BlockDuration,
		VerifierIdentifier:    verifier.PublicKey,
	}
	balanceList, err := balance_authority.UpdateBalanceListForNextBlock(cycle_authority.NewCycle(nil), previous.VerifierIdentifier, ts.chainState.FrozenEdgeBalanceList(), block)
	require.NoError(t, err)
	block.BalanceListHash = balanceList.GetHash()
	block.Sign(verifier)
	return block
}

// count blocks after previous, taking turns. Their balance list hashes are zero, so they freeze without a balance list.
func (ts *testSentinel) chainAfter(previous *blockchain_data.Block, count int) []*blockchain_data.Block {
	var blocks []*blockchain_data.Block
	for i := 0; i < count; i++ {
		block := &blockchain_data.Block{
			BlockchainVersion:     previous.BlockchainVersion,
			Height:                previous.Height + 1,
			PreviousBlockHash:     previous.Hash,
			StartTimestamp:        previous.StartTimestamp + configuration.BlockDuration,
			VerificationTimestamp: previous.VerificationTimestamp + configuration.BlockDuration,
			BalanceListHash:       make([]byte, 32),
		}
		block.Sign(ts.identities[(i+1)%3])
		blocks = append(blocks, block)
		previous = block
	}
	return blocks
}

func (ts *testSentinel) view(height int64) *networking.FrozenEdgeView {
	return &networking.FrozenEdgeView{Height: height, Hash: bytes.Repeat([]byte{1}, 32), CycleMembers: ts.cycle(), Source: ts.state.verifiers[0]}
}

func TestBootstrapSkipsWhenClose(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.importAt(t, 90)
	ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(100), nil)

	// cutoff 100 - 3*4 = 88, local 90
	require.True(t, ts.state.Bootstrap(context.Background(), StrategyFast))
	ts.transport.AssertNotCalled(t, "RequestBlocks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(90), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, ModeStandard, ts.state.sync.Mode)
}

func TestBootstrapImportsTrustedBlock(t *testing.T) {
	ts := newTestSentinel(t, 1, 2)
	ts.importAt(t, 50)
	ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(100), nil)
	block, balanceList := ts.snapshot(88)
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(88), int64(88), true).Return(nil, nil, errTimeout).Once()
	ts.transport.On("RequestBlocks", ts.state.verifiers[1], int64(88), int64(88), true).Return([]*blockchain_data.Block{block}, balanceList, nil).Once()

	require.True(t, ts.state.Bootstrap(context.Background(), StrategyFast))
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 2)
	assert.Equal(t, int64(88), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, 3, ts.chainState.CycleLength())
	// 50 blocks behind
	assert.Equal(t, ModeFastFetch, ts.state.sync.Mode)
}

func TestBootstrapFromEmptyChain(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(5), nil)
	genesis, balanceList := ts.snapshot(0)
	// 5 - 3*4 is below the genesis block
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(0), int64(0), true).Return([]*blockchain_data.Block{genesis}, balanceList, nil).Once()

	require.True(t, ts.state.Bootstrap(context.Background(), StrategyFast))
	require.Equal(t, int64(0), ts.chainState.FrozenEdgeHeight())

	// syncing goes on from the imported block
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(1), int64(1), false).Return(nil, nil, errTimeout).Once()
	ts.state.syncTick(context.Background())
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 2)
	assert.Equal(t, 1, ts.state.sync.ConsecutiveFailures)
}

func TestBootstrapRetryDelays(t *testing.T) {
	for _, test := range []struct {
		name     string
		strategy Strategy
		sleeps   []time.Duration
	}{
		{"fast", StrategyFast, nil},
		{"thorough", StrategyThorough, []time.Duration{thoroughRetryDelay}},
	} {
		t.Run(test.name, func(t *testing.T) {
			ts := newTestSentinel(t, 1)
			ts.importAt(t, 50)
			ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(100), nil)
			block, balanceList := ts.snapshot(88)
			ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(88), int64(88), true).Return(nil, nil, errTimeout).Once()
			ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(88), int64(88), true).Return([]*blockchain_data.Block{block}, balanceList, nil).Once()

			require.True(t, ts.state.Bootstrap(context.Background(), test.strategy))
			assert.Equal(t, test.sleeps, ts.sleeps)
			ts.transport.AssertNumberOfCalls(t, "RequestFrozenEdgeView", 2)
			assert.Equal(t, int64(88), ts.chainState.FrozenEdgeHeight())
		})
	}
}

func TestBootstrapWaitsForView(t *testing.T) {
	for _, strategy := range []Strategy{StrategyFast, StrategyThorough} {
		ts := newTestSentinel(t, 1)
		ts.importAt(t, 90)
		ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(nil, errTimeout).Once()
		ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(100), nil).Once()

		require.True(t, ts.state.Bootstrap(context.Background(), strategy))
		assert.Equal(t, []time.Duration{noViewRetryDelay}, ts.sleeps)
	}
}

func TestBootstrapRetriesRejectedImport(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.importAt(t, 50)
	ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(ts.view(100), nil)
	// the balance list doesn't belong to the block
	bad, badList := ts.snapshot(88)
	bad.BalanceListHash = bytes.Repeat([]byte{3}, 32)
	block, balanceList := ts.snapshot(88)
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(88), int64(88), true).Return([]*blockchain_data.Block{bad}, badList, nil).Once()
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(88), int64(88), true).Return([]*blockchain_data.Block{block}, balanceList, nil).Once()

	require.True(t, ts.state.Bootstrap(context.Background(), StrategyThorough))
	assert.Equal(t, []time.Duration{thoroughRetryDelay}, ts.sleeps)
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 2)
	assert.Equal(t, int64(88), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, block.BalanceListHash, ts.chainState.FrozenEdgeBlock().BalanceListHash)
}

func TestBootstrapStopsWithContext(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.transport.On("RequestFrozenEdgeView", mock.Anything).Return(nil, errTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, ts.state.Bootstrap(ctx, StrategyThorough))
}

func TestQueryFrozenEdgeView(t *testing.T) {
	ts := newTestSentinel(t, 1, 2, 3)
	verifiers := ts.state.verifiers
	ts.transport.On("RequestFrozenEdgeView", verifiers[0]).Return(ts.view(100), nil)
	ts.transport.On("RequestFrozenEdgeView", verifiers[1]).Return(ts.view(120), nil)
	ts.transport.On("RequestFrozenEdgeView", verifiers[2]).Return(nil, errTimeout)

	view, err := QueryFrozenEdgeView(context.Background(), ts.transport, verifiers, StrategyThorough)
	require.NoError(t, err)
	assert.Equal(t, int64(120), view.Height)
	ts.transport.AssertNumberOfCalls(t, "RequestFrozenEdgeView", 3)

	view, err = QueryFrozenEdgeView(context.Background(), ts.transport, verifiers[1:], StrategyFast)
	require.NoError(t, err)
	assert.Equal(t, int64(120), view.Height)

	_, err = QueryFrozenEdgeView(context.Background(), ts.transport, verifiers[2:], StrategyFast)
	assert.ErrorIs(t, err, ErrNoFrozenEdgeView)
	_, err = QueryFrozenEdgeView(context.Background(), ts.transport, nil, StrategyFast)
	assert.ErrorIs(t, err, networking.ErrNoManagedVerifiers)
}

func TestFastFetchActivation(t *testing.T) {
	s := &SyncState{}
	for i := 0; i < 3; i++ {
		s.recordSuccess(100, 125)
		assert.Equal(t, ModeStandard, s.Mode)
	}
	s.recordSuccess(100, 125)
	assert.Equal(t, ModeFastFetch, s.Mode)
	assert.Equal(t, int64(fastFetchSyncInterval), s.syncInterval())
	start, end := s.requestRange(100)
	assert.Equal(t, int64(101), start)
	assert.Equal(t, int64(110), end)

	s.recordFailure()
	assert.Equal(t, ModeStandard, s.Mode)
	assert.Equal(t, 1, s.ConsecutiveFailures)
	assert.Equal(t, 0, s.ConsecutiveSuccesses)
	start, end = s.requestRange(100)
	assert.Equal(t, start, end)

	// close to the open edge, no reason to hurry
	s = &SyncState{}
	for i := 0; i < 10; i++ {
		s.recordSuccess(100, 110)
	}
	assert.Equal(t, ModeStandard, s.Mode)
}

func TestSyncTick(t *testing.T) {
	ts := newTestSentinel(t, 1, 2)
	edge := ts.importAt(t, 10)
	block := ts.next(t, edge, ts.identities[1])
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(11), int64(11), false).Return([]*blockchain_data.Block{block}, nil, nil).Once()
	ts.transport.On("RequestBlocks", ts.state.verifiers[1], int64(12), int64(12), false).Return([]*blockchain_data.Block{}, nil, nil).Once()

	ts.state.syncTick(context.Background())
	assert.Equal(t, int64(11), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, 1, ts.state.sync.ConsecutiveSuccesses)
	assert.Equal(t, ts.clock, ts.state.sync.LastBlockReceived)

	// an empty answer is a failure
	ts.state.syncTick(context.Background())
	assert.Equal(t, int64(11), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, 0, ts.state.sync.ConsecutiveSuccesses)
	assert.Equal(t, 1, ts.state.sync.ConsecutiveFailures)
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 2)
}

func TestSyncTickModeSwitching(t *testing.T) {
	ts := newTestSentinel(t, 1)
	edge := ts.importAt(t, 10)
	// far enough from the frozen edge for the open edge to run ahead
	ts.clock = 200000
	blocks := ts.chainAfter(edge, 14)
	verifier := ts.state.verifiers[0]
	for i := 0; i < 4; i++ {
		height := int64(11 + i)
		ts.transport.On("RequestBlocks", verifier, height, height, mock.Anything).Return(blocks[i:i+1], nil, nil).Once()
	}
	ts.transport.On("RequestBlocks", verifier, int64(15), int64(24), mock.Anything).Return(blocks[4:], nil, nil).Once()
	ts.transport.On("RequestBlocks", verifier, int64(25), int64(34), mock.Anything).Return(nil, nil, errTimeout).Once()

	for i := 0; i < 3; i++ {
		ts.state.syncTick(context.Background())
		require.Equal(t, ModeStandard, ts.state.sync.Mode)
	}
	ts.state.syncTick(context.Background())
	require.Equal(t, int64(14), ts.chainState.FrozenEdgeHeight())
	require.Equal(t, ModeFastFetch, ts.state.sync.Mode)

	// ten blocks at once
	ts.state.syncTick(context.Background())
	assert.Equal(t, int64(24), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, ModeFastFetch, ts.state.sync.Mode)
	assert.Equal(t, 5, ts.state.sync.ConsecutiveSuccesses)

	// the first failure ends fast fetch
	ts.state.syncTick(context.Background())
	assert.Equal(t, int64(24), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, ModeStandard, ts.state.sync.Mode)
	assert.Equal(t, 1, ts.state.sync.ConsecutiveFailures)
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 6)
}

func TestSyncTickRejectsPartialBatch(t *testing.T) {
	ts := newTestSentinel(t, 1)
	edge := ts.importAt(t, 10)
	ts.state.sync.Mode = ModeFastFetch
	block := ts.next(t, edge, ts.identities[1])
	ts.transport.On("RequestBlocks", ts.state.verifiers[0], int64(11), int64(20), false).Return([]*blockchain_data.Block{block}, nil, nil).Once()

	ts.state.syncTick(context.Background())
	assert.Equal(t, int64(10), ts.chainState.FrozenEdgeHeight())
	assert.Equal(t, ModeStandard, ts.state.sync.Mode)
}

func TestSyncIfDue(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.importAt(t, 10)
	ts.transport.On("RequestBlocks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil, errTimeout)

	ts.state.syncIfDue(context.Background())
	ts.clock += standardSyncInterval - 1
	ts.state.syncIfDue(context.Background())
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 1)
	ts.clock++
	ts.state.syncIfDue(context.Background())
	ts.transport.AssertNumberOfCalls(t, "RequestBlocks", 2)
}

func TestMinimumVoteTimestamp(t *testing.T) {
	frozenEdge := &blockchain_data.Block{VerificationTimestamp: 1000}
	assert.Equal(t, int64(69500), minimumVoteTimestamp(frozenEdge, 3))
	for score := int64(0); score < 10; score++ {
		assert.Less(t, minimumVoteTimestamp(frozenEdge, score), minimumVoteTimestamp(frozenEdge, score+1))
	}
}

func TestCandidatesNeverFollowSelf(t *testing.T) {
	ts := newTestSentinel(t, 1, 2, 3)
	ts.importAt(t, 10)

	ts.state.maybeProduceAndSend(context.Background())
	require.Len(t, ts.state.candidates.blocks, 2)
	for _, block := range ts.state.candidates.blocks {
		assert.False(t, bytes.Equal(ts.identities[0].PublicKey, block.VerifierIdentifier))
		assert.Equal(t, int64(11), block.Height)
		assert.True(t, block.SignatureIsValid())
	}
}

func TestSingleTransmissionPerHeight(t *testing.T) {
	ts := newTestSentinel(t, 1, 2, 3)
	ts.importAt(t, 10)

	// not stalled yet
	ts.state.sync.LastBlockReceived = ts.clock - stallWindow + 1
	ts.state.maybeProduceAndSend(context.Background())
	assert.Empty(t, ts.state.candidates.blocks)
	ts.transport.AssertNumberOfCalls(t, "Broadcast", 0)

	ts.state.sync.LastBlockReceived = ts.clock - stallWindow
	for i := 0; i < 3; i++ {
		ts.state.maybeProduceAndSend(context.Background())
	}
	ts.transport.AssertNumberOfCalls(t, "Broadcast", 1)
	require.Len(t, ts.transmissions, 1)
	// verifier 2's turn
	sent := ts.sent[0]
	assert.Equal(t, messages.TypeNewBlock, sent.Type)
	assert.Equal(t, []byte(ts.identities[1].PublicKey), sent.SourceId)
	assert.True(t, sent.SignatureIsValid())
	assert.Equal(t, int64(11), ts.transmissions[0].Height)
	assert.Equal(t, int64(0), ts.transmissions[0].Score)

	// our own block comes back frozen, the next height gets its own transmission
	block := ts.state.candidates.blocks[0]
	require.Equal(t, []byte(ts.identities[1].PublicKey), []byte(block.VerifierIdentifier))
	require.NoError(t, ts.chainState.FreezeBlock(block, nil))
	ts.clock += 10000
	ts.state.maybeProduceAndSend(context.Background())
	ts.state.maybeProduceAndSend(context.Background())
	ts.transport.AssertNumberOfCalls(t, "Broadcast", 2)
	require.Len(t, ts.transmissions, 2)
	assert.Equal(t, int64(12), ts.transmissions[1].Height)
	// verifier 3's turn now
	assert.Equal(t, []byte(ts.identities[2].PublicKey), ts.transmissions[1].VerifierIdentifier)
}

func TestTransmissionWaitsForScore(t *testing.T) {
	// only verifier 3, two blocks out of turn
	ts := newTestSentinel(t, 3)
	ts.importAt(t, 10)
	ts.state.sync.LastBlockReceived = 0

	// 8000 + 8500 + 4*20000
	ts.clock = 96499
	ts.state.maybeProduceAndSend(context.Background())
	ts.transport.AssertNumberOfCalls(t, "Broadcast", 0)
	assert.Equal(t, int64(4), ts.state.lowestScore)

	ts.clock = 96500
	ts.state.maybeProduceAndSend(context.Background())
	ts.transport.AssertNumberOfCalls(t, "Broadcast", 1)
}

func TestMarkerTransaction(t *testing.T) {
	ts := newTestSentinel(t, 2)
	edge := ts.importAt(t, 10)
	verifier := ts.state.verifiers[0]
	block := &blockchain_data.Block{Height: 11, StartTimestamp: edge.StartTimestamp + configuration.BlockDuration}

	transaction := markerTransaction(edge, block, verifier)
	assert.Equal(t, int64(1), transaction.Amount)
	assert.Equal(t, make([]byte, 32), transaction.RecipientId)
	assert.Equal(t, block.StartTimestamp+1000, transaction.Timestamp)
	assert.Equal(t, "sentinel block "+verifier.Identity.ShortId, string(transaction.SenderData))
	assert.Equal(t, int64(10), transaction.PreviousHashHeight)
	assert.True(t, transaction.SignatureIsValid())
}

func TestCombinedMesh(t *testing.T) {
	ts := newTestSentinel(t, 1, 2)
	ts.importAt(t, 10)
	outsider := newIdentity(t, 7)
	nodes := []*node.Node{
		node.NewNode(ts.identities[0].PublicKey, []byte{10, 0, 0, 1}, 9444, 0),
		node.NewNode(ts.identities[1].PublicKey, []byte{10, 0, 0, 1}, 9444, 0),
		node.NewNode(ts.identities[2].PublicKey, []byte{10, 0, 0, 3}, 9444, 0),
		node.NewNode(outsider.PublicKey, []byte{10, 0, 0, 4}, 9444, 0),
	}
	ts.transport.On("RequestMesh", ts.state.verifiers[0]).Return(nodes, nil).Once()
	ts.transport.On("RequestMesh", ts.state.verifiers[1]).Return([]*node.Node{}, nil).Once()
	ts.transport.On("RequestMesh", ts.state.verifiers[0]).Return(nil, errTimeout).Once()

	for i := 0; i < 3; i++ {
		ts.state.refreshMesh(context.Background())
	}
	ts.transport.AssertNumberOfCalls(t, "RequestMesh", 3)
	require.Len(t, ts.state.meshSnapshots, 1)
	mesh := ts.state.combinedMesh()
	require.Len(t, mesh, 2)
	assert.Equal(t, "10.0.0.1", mesh[0].IpString)
	assert.Equal(t, "10.0.0.3", mesh[1].IpString)
}

func TestRefreshMeshIfDue(t *testing.T) {
	ts := newTestSentinel(t, 1)
	ts.transport.On("RequestMesh", mock.Anything).Return(nil, errTimeout)
	ts.state.refreshMeshIfDue(context.Background())
	ts.clock += meshRefreshInterval - 1
	ts.state.refreshMeshIfDue(context.Background())
	ts.transport.AssertNumberOfCalls(t, "RequestMesh", 1)
}

func TestStartWithoutVerifiers(t *testing.T) {
	ts := newTestSentinel(t)
	require.NoError(t, ts.state.Initialize())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, ts.state.Start(ctx))
	report := ts.state.GetStatusReport().(Report)
	assert.Equal(t, "no", report.ProtectingVerifiers)
	assert.Equal(t, 0, report.ManagedVerifiers)
}

func TestStatusReport(t *testing.T) {
	ts := newTestSentinel(t, 1, 2)
	ts.importAt(t, 10)
	ts.clock = 20000
	ts.state.updateStatusReport()
	report := ts.state.GetStatusReport().(Report)
	assert.Equal(t, "yes", report.ProtectingVerifiers)
	assert.Equal(t, int64(10), report.FrozenEdge)
	assert.Equal(t, 3, report.CycleLength)
	assert.Equal(t, "standard", report.Mode)
	assert.Equal(t, int64(-1), report.LowestScore)

	ts.clock = 8000 + protectionUncertainAge + 1
	ts.state.updateStatusReport()
	assert.Equal(t, "uncertain", ts.state.GetStatusReport().(Report).ProtectingVerifiers)
}
