package block_authority

import (
	"bytes"
	"testing"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/cycle_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/stretchr/testify/require"
)

const testNow = 100000

type testChain struct {
	state       *state
	verifiers   []*identity.Identity
	edge        *blockchain_data.Block
	balanceList *blockchain_data.BalanceList
	frozen      []int64 // heights published on the router
}

func newIdentity(t *testing.T, seed byte) *identity.Identity {
	id, err := identity.FromPrivateKey(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return id
}

// A chain imported at height 10, produced by verifier 0; the cycle is 1, 2, 0.
func newTestChain(t *testing.T) *testChain {
	c := &testChain{}
	ctxt := &interfaces.Context{Router: router.New()}
	ctxt.Router.Subscribe(router.TopicFrozenEdge, func(block *blockchain_data.Block) {
		c.frozen = append(c.frozen, block.Height)
	})
	c.state = newState(ctxt, func() int64 { return testNow })
	for i := byte(1); i <= 3; i++ {
		c.verifiers = append(c.verifiers, newIdentity(t, i))
	}
	c.balanceList = &blockchain_data.BalanceList{BlockchainVersion: 2, BlockHeight: 10}
	for i := 0; i < blockchain_data.MaximumPreviousVerifiers; i++ {
		c.balanceList.PreviousVerifiers = append(c.balanceList.PreviousVerifiers, bytes.Repeat([]byte{byte(50 + i)}, 32))
	}
	c.balanceList.Items = []blockchain_data.BalanceListItem{{Identifier: bytes.Repeat([]byte{9}, 32), Balance: configuration.MicronyzosInSystem, BlocksUntilFee: 200}}
	c.edge = &blockchain_data.Block{
		BlockchainVersion:     2,
		Height:                10,
		PreviousBlockHash:     bytes.Repeat([]byte{8}, 32),
		StartTimestamp:        1000,
		VerificationTimestamp: 8000,
		BalanceListHash:       c.balanceList.GetHash(),
	}
	c.edge.Sign(c.verifiers[0])
	cycle := [][]byte{c.verifiers[1].PublicKey, c.verifiers[2].PublicKey, c.verifiers[0].PublicKey}
	require.NoError(t, c.state.TrustedImport(c.edge, c.balanceList, cycle))
	return c
}

// The next block on top of the current edge, with the correct balance list hash.
func (c *testChain) next(t *testing.T, verifier *identity.Identity) (*blockchain_data.Block, *blockchain_data.BalanceList) {
	block := &blockchain_data.Block{
		BlockchainVersion:     c.edge.BlockchainVersion,
		Height:                c.edge.Height + 1,
		PreviousBlockHash:     c.edge.Hash,
		StartTimestamp:        c.edge.StartTimestamp + configuration.BlockDuration,
		VerificationTimestamp: c.edge.VerificationTimestamp + configuration.BlockDuration,
		VerifierIdentifier:    verifier.PublicKey,
	}
	balanceList, err := balance_authority.UpdateBalanceListForNextBlock(cycle_authority.NewCycle(nil), c.edge.VerifierIdentifier, c.balanceList, block)
	require.NoError(t, err)
	block.BalanceListHash = balanceList.GetHash()
	block.Sign(verifier)
	return block, balanceList
}

func TestTrustedImport(t *testing.T) {
	c := newTestChain(t)
	require.Equal(t, int64(10), c.state.FrozenEdgeHeight())
	require.Equal(t, 3, c.state.CycleLength())
	require.Equal(t, c.edge.Hash, c.state.BlockHash(10))
	require.Equal(t, []int64{10}, c.frozen)

	// the balance list has to match the block
	block, _ := c.next(t, c.verifiers[1])
	require.Error(t, c.state.TrustedImport(block, c.balanceList, nil))
	require.Error(t, c.state.TrustedImport(block, nil, nil))
	require.Equal(t, int64(10), c.state.FrozenEdgeHeight())
}

func TestFreezeBlockDerivesBalanceList(t *testing.T) {
	c := newTestChain(t)
	block, expected := c.next(t, c.verifiers[1])
	require.NoError(t, c.state.FreezeBlock(block, nil))

	require.Equal(t, int64(11), c.state.FrozenEdgeHeight())
	require.Same(t, block, c.state.FrozenEdgeBlock())
	require.NotNil(t, c.state.FrozenEdgeBalanceList())
	require.Equal(t, expected.GetHash(), c.state.FrozenEdgeBalanceList().GetHash())
	require.Equal(t, []int64{10, 11}, c.frozen)
	// verifier 1 moved to the end, verifier 2 is next
	require.Equal(t, []byte(c.verifiers[1].PublicKey), c.state.cycle.Newest())
	require.Equal(t, 0, c.state.cycle.Index(c.verifiers[2].PublicKey))
}

func TestFreezeBlockRejectsBadBlocks(t *testing.T) {
	c := newTestChain(t)
	block, _ := c.next(t, c.verifiers[1])

	wrongHeight := *block
	wrongHeight.Height = 12
	require.ErrorIs(t, c.state.FreezeBlock(&wrongHeight, nil), ErrDiscontinuous)

	wrongPrevious := *block
	wrongPrevious.PreviousBlockHash = bytes.Repeat([]byte{1}, 32)
	require.ErrorIs(t, c.state.FreezeBlock(&wrongPrevious, nil), ErrDiscontinuous)

	tampered := *block
	tampered.VerificationTimestamp++
	require.ErrorIs(t, c.state.FreezeBlock(&tampered, nil), ErrInvalidSignature)

	require.ErrorIs(t, newState(&interfaces.Context{Router: router.New()}, func() int64 { return testNow }).FreezeBlock(block, nil), ErrNoFrozenEdge)
	require.Equal(t, int64(10), c.state.FrozenEdgeHeight())
}

func TestBalanceListMismatchIsDropped(t *testing.T) {
	c := newTestChain(t)
	block, _ := c.next(t, c.verifiers[1])
	block.BalanceListHash = bytes.Repeat([]byte{3}, 32)
	block.Sign(c.verifiers[1])
	require.NoError(t, c.state.FreezeBlock(block, nil))
	require.Equal(t, int64(11), c.state.FrozenEdgeHeight())
	require.Nil(t, c.state.FrozenEdgeBalanceList())
}

func TestChainScore(t *testing.T) {
	c := newTestChain(t)
	score := func(verifier *identity.Identity) int64 {
		block, _ := c.next(t, verifier)
		return c.state.ChainScore(block, 10)
	}
	require.Equal(t, int64(0), score(c.verifiers[1]))
	require.Equal(t, int64(4), score(c.verifiers[2]))
	require.Equal(t, int64(MaxChainScore), score(c.verifiers[0]))
	require.Equal(t, int64(newVerifierScore), score(newIdentity(t, 4)))

	block, _ := c.next(t, c.verifiers[1])
	require.Equal(t, int64(MaxChainScore-1), c.state.ChainScore(block, 9))

	tooFast := *block
	tooFast.VerificationTimestamp = c.edge.VerificationTimestamp + 1000
	require.Equal(t, int64(MaxChainScore), c.state.ChainScore(&tooFast, 10))
}

func TestOpenEdgeHeight(t *testing.T) {
	c := newTestChain(t)
	require.Equal(t, int64(14), c.state.OpenEdgeHeight(1000+5*configuration.BlockDuration))
	require.Equal(t, int64(10), c.state.OpenEdgeHeight(1000))
	require.Equal(t, int64(-1), newState(&interfaces.Context{}, func() int64 { return 0 }).OpenEdgeHeight(testNow))
}
