/*
The block authority holds the sentinel's view of the chain: the frozen edge block, its balance list and the cycle at
that height. It is the ultimate instance that decides whether a block extends the frozen edge.

There are two ways to move the frozen edge: FreezeBlock extends the chain by one verified block, TrustedImport
installs a block from a shadowed verifier without any continuity checks (bootstrap only).

Nothing is persisted, every restart begins with an empty chain.
*/
package block_authority

import (
	"bytes"
	"sync"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/cycle_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/pkg/errors"
)

// Block hashes kept for transaction signature checks.
const retainedBlockHashes = 1000

var (
	ErrNoFrozenEdge     = errors.New("no frozen edge block")
	ErrDiscontinuous    = errors.New("block does not extend the frozen edge")
	ErrInvalidSignature = errors.New("invalid block signature")
)

type state struct {
	ctxt                   *interfaces.Context
	m                      sync.Mutex
	now                    func() int64
	frozenEdgeBlock        *blockchain_data.Block
	frozenEdgeBalanceList  *blockchain_data.BalanceList // nil if unknown
	cycle                  *cycle_authority.Cycle
	blockHashes            map[int64][]byte
	blockSpeedTracker      int64 // tracks block speed (important during catch-up)
	lastSpeedTrackingBlock int64
}

// Extend the chain by one block. If no balance list is given, it is derived from the frozen edge balance list. A
// balance list that does not match the block's balance list hash is dropped, the block is frozen anyway since the
// verifier signature and continuity hold.
func (s *state) FreezeBlock(block *blockchain_data.Block, balanceList *blockchain_data.BalanceList) error {
	s.m.Lock()
	if s.frozenEdgeBlock == nil {
		s.m.Unlock()
		return ErrNoFrozenEdge
	}
	if block.Height != s.frozenEdgeBlock.Height+1 || !bytes.Equal(block.PreviousBlockHash, s.frozenEdgeBlock.Hash) {
		height := s.frozenEdgeBlock.Height
		s.m.Unlock()
		return errors.Wrapf(ErrDiscontinuous, "block %d on frozen edge %d", block.Height, height)
	}
	if !block.SignatureIsValid() {
		s.m.Unlock()
		return errors.Wrapf(ErrInvalidSignature, "block %d", block.Height)
	}
	if balanceList == nil && s.frozenEdgeBalanceList != nil {
		var err error
		balanceList, err = balance_authority.UpdateBalanceListForNextBlock(s.cycle, s.frozenEdgeBlock.VerifierIdentifier, s.frozenEdgeBalanceList, block)
		if err != nil {
			logging.ErrorLog.Printf("Could not derive balance list for height %d: %s.", block.Height, err.Error())
		}
	}
	if balanceList != nil && (balanceList.BlockHeight != block.Height || !bytes.Equal(balanceList.GetHash(), block.BalanceListHash)) {
		logging.TraceLog.Printf("Balance list hash mismatch at height %d, dropping balance list.", block.Height)
		balanceList = nil
	}
	s.cycle.Advance(block.VerifierIdentifier)
	s.setFrozenEdge(block, balanceList)
	s.m.Unlock()
	s.ctxt.Router.Publish(router.TopicFrozenEdge, block)
	return nil
}

// Install a block from a trusted source. The cycle is ordered oldest first, as it was at the block's height.
func (s *state) TrustedImport(block *blockchain_data.Block, balanceList *blockchain_data.BalanceList, cycle [][]byte) error {
	if balanceList == nil || balanceList.BlockHeight != block.Height || !bytes.Equal(balanceList.GetHash(), block.BalanceListHash) {
		return errors.Errorf("no matching balance list for trusted import at height %d", block.Height)
	}
	s.m.Lock()
	if s.frozenEdgeBlock != nil && block.Height < s.frozenEdgeBlock.Height {
		height := s.frozenEdgeBlock.Height
		s.m.Unlock()
		return errors.Errorf("trusted import at height %d is below the frozen edge %d", block.Height, height)
	}
	// earlier hashes don't belong to this chain necessarily
	s.blockHashes = make(map[int64][]byte)
	s.cycle = cycle_authority.NewCycle(cycle)
	s.setFrozenEdge(block, balanceList)
	s.m.Unlock()
	logging.InfoLog.Printf("Imported trusted block at height %d, cycle length %d.", block.Height, len(cycle))
	s.ctxt.Router.Publish(router.TopicFrozenEdge, block)
	return nil
}

// Caller holds the lock.
func (s *state) setFrozenEdge(block *blockchain_data.Block, balanceList *blockchain_data.BalanceList) {
	s.frozenEdgeBlock = block
	s.frozenEdgeBalanceList = balanceList
	s.blockHashes[block.Height] = block.Hash
	delete(s.blockHashes, block.Height-retainedBlockHashes)
	s.printFrozenEdgeStats(block)
}

// Output frozen edge plus block processing speed stats.
func (s *state) printFrozenEdgeStats(block *blockchain_data.Block) {
	now := s.now()
	milliseconds := now - s.blockSpeedTracker
	blockCount := block.Height - s.lastSpeedTrackingBlock
	tracking := s.blockSpeedTracker > 0
	s.blockSpeedTracker = now
	s.lastSpeedTrackingBlock = block.Height
	if tracking && blockCount > 0 {
		logging.InfoLog.Printf("New frozen edge height reached: %d, milliseconds per block: %d.", block.Height, milliseconds/blockCount)
	} else {
		logging.InfoLog.Printf("New frozen edge height reached: %d.", block.Height)
	}
}

// -1 while the chain is empty.
func (s *state) FrozenEdgeHeight() int64 {
	s.m.Lock()
	defer s.m.Unlock()
	if s.frozenEdgeBlock == nil {
		return -1
	}
	return s.frozenEdgeBlock.Height
}

func (s *state) FrozenEdgeBlock() *blockchain_data.Block {
	s.m.Lock()
	defer s.m.Unlock()
	return s.frozenEdgeBlock
}

func (s *state) FrozenEdgeBalanceList() *blockchain_data.BalanceList {
	s.m.Lock()
	defer s.m.Unlock()
	return s.frozenEdgeBalanceList
}

// The open edge follows the clock: one block per block duration after the frozen edge started.
func (s *state) OpenEdgeHeight(now int64) int64 {
	s.m.Lock()
	defer s.m.Unlock()
	if s.frozenEdgeBlock == nil {
		return -1
	}
	openEdge := s.frozenEdgeBlock.Height + (now-s.frozenEdgeBlock.StartTimestamp)/configuration.BlockDuration - 1
	if openEdge < s.frozenEdgeBlock.Height {
		return s.frozenEdgeBlock.Height
	}
	return openEdge
}

func (s *state) VerifierInCurrentCycle(id []byte) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.cycle.VerifierInCurrentCycle(id)
}

func (s *state) CycleLength() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.cycle.CycleLength()
}

func (s *state) BlockHash(height int64) []byte {
	s.m.Lock()
	defer s.m.Unlock()
	return s.blockHashes[height]
}

// Create a block authority with an empty chain.
func NewBlockAuthority(ctxt *interfaces.Context) interfaces.ChainStateInterface {
	return newState(ctxt, utilities.Now)
}

func newState(ctxt *interfaces.Context, now func() int64) *state {
	return &state{
		ctxt:        ctxt,
		now:         now,
		cycle:       cycle_authority.NewCycle(nil),
		blockHashes: make(map[int64][]byte),
	}
}
