package sentinel_manager

import (
	"context"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/pkg/errors"
)

func (s *state) syncIfDue(ctx context.Context) {
	now := s.now()
	if now-s.sync.LastSyncAttempt < s.sync.syncInterval() {
		return
	}
	s.sync.LastSyncAttempt = now
	s.syncTick(ctx)
}

// Request the blocks after the frozen edge from the next managed verifier and freeze them.
func (s *state) syncTick(ctx context.Context) {
	frozenEdgeHeight := s.ctxt.ChainState.FrozenEdgeHeight()
	if frozenEdgeHeight < 0 {
		return
	}
	verifier := s.verifiers[nextIndex(&s.sync.syncIndex, len(s.verifiers))]
	startHeight, endHeight := s.sync.requestRange(frozenEdgeHeight)
	includeBalanceList := s.ctxt.ChainState.FrozenEdgeBalanceList() == nil
	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	blocks, balanceList, err := s.ctxt.Transport.RequestBlocks(requestCtx, verifier, startHeight, endHeight, includeBalanceList)
	cancel()
	if err == nil {
		err = s.freezeBlocks(blocks, balanceList, startHeight, endHeight)
	}
	if err != nil {
		logging.TraceLog.Printf("Sync with %s failed: %s.", verifier.Identity.Nickname, err.Error())
		s.sync.recordFailure()
		s.metrics.BlockFetchFailures.Add(1)
		s.updateModeGauge()
		return
	}
	s.sync.LastBlockReceived = s.now()
	frozenEdgeHeight = s.ctxt.ChainState.FrozenEdgeHeight()
	s.sync.recordSuccess(frozenEdgeHeight, s.ctxt.ChainState.OpenEdgeHeight(s.now()))
	s.metrics.BlockFetches.Add(1)
	s.metrics.FrozenEdgeHeight.Set(float64(frozenEdgeHeight))
	s.updateModeGauge()
}

// Only a complete, contiguous batch counts. A balance list belongs to the first block.
func (s *state) freezeBlocks(blocks []*blockchain_data.Block, balanceList *blockchain_data.BalanceList, startHeight, endHeight int64) error {
	if int64(len(blocks)) != endHeight-startHeight+1 {
		return errors.Errorf("got %d blocks for range %d-%d", len(blocks), startHeight, endHeight)
	}
	for i, block := range blocks {
		if block.Height != startHeight+int64(i) {
			return errors.Errorf("got block %d at position %d of range %d-%d", block.Height, i, startHeight, endHeight)
		}
	}
	for i, block := range blocks {
		var blockBalanceList *blockchain_data.BalanceList
		if i == 0 && balanceList != nil && balanceList.BlockHeight == block.Height {
			blockBalanceList = balanceList
		}
		if err := s.ctxt.ChainState.FreezeBlock(block, blockBalanceList); err != nil {
			return errors.Wrapf(err, "cannot freeze block %d", block.Height)
		}
	}
	return nil
}

func (s *state) updateModeGauge() {
	if s.sync.Mode == ModeFastFetch {
		s.metrics.FastFetch.Set(1)
	} else {
		s.metrics.FastFetch.Set(0)
	}
}
