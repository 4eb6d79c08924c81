package block_authority

import (
	"bytes"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
)

const (
	MaxChainScore = 9223372036854775807
	// Penalty for a verifier joining the cycle.
	newVerifierScore = 10000
)

// Scores the given block on top of the frozen edge at zeroBlockHeight. The higher the score, the worse we consider
// this version of the chain. 0: it is this verifier's turn, MaxChainScore: an invalid block, MaxChainScore - 1: we
// lack the information to score the block.
func (s *state) ChainScore(block *blockchain_data.Block, zeroBlockHeight int64) int64 {
	s.m.Lock()
	defer s.m.Unlock()
	previousBlock := s.frozenEdgeBlock
	if block == nil || previousBlock == nil || previousBlock.Height != zeroBlockHeight || block.Height != zeroBlockHeight+1 ||
		!bytes.Equal(block.PreviousBlockHash, previousBlock.Hash) || s.cycle.CycleLength() == 0 {
		return MaxChainScore - 1
	}
	// a verifier never follows itself
	if bytes.Equal(block.VerifierIdentifier, previousBlock.VerifierIdentifier) {
		return MaxChainScore
	}
	// Account for the blockchain version. If this is a version downgrade, a skip in versions, or higher than the
	// maximum allowed version, the block is invalid.
	if block.BlockchainVersion < previousBlock.BlockchainVersion ||
		block.BlockchainVersion > previousBlock.BlockchainVersion+1 ||
		block.BlockchainVersion > configuration.MaximumBlockchainVersion {
		return MaxChainScore
	}
	// Check the verification timestamp interval, and that it is not unreasonably far into the future.
	if previousBlock.VerificationTimestamp > block.VerificationTimestamp-configuration.MinimumVerificationInterval ||
		block.VerificationTimestamp > s.now()+5000 {
		return MaxChainScore
	}

	var score int64
	if index := s.cycle.Index(block.VerifierIdentifier); index < 0 {
		score = newVerifierScore
	} else {
		// every verifier passed over shortens the cycle
		score = int64(index) * 4
	}
	// Penalize for each balance-list spam transaction.
	if s.frozenEdgeBalanceList != nil {
		score += int64(balance_authority.NumberOfTransactionsSpammingBalanceList(s.frozenEdgeBalanceList, block.Transactions)) * 5
	}
	return score
}
