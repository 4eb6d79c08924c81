package sentinel_manager

import (
	"bytes"
	"context"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/block_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
)

const (
	// No block from the mesh for this long, and we step in.
	stallWindow = 30000 // milliseconds
	// Extra wait per chain score point before a block may be sent.
	scoreDelay = 20000
	// The marker transaction sends one micronyzo to the all-zero account.
	markerTransactionAmount = 1
	markerTransactionOffset = 1000
)

// The blocks prepared for one height, at most one per managed verifier.
type candidateBlockSet struct {
	height      int64
	blocks      []*blockchain_data.Block
	transmitted bool
}

// Earliest time a block with the given score may be sent on top of frozenEdge.
func minimumVoteTimestamp(frozenEdge *blockchain_data.Block, score int64) int64 {
	return frozenEdge.VerificationTimestamp + configuration.BlockDuration + configuration.MinimumVerificationInterval + score*scoreDelay
}

// Called every tick. Builds blocks for the managed verifiers once the mesh stalls and sends the best one, once per
// height, when its minimum vote timestamp has passed.
func (s *state) maybeProduceAndSend(ctx context.Context) {
	frozenEdge := s.ctxt.ChainState.FrozenEdgeBlock()
	if frozenEdge == nil {
		return
	}
	height := frozenEdge.Height + 1
	if s.candidates.height != height {
		s.candidates = candidateBlockSet{height: height}
	}
	now := s.now()
	if now-s.sync.LastBlockReceived < stallWindow {
		return
	}
	if len(s.candidates.blocks) == 0 {
		s.buildCandidates(frozenEdge, now)
		s.candidates.transmitted = false
	}
	if s.candidates.transmitted {
		return
	}
	block, score := s.lowestScoredCandidate(frozenEdge.Height)
	if block == nil {
		return
	}
	s.lowestScore = score
	if now < minimumVoteTimestamp(frozenEdge, score) {
		return
	}
	verifier := s.findManagedVerifierById(block.VerifierIdentifier)
	message := messages.NewLocal(messages.TypeNewBlock, message_content.NewNewBlock(block), verifier.Identity)
	mesh := s.combinedMesh()
	s.ctxt.Transport.Broadcast(message, mesh)
	s.candidates.transmitted = true
	s.lastTransmissionHeight = block.Height
	s.metrics.BlocksTransmitted.Add(1)
	logging.InfoLog.Printf("Sent block for %s with hash %x at height %d, score %d, to %d peers.", verifier.Identity.Nickname, block.Hash, block.Height, score, len(mesh))
	s.ctxt.Router.Publish(router.TopicBlockTransmitted, &router.BlockTransmission{
		Height:             block.Height,
		BlockHash:          block.Hash,
		VerifierIdentifier: block.VerifierIdentifier,
		Score:              score,
		Recipients:         len(mesh),
		Timestamp:          now,
	})
}

func (s *state) buildCandidates(frozenEdge *blockchain_data.Block, now int64) {
	balanceList := s.ctxt.ChainState.FrozenEdgeBalanceList()
	if balanceList == nil {
		logging.TraceLog.Printf("No balance list for height %d, cannot build blocks yet.", frozenEdge.Height)
		return
	}
	for _, verifier := range s.verifiers {
		// a verifier never follows itself
		if bytes.Equal(frozenEdge.VerifierIdentifier, verifier.Identity.PublicKey) {
			continue
		}
		block := s.createNextBlock(frozenEdge, balanceList, verifier, now)
		if block != nil {
			s.candidates.blocks = append(s.candidates.blocks, block)
		}
	}
	logging.TraceLog.Printf("Built %d blocks for height %d.", len(s.candidates.blocks), frozenEdge.Height+1)
}

// Lowest scored candidate, nil if none can be scored. Ties go to the first candidate.
func (s *state) lowestScoredCandidate(frozenEdgeHeight int64) (*blockchain_data.Block, int64) {
	var lowestScoredBlock *blockchain_data.Block
	var lowestScore int64 = block_authority.MaxChainScore
	for _, block := range s.candidates.blocks {
		score := s.ctxt.ChainState.ChainScore(block, frozenEdgeHeight)
		if score < block_authority.MaxChainScore-1 && score < lowestScore {
			lowestScore = score
			lowestScoredBlock = block
		}
	}
	return lowestScoredBlock, lowestScore
}

// Sentinel style block creation on top of previousBlock, signed by the managed verifier.
func (s *state) createNextBlock(previousBlock *blockchain_data.Block, balanceList *blockchain_data.BalanceList, verifier *networking.ManagedVerifier, now int64) *blockchain_data.Block {
	block := &blockchain_data.Block{
		BlockchainVersion:     previousBlock.BlockchainVersion,
		Height:                previousBlock.Height + 1,
		PreviousBlockHash:     previousBlock.Hash,
		StartTimestamp:        previousBlock.StartTimestamp + configuration.BlockDuration,
		VerificationTimestamp: now,
		VerifierIdentifier:    verifier.Identity.PublicKey,
	}
	transactions := s.ctxt.TransactionManager.TransactionsForHeight(block.Height)
	if seedTransaction := s.ctxt.TransactionManager.SeedTransactionForBlock(block.Height); seedTransaction != nil {
		transactions = append(transactions, seedTransaction)
	}
	if verifier.SentinelTransactionEnabled {
		transactions = append(transactions, markerTransaction(previousBlock, block, verifier))
	}
	block.Transactions = s.ctxt.TransactionManager.ApprovedTransactionsForBlock(transactions, previousBlock, balanceList)
	nextBalanceList, err := balance_authority.UpdateBalanceListForNextBlock(s.ctxt.ChainState, previousBlock.VerifierIdentifier, balanceList, block)
	if err != nil {
		logging.WarningLog.Printf("Cannot build block %d for %s: %s.", block.Height, verifier.Identity.Nickname, err.Error())
		return nil
	}
	block.BalanceListHash = nextBalanceList.GetHash()
	block.Sign(verifier.Identity)
	return block
}

// Marks a block as produced by the sentinel, for whoever audits the chain.
func markerTransaction(previousBlock, block *blockchain_data.Block, verifier *networking.ManagedVerifier) *blockchain_data.Transaction {
	senderData := []byte("sentinel block " + verifier.Identity.ShortId)
	return blockchain_data.NewStandardTransaction(block.StartTimestamp+markerTransactionOffset, markerTransactionAmount,
		make([]byte, 32), previousBlock.Height, previousBlock.Hash, senderData, verifier.Identity)
}

func (s *state) findManagedVerifierById(id []byte) *networking.ManagedVerifier {
	for _, verifier := range s.verifiers {
		if bytes.Equal(id, verifier.Identity.PublicKey) {
			return verifier
		}
	}
	return nil
}
