/*
Manage transactions: the pool of pending transactions, the pre-signed seed transactions and the approval of
transactions for block assembly.
*/
package transaction_manager

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/balance_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/pkg/errors"
)

type state struct {
	ctxt                         *interfaces.Context
	ctx                          context.Context // bounds seed transaction downloads
	seedTransactionSource        string
	seedTransactionDirectory     string
	pendingLock                  sync.Mutex
	pending                      map[string]*blockchain_data.Transaction // by signature
	seedTransactionCacheLock     sync.Mutex
	seedTransactionCache         map[int64]*blockchain_data.Transaction
	highestCachedSeedTransaction int64
	lastSeedTransactionCache     int64
}

// AddTransaction puts a signed transaction into the pending pool. The sentinel runs no inbound listener, so the
// pool is filled only by whoever embeds this manager. Without callers, candidates carry seed and marker
// transactions only.
func (s *state) AddTransaction(transaction *blockchain_data.Transaction) error {
	if transaction.Type != blockchain_data.TransactionTypeStandard && transaction.Type != blockchain_data.TransactionTypeSeed {
		return errors.Errorf("transaction type %d is not accepted into the pool", transaction.Type)
	}
	if !s.restorePreviousBlockHash(transaction) || !transaction.SignatureIsValid() {
		return errors.New("transaction signature cannot be verified")
	}
	s.pendingLock.Lock()
	s.pending[string(transaction.Signature)] = transaction
	s.pendingLock.Unlock()
	return nil
}

// Pending transactions with timestamps inside the given block's time window, oldest first.
func (s *state) TransactionsForHeight(height int64) []*blockchain_data.Transaction {
	startTimestamp, ok := s.startTimestamp(height)
	if !ok {
		return nil
	}
	var transactions []*blockchain_data.Transaction
	s.pendingLock.Lock()
	for _, transaction := range s.pending {
		if transaction.Timestamp >= startTimestamp && transaction.Timestamp < startTimestamp+configuration.BlockDuration {
			transactions = append(transactions, transaction)
		}
	}
	s.pendingLock.Unlock()
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp < transactions[j].Timestamp
	})
	return transactions
}

// Returns only the transactions that may go into the block following previousBlock: signature, time window,
// duplicate, balance and spam checks. balanceList belongs to previousBlock, without it nothing is approved.
func (s *state) ApprovedTransactionsForBlock(transactions []*blockchain_data.Transaction, previousBlock *blockchain_data.Block, balanceList *blockchain_data.BalanceList) []*blockchain_data.Transaction {
	if previousBlock == nil || balanceList == nil {
		return nil
	}
	startTimestamp := previousBlock.StartTimestamp + configuration.BlockDuration
	endTimestamp := startTimestamp + configuration.BlockDuration
	balances := balanceList.Copy()
	approved := make([]*blockchain_data.Transaction, 0, len(transactions))
	observedSignatures := make(map[string]struct{})
	for _, transaction := range transactions {
		if transaction.Type == blockchain_data.TransactionTypeCoinGeneration {
			continue
		}
		if transaction.Timestamp < startTimestamp || transaction.Timestamp >= endTimestamp {
			logging.TraceLog.Printf("Transaction outside of block window at height %d.", previousBlock.Height+1)
			continue
		}
		if _, ok := observedSignatures[string(transaction.Signature)]; ok {
			continue
		}
		if !s.restorePreviousBlockHash(transaction) || !transaction.SignatureIsValid() {
			logging.TraceLog.Printf("Invalid transaction signature at height %d.", previousBlock.Height+1)
			continue
		}
		if transaction.Type == blockchain_data.TransactionTypeStandard || transaction.Type == blockchain_data.TransactionTypeSeed {
			if transaction.Amount < 1 || balances.GetBalance(transaction.SenderId) < transaction.Amount {
				continue
			}
			if balance_authority.TransactionSpamsBalanceList(balanceList, transaction, append(approved, transaction)) {
				continue
			}
			balances.AdjustBalance(transaction.SenderId, -transaction.Amount)
		}
		observedSignatures[string(transaction.Signature)] = struct{}{}
		approved = append(approved, transaction)
	}
	return approved
}

// Sender transactions are signed over the hash of the block at their previous hash height, which is not transmitted.
func (s *state) restorePreviousBlockHash(transaction *blockchain_data.Transaction) bool {
	if transaction.Type == blockchain_data.TransactionTypeCycleSignature || len(transaction.PreviousBlockHash) > 0 {
		return true
	}
	if transaction.PreviousHashHeight == 0 {
		transaction.PreviousBlockHash = configuration.GenesisBlockHash
		return true
	}
	hash := s.ctxt.ChainState.BlockHash(transaction.PreviousHashHeight)
	if hash == nil {
		return false
	}
	transaction.PreviousBlockHash = hash
	return true
}

// Start timestamp of the block at the given height, based on the frozen edge.
func (s *state) startTimestamp(height int64) (int64, bool) {
	frozenEdge := s.ctxt.ChainState.FrozenEdgeBlock()
	if frozenEdge == nil {
		return 0, false
	}
	return frozenEdge.StartTimestamp + (height-frozenEdge.Height)*configuration.BlockDuration, true
}

// Drops pending transactions that can no longer make it into a block and refreshes the seed transaction cache.
func (s *state) onFrozenEdge(block *blockchain_data.Block) {
	nextStart := block.StartTimestamp + configuration.BlockDuration
	s.pendingLock.Lock()
	for signature, transaction := range s.pending {
		if transaction.Timestamp < nextStart {
			delete(s.pending, signature)
		}
	}
	s.pendingLock.Unlock()
	// check seed transactions after bootstrap or a jump, then again every 5 blocks (35 seconds)
	if block.Height-s.lastSeedTransactionCache > 4 || block.Height < s.lastSeedTransactionCache {
		s.lastSeedTransactionCache = block.Height
		s.cacheSeedTransactions(block.Height)
	}
}

// Main loop: handles frozen edge events until ctx ends.
func (s *state) Start(ctx context.Context) error {
	s.ctx = ctx
	s.ctxt.Router.SubscribeAsync(router.TopicFrozenEdge, s.onFrozenEdge)
	logging.InfoLog.Print("Starting main loop of transaction manager.")
	<-ctx.Done()
	s.ctxt.Router.Unsubscribe(router.TopicFrozenEdge, s.onFrozenEdge)
	logging.InfoLog.Print("Main loop of transaction manager exited gracefully.")
	return nil
}

// Initialization function
func (s *state) Initialize() error {
	// make sure the data directory for seed transactions is there
	return errors.Wrap(os.MkdirAll(s.seedTransactionDirectory, os.ModePerm), "cannot create seed transaction directory")
}

// Create a transaction manager, seed transaction files are downloaded from source into directory.
func NewTransactionManager(ctxt *interfaces.Context, source, directory string) interfaces.TransactionManagerInterface {
	return &state{
		ctxt:                     ctxt,
		ctx:                      context.Background(),
		seedTransactionSource:    source,
		seedTransactionDirectory: directory,
		pending:                  make(map[string]*blockchain_data.Transaction),
		seedTransactionCache:     make(map[int64]*blockchain_data.Transaction),
	}
}
