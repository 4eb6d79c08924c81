/*
The interfaces presented here summarize the interaction of the sentinel with its collaborators: the chain state, the
transaction pool and the network.
*/
package interfaces

import (
	"context"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
)

// Long running component.
type Component interface {
	// Initialize component
	Initialize() error
	// Start component/enter main loop, returns when ctx ends
	Start(ctx context.Context) error
}

type ChainStateInterface interface {
	// Extend the chain by one block. Continuity and the verifier signature are checked, the balance list is derived
	// when not given.
	FreezeBlock(block *blockchain_data.Block, balanceList *blockchain_data.BalanceList) error
	// Install a block from a trusted source as the new frozen edge, without continuity checks.
	TrustedImport(block *blockchain_data.Block, balanceList *blockchain_data.BalanceList, cycle [][]byte) error
	FrozenEdgeHeight() int64
	FrozenEdgeBlock() *blockchain_data.Block
	// Balance list at the frozen edge, nil if unknown.
	FrozenEdgeBalanceList() *blockchain_data.BalanceList
	// Highest height in contention at the given time (milliseconds).
	OpenEdgeHeight(now int64) int64
	VerifierInCurrentCycle(id []byte) bool
	CycleLength() int
	// Hash of a frozen block at the given height, nil if not retained.
	BlockHash(height int64) []byte
	// Score the given block on top of the block at zeroBlockHeight, lower is better.
	ChainScore(block *blockchain_data.Block, zeroBlockHeight int64) int64
}

type TransactionManagerInterface interface {
	Component
	// Put a signed transaction into the pending pool.
	AddTransaction(transaction *blockchain_data.Transaction) error
	// Pending transactions scheduled for the given height.
	TransactionsForHeight(height int64) []*blockchain_data.Transaction
	SeedTransactionForBlock(height int64) *blockchain_data.Transaction
	// Returns only the transactions that may go into the block following previousBlock, balanceList belongs to
	// previousBlock.
	ApprovedTransactionsForBlock(transactions []*blockchain_data.Transaction, previousBlock *blockchain_data.Block, balanceList *blockchain_data.BalanceList) []*blockchain_data.Transaction
}

type TransportInterface interface {
	RequestFrozenEdgeView(ctx context.Context, verifier *networking.ManagedVerifier) (*networking.FrozenEdgeView, error)
	RequestMesh(ctx context.Context, verifier *networking.ManagedVerifier) ([]*node.Node, error)
	RequestBlocks(ctx context.Context, verifier *networking.ManagedVerifier, startHeight, endHeight int64, includeBalanceList bool) ([]*blockchain_data.Block, *blockchain_data.BalanceList, error)
	// Fire and forget.
	Broadcast(m *messages.Message, peers []*node.Node)
}

type SentinelInterface interface {
	Component
	// Get a status report for this component.
	GetStatusReport() interface{}
}
