/*
Handles block to block balance list updates, which includes processing of V2 cycle transactions.
*/
package balance_authority

import (
	"bytes"
	"sort"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/pkg/errors"
)

// Cycle is the view of the current cycle needed to process v2 cycle transactions.
type Cycle interface {
	VerifierInCurrentCycle(id []byte) bool
	CycleLength() int
}

// ErrMicronyzosLost means a balance list update did not preserve the total amount of coins in the system.
var ErrMicronyzosLost = errors.New("micronyzos in system value incorrect")

// Update the <balanceList> from the block preceding <thisBlock> to contain the transactions from <thisBlock>.
// <previousVerifier> is the verifier for the previous block (used for reward distribution). The given balance list
// is not modified.
func UpdateBalanceListForNextBlock(cycle Cycle, previousVerifier []byte, balanceList *blockchain_data.BalanceList, thisBlock *blockchain_data.Block) (*blockchain_data.BalanceList, error) {
	if balanceList == nil {
		return nil, errors.Errorf("no balance list to derive height %d from", thisBlock.Height)
	}
	balanceList = balanceList.Copy()
	balanceList.BlockHeight = thisBlock.Height
	balanceList.BlockchainVersion = thisBlock.BlockchainVersion

	// maintain list of previous verifiers for reward distribution
	if previousVerifier != nil {
		balanceList.PreviousVerifiers = append(balanceList.PreviousVerifiers, previousVerifier)
		if len(balanceList.PreviousVerifiers) > blockchain_data.MaximumPreviousVerifiers {
			balanceList.PreviousVerifiers = balanceList.PreviousVerifiers[1:]
		}
	}

	var feesThisBlock, organicTransactionFees, transactionSumFromLockedAccounts int64
	for _, transaction := range thisBlock.Transactions {
		// In blockchain version 1, cycle transactions are processed here. In later versions, cycle
		// transactions are incorporated in the blockchain before being approved for transfer, so they are
		// handled separately.
		if transaction.Type == blockchain_data.TransactionTypeCycle && thisBlock.BlockchainVersion != 1 {
			continue
		}
		// the cycle account has an imaginary id with no known private key
		senderId := transaction.SenderId
		if transaction.Type == blockchain_data.TransactionTypeCycle {
			senderId = configuration.CycleAccount
		}
		if transaction.Type != blockchain_data.TransactionTypeCoinGeneration && transaction.Type != blockchain_data.TransactionTypeCycleSignature {
			balanceList.AdjustBalance(senderId, -transaction.Amount)
		}
		if transaction.Type != blockchain_data.TransactionTypeCycleSignature {
			balanceList.AdjustBalance(transaction.RecipientId, transaction.Amount-transaction.GetFee())
		}
		feesThisBlock += transaction.GetFee()
		if transaction.Type == blockchain_data.TransactionTypeStandard {
			organicTransactionFees += transaction.GetFee()
		}
		if transaction.IsSubjectToLock() {
			transactionSumFromLockedAccounts += transaction.Amount
		}
	}

	// Process cycle and cycle-signature transactions in version 2 or later.
	if thisBlock.BlockchainVersion >= 2 {
		processV2CycleTransactions(cycle, balanceList, thisBlock)
	}

	// send 1% of organic fees to cycle account
	if thisBlock.BlockchainVersion > 0 && organicTransactionFees >= 100 {
		cycleTransferAmount := organicTransactionFees / 100
		balanceList.AdjustBalance(configuration.CycleAccount, cycleTransferAmount)
		feesThisBlock -= cycleTransferAmount
	}

	// charge fees on accounts
	var periodicAccountFees int64
	for i := range balanceList.Items {
		item := &balanceList.Items[i]
		// In version 0 of the blockchain, charge μ1 every 500 blocks. In version 1 of the blockchain,
		// charge μ100 every 500 blocks for all accounts less than ∩1. Always reset the fee counter.
		if item.BlocksUntilFee > 0 || bytes.Equal(item.Identifier, configuration.TransferAccount) {
			continue
		}
		item.BlocksUntilFee = configuration.BlocksBetweenFee
		if thisBlock.BlockchainVersion == 0 && item.Balance > 0 {
			item.Balance -= 1
			periodicAccountFees++
		} else if (thisBlock.BlockchainVersion == 1 || thisBlock.BlockchainVersion > 2) && item.Balance < configuration.MicronyzoMultiplierRatio {
			fee := item.Balance
			if fee > 100 {
				fee = 100
			}
			item.Balance -= fee
			periodicAccountFees += fee
		}
	}

	// Split the transaction fees among the current and previous verifiers.
	totalFees := feesThisBlock + int64(balanceList.RolloverFees) + periodicAccountFees
	feesPerVerifier := totalFees / int64(len(balanceList.PreviousVerifiers)+1)
	if feesPerVerifier > 0 {
		balanceList.AdjustBalance(thisBlock.VerifierIdentifier, feesPerVerifier)
		for _, verifier := range balanceList.PreviousVerifiers {
			balanceList.AdjustBalance(verifier, feesPerVerifier)
		}
	}

	// Remove empty items, decrease blocks until fee.
	var micronyzosInSystem int64
	items := balanceList.Items[:0]
	for _, item := range balanceList.Items {
		if item.Balance > 0 {
			item.BlocksUntilFee--
			if item.BlocksUntilFee < 0 {
				item.BlocksUntilFee = 0
			}
			micronyzosInSystem += item.Balance
			items = append(items, item)
		}
	}
	balanceList.Items = items

	// make sure that we don't lose any micronyzos during the above fee distribution
	balanceList.RolloverFees = byte(totalFees % int64(len(balanceList.PreviousVerifiers)+1))
	micronyzosInSystem += int64(balanceList.RolloverFees)

	// unlocking process of locked dev accounts based on organic transaction fees
	if thisBlock.BlockchainVersion == 0 {
		balanceList.UnlockThreshold = 0
		balanceList.UnlockTransferSum = 0
	} else {
		balanceList.UnlockThreshold += organicTransactionFees
		balanceList.UnlockTransferSum += transactionSumFromLockedAccounts
	}

	if micronyzosInSystem != configuration.MicronyzosInSystem {
		return nil, errors.Wrapf(ErrMicronyzosLost, "height %d, have %d, should be %d", balanceList.BlockHeight, micronyzosInSystem, int64(configuration.MicronyzosInSystem))
	}
	balanceList.Normalize()
	return balanceList, nil
}

// Process V2 cycle transactions and signatures as part of the above UpdateBalanceListForNextBlock.
func processV2CycleTransactions(cycle Cycle, balanceList *blockchain_data.BalanceList, thisBlock *blockchain_data.Block) {
	// Add new cycle transactions to the pending transactions.
	for _, transaction := range thisBlock.Transactions {
		if transaction.Type != blockchain_data.TransactionTypeCycle {
			continue
		}
		// signatures get attached to the pending copy, the block's transaction stays untouched
		pendingTransaction := *transaction
		pendingTransaction.CycleSignatures = nil
		pendingTransaction.CycleSignatureTransactions = nil
		found := false
		for i, existing := range balanceList.PendingCycleTransactions {
			if bytes.Equal(existing.SenderId, transaction.SenderId) {
				balanceList.PendingCycleTransactions[i] = &pendingTransaction
				found = true
				break
			}
		}
		if !found {
			balanceList.PendingCycleTransactions = append(balanceList.PendingCycleTransactions, &pendingTransaction)
		}
	}

	// Remove any out-of-cycle transactions.
	pending := balanceList.PendingCycleTransactions[:0]
	for _, pendingTransaction := range balanceList.PendingCycleTransactions {
		if cycle.VerifierInCurrentCycle(pendingTransaction.SenderId) {
			pending = append(pending, pendingTransaction)
		}
	}
	balanceList.PendingCycleTransactions = pending

	// Add all cycle-signature transactions from this block to their parent transactions.
	for _, transaction := range thisBlock.Transactions {
		if transaction.Type != blockchain_data.TransactionTypeCycleSignature {
			continue
		}
		for _, pendingTransaction := range balanceList.PendingCycleTransactions {
			if !bytes.Equal(pendingTransaction.Signature, transaction.CycleTransactionSignature) {
				continue
			}
			found := false
			for i, signatureTransaction := range pendingTransaction.CycleSignatureTransactions {
				if bytes.Equal(signatureTransaction.SenderId, transaction.SenderId) {
					pendingTransaction.CycleSignatureTransactions[i] = transaction
					found = true
					break
				}
			}
			if !found {
				pendingTransaction.CycleSignatureTransactions = append(pendingTransaction.CycleSignatureTransactions, transaction)
			}
		}
	}

	// Remove all out-of-cycle signatures from pending cycle transactions.
	for _, pendingTransaction := range balanceList.PendingCycleTransactions {
		signatures := pendingTransaction.CycleSignatureTransactions[:0]
		for _, signatureTransaction := range pendingTransaction.CycleSignatureTransactions {
			if cycle.VerifierInCurrentCycle(signatureTransaction.SenderId) {
				signatures = append(signatures, signatureTransaction)
			}
		}
		pendingTransaction.CycleSignatureTransactions = signatures
	}

	// Remove recently approved transactions that have surpassed the retention threshold.
	approved := balanceList.RecentlyApprovedCycleTransactions[:0]
	for _, approvedTransaction := range balanceList.RecentlyApprovedCycleTransactions {
		if approvedTransaction.ApprovalHeight >= thisBlock.Height-configuration.ApprovedCycleTransactionRetentionInterval {
			approved = append(approved, approvedTransaction)
		}
	}
	balanceList.RecentlyApprovedCycleTransactions = approved

	// Sum the recently approved transactions and calculate the maximum allowable cycle transaction
	// amount for this block.
	var recentCycleTransactionSum int64
	for _, approvedTransaction := range balanceList.RecentlyApprovedCycleTransactions {
		recentCycleTransactionSum += approvedTransaction.Amount
	}
	cycleAccountBalance := balanceList.GetBalance(configuration.CycleAccount)
	maximumCycleTransactionAmount := configuration.MaximumCycleTransactionAmount - recentCycleTransactionSum
	if cycleAccountBalance < maximumCycleTransactionAmount {
		maximumCycleTransactionAmount = cycleAccountBalance
	}

	// Get up to one approved cycle transaction in this block, examined in identifier order. The first
	// transaction with enough votes and a suitable amount is selected.
	sort.SliceStable(balanceList.PendingCycleTransactions, func(i, j int) bool {
		return utilities.ByteArrayComparator(balanceList.PendingCycleTransactions[i].SenderId, balanceList.PendingCycleTransactions[j].SenderId)
	})
	var approvedCycleTransaction *blockchain_data.Transaction
	voteThreshold := cycle.CycleLength()/2 + 1
	for _, pendingTransaction := range balanceList.PendingCycleTransactions {
		if len(pendingTransaction.CycleSignatureTransactions) < voteThreshold || pendingTransaction.Amount > maximumCycleTransactionAmount {
			continue
		}
		yesVoteCount := 0
		for _, signatureTransaction := range pendingTransaction.CycleSignatureTransactions {
			if signatureTransaction.CycleTransactionVote {
				yesVoteCount++
			}
		}
		if yesVoteCount >= voteThreshold {
			approvedCycleTransaction = pendingTransaction
			break
		}
	}
	if approvedCycleTransaction == nil {
		return
	}

	logging.InfoLog.Printf("Approved cycle transaction at height %d.", thisBlock.Height)
	pending = balanceList.PendingCycleTransactions[:0]
	for _, pendingTransaction := range balanceList.PendingCycleTransactions {
		if !bytes.Equal(pendingTransaction.SenderId, approvedCycleTransaction.SenderId) {
			pending = append(pending, pendingTransaction)
		}
	}
	balanceList.PendingCycleTransactions = pending
	balanceList.RecentlyApprovedCycleTransactions = append(balanceList.RecentlyApprovedCycleTransactions, &blockchain_data.ApprovedCycleTransaction{
		InitiatorIdentifier: approvedCycleTransaction.SenderId,
		ReceiverIdentifier:  approvedCycleTransaction.RecipientId,
		ApprovalHeight:      thisBlock.Height,
		Amount:              approvedCycleTransaction.Amount,
	})
	balanceList.AdjustBalance(configuration.CycleAccount, -approvedCycleTransaction.Amount)
	balanceList.AdjustBalance(approvedCycleTransaction.RecipientId, approvedCycleTransaction.Amount)
}

// To prevent issues related to an exceptionally large balance list, some limitations are needed to avoid the
// creation of many small accounts. There are two ways to create many accounts with little funds: directly, by
// transferring a small amount to a new account, and indirectly, by transferring a larger amount away from an
// account to create a new account, leaving very little in the source account. Both of these cases are addressed
// here.
//
// balanceList is the balance list from the previous block.
func TransactionSpamsBalanceList(balanceList *blockchain_data.BalanceList, transaction *blockchain_data.Transaction, allTransactionsInBlock []*blockchain_data.Transaction) bool {
	// Only standard transactions are of concern.
	if transaction.Type != blockchain_data.TransactionTypeStandard {
		return false
	}
	// A μ1 transaction is consumed by its fee and never creates an account.
	if !balanceList.HasAccount(transaction.RecipientId) && transaction.Amount > 1 && transaction.Amount < configuration.MinimumPreferredBalance {
		return true
	}
	// The sender needs to keep at least ∩10 or be empty after the block, summed over all its transactions.
	senderBalance := balanceList.GetBalance(transaction.SenderId)
	var senderSum int64
	for _, blockTransaction := range allTransactionsInBlock {
		if bytes.Equal(blockTransaction.SenderId, transaction.SenderId) {
			senderSum += blockTransaction.Amount
		}
	}
	return senderBalance-senderSum < configuration.MinimumPreferredBalance && senderBalance-senderSum != 0
}

// Counts transaction spam in the given block, balanceList is the balance list of the previous block.
func NumberOfTransactionsSpammingBalanceList(balanceList *blockchain_data.BalanceList, transactions []*blockchain_data.Transaction) int {
	var count int
	for _, transaction := range transactions {
		if TransactionSpamsBalanceList(balanceList, transaction, transactions) {
			count++
		}
	}
	return count
}
