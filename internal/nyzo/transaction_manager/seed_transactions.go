/*
Handle pre-signed seed transactions bouncing through the Nyzo chain.
*/
package transaction_manager

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/blockchain_data"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/pkg/errors"
)

const (
	blocksPerFile                int64 = 10000
	transactionsPerYear          int64 = (60*60*24*365*1000 + configuration.BlockDuration - 1) / configuration.BlockDuration // round up
	totalSeedTransactions              = transactionsPerYear * 6
	lowestSeedTransactionHeight  int64 = 2
	highestSeedTransactionHeight       = lowestSeedTransactionHeight + totalSeedTransactions - 1
)

func seedTransactionFileName(index int64) string {
	return fmt.Sprintf("%06d.nyzotransaction", index)
}

// Makes sure that we always have enough seed transactions to hand out above the given frozen edge height.
func (s *state) cacheSeedTransactions(frozenEdgeHeight int64) {
	if frozenEdgeHeight > highestSeedTransactionHeight {
		return
	}
	// we need seed transactions for at least 20 more blocks (140 seconds)
	requiredHeight := frozenEdgeHeight + 20
	if requiredHeight > highestSeedTransactionHeight {
		requiredHeight = highestSeedTransactionHeight
	}
	if s.highestCachedSeedTransaction < requiredHeight {
		currentFileIndex := frozenEdgeHeight / blocksPerFile
		// cache this file and the next
		for i := currentFileIndex; i < currentFileIndex+2; i++ {
			fileName := filepath.Join(s.seedTransactionDirectory, seedTransactionFileName(i))
			if utilities.FileDoesNotExists(fileName) {
				err := utilities.DownloadFile(s.ctx, s.seedTransactionSource+"/"+seedTransactionFileName(i), fileName)
				if err != nil {
					logging.WarningLog.Printf("Could not download seed transactions: %s.", err.Error())
					continue
				}
			}
			if err := s.cacheTransactionsFromFile(fileName); err != nil {
				logging.WarningLog.Printf("Could not load seed transactions from %s: %s.", fileName, err.Error())
				// remove the file for later re-download
				_ = os.Remove(fileName)
			}
		}
		// delete previous file if it exists
		_ = os.Remove(filepath.Join(s.seedTransactionDirectory, seedTransactionFileName(currentFileIndex-1)))
	}
	// remove old transactions from cache
	s.seedTransactionCacheLock.Lock()
	for height := range s.seedTransactionCache {
		if height <= frozenEdgeHeight {
			delete(s.seedTransactionCache, height)
		}
	}
	s.seedTransactionCacheLock.Unlock()
}

// Load transactions in the given file into the cache. Layout: transaction count, then height and transaction for
// each entry.
func (s *state) cacheTransactionsFromFile(fileName string) error {
	raw, err := os.ReadFile(fileName)
	if err != nil {
		return errors.Wrap(err, "cannot read seed transaction file")
	}
	r := bytes.NewReader(raw)
	transactionCount, err := message_fields.ReadInt32(r)
	if err != nil {
		return err
	}
	for i := int32(0); i < transactionCount; i++ {
		height, err := message_fields.ReadInt64(r)
		if err != nil {
			return err
		}
		transaction, err := blockchain_data.ReadTransaction(r, false)
		if err != nil {
			return errors.Wrapf(err, "cannot read seed transaction %d", i)
		}
		transaction.PreviousBlockHash = configuration.GenesisBlockHash
		if height <= 0 || !transaction.SignatureIsValid() {
			return errors.Errorf("invalid seed transaction for height %d", height)
		}
		s.seedTransactionCacheLock.Lock()
		s.seedTransactionCache[height] = transaction
		if height > s.highestCachedSeedTransaction {
			s.highestCachedSeedTransaction = height
		}
		s.seedTransactionCacheLock.Unlock()
	}
	return nil
}

// Hands out a seed transaction for the given block. Only works on and after the frozen edge.
func (s *state) SeedTransactionForBlock(height int64) *blockchain_data.Transaction {
	s.seedTransactionCacheLock.Lock()
	defer s.seedTransactionCacheLock.Unlock()
	return s.seedTransactionCache[height]
}
