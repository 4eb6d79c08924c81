/*
A balance list: account balances plus the bookkeeping the network hashes along with them (rollover fees, recent
verifiers, unlock totals and pending v2 cycle transactions).
*/
package blockchain_data

import (
	"bytes"
	"io"
	"sort"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/pkg/errors"
)

// A balance list carries the verifiers of up to this many previous blocks.
const MaximumPreviousVerifiers = 9

type BalanceListItem struct {
	Identifier     []byte
	Balance        int64
	BlocksUntilFee int16
}

type BalanceList struct {
	BlockchainVersion                 int16
	BlockHeight                       int64
	RolloverFees                      byte
	PreviousVerifiers                 [][]byte
	Items                             []BalanceListItem
	UnlockThreshold                   int64
	UnlockTransferSum                 int64
	PendingCycleTransactions          []*Transaction
	RecentlyApprovedCycleTransactions []*ApprovedCycleTransaction
}

func ReadBalanceList(r io.Reader) (*BalanceList, error) {
	bl := &BalanceList{}
	return bl, bl.Read(r)
}

// Copy returns a copy that can be modified without touching the original. Transactions are shared, they are
// treated as immutable.
func (bl *BalanceList) Copy() *BalanceList {
	c := *bl
	c.PreviousVerifiers = append([][]byte(nil), bl.PreviousVerifiers...)
	c.Items = append([]BalanceListItem(nil), bl.Items...)
	c.PendingCycleTransactions = nil
	for _, transaction := range bl.PendingCycleTransactions {
		pending := *transaction
		pending.CycleSignatureTransactions = append([]*Transaction(nil), transaction.CycleSignatureTransactions...)
		c.PendingCycleTransactions = append(c.PendingCycleTransactions, &pending)
	}
	c.RecentlyApprovedCycleTransactions = append([]*ApprovedCycleTransaction(nil), bl.RecentlyApprovedCycleTransactions...)
	return &c
}

// Normalize sorts by identifier, then removes empty accounts and duplicates.
func (bl *BalanceList) Normalize() {
	sort.SliceStable(bl.Items, func(i, j int) bool {
		return utilities.ByteArrayComparator(bl.Items[i].Identifier, bl.Items[j].Identifier)
	})
	normalized := bl.Items[:0]
	for _, item := range bl.Items {
		if item.Balance <= 0 {
			continue
		}
		if len(normalized) > 0 && bytes.Equal(normalized[len(normalized)-1].Identifier, item.Identifier) {
			continue
		}
		normalized = append(normalized, item)
	}
	bl.Items = normalized
}

func (bl *BalanceList) GetHash() []byte {
	hash := utilities.DoubleSha256(bl.ToBytes())
	return hash[:]
}

func (bl *BalanceList) GetSerializedLength() int {
	return len(bl.ToBytes())
}

func (bl *BalanceList) ToBytes() []byte {
	serialized := message_fields.SerializeInt64(ToShlong(bl.BlockchainVersion, bl.BlockHeight))
	serialized = append(serialized, bl.RolloverFees)
	for _, id := range bl.PreviousVerifiers {
		serialized = append(serialized, id...)
	}
	serialized = append(serialized, message_fields.SerializeInt32(int32(len(bl.Items)))...)
	for _, item := range bl.Items {
		serialized = append(serialized, item.Identifier...)
		serialized = append(serialized, message_fields.SerializeInt64(item.Balance)...)
		serialized = append(serialized, message_fields.SerializeInt16(item.BlocksUntilFee)...)
	}
	if bl.BlockchainVersion > 0 {
		serialized = append(serialized, message_fields.SerializeInt64(bl.UnlockThreshold)...)
		serialized = append(serialized, message_fields.SerializeInt64(bl.UnlockTransferSum)...)
	}
	if bl.BlockchainVersion > 1 {
		sort.SliceStable(bl.PendingCycleTransactions, func(i, j int) bool {
			return utilities.ByteArrayComparator(bl.PendingCycleTransactions[i].SenderId, bl.PendingCycleTransactions[j].SenderId)
		})
		serialized = append(serialized, message_fields.SerializeInt32(int32(len(bl.PendingCycleTransactions)))...)
		for _, transaction := range bl.PendingCycleTransactions {
			serialized = append(serialized, transaction.ToBytes()...)
		}
		serialized = append(serialized, message_fields.SerializeInt32(int32(len(bl.RecentlyApprovedCycleTransactions)))...)
		for _, transaction := range bl.RecentlyApprovedCycleTransactions {
			serialized = append(serialized, transaction.ToBytes()...)
		}
	}
	return serialized
}

func (bl *BalanceList) Read(r io.Reader) error {
	combined, err := message_fields.ReadInt64(r)
	if err != nil {
		return err
	}
	bl.BlockchainVersion, bl.BlockHeight = FromShlong(combined)
	if bl.RolloverFees, err = message_fields.ReadByte(r); err != nil {
		return err
	}
	previousVerifiers := bl.BlockHeight
	if previousVerifiers > MaximumPreviousVerifiers {
		previousVerifiers = MaximumPreviousVerifiers
	}
	bl.PreviousVerifiers = make([][]byte, 0, previousVerifiers)
	for i := int64(0); i < previousVerifiers; i++ {
		id, err := message_fields.ReadNodeId(r)
		if err != nil {
			return err
		}
		bl.PreviousVerifiers = append(bl.PreviousVerifiers, id)
	}
	count, err := readCount(r)
	if err != nil {
		return err
	}
	bl.Items = make([]BalanceListItem, 0, count)
	for i := 0; i < count; i++ {
		item := BalanceListItem{}
		if item.Identifier, err = message_fields.ReadNodeId(r); err != nil {
			return err
		}
		if item.Balance, err = message_fields.ReadInt64(r); err != nil {
			return err
		}
		if item.BlocksUntilFee, err = message_fields.ReadInt16(r); err != nil {
			return err
		}
		bl.Items = append(bl.Items, item)
	}
	bl.UnlockThreshold, bl.UnlockTransferSum = 0, 0
	if bl.BlockchainVersion > 0 {
		if bl.UnlockThreshold, err = message_fields.ReadInt64(r); err != nil {
			return err
		}
		if bl.UnlockTransferSum, err = message_fields.ReadInt64(r); err != nil {
			return err
		}
	}
	if bl.BlockchainVersion < 2 {
		return nil
	}
	if count, err = readCount(r); err != nil {
		return err
	}
	bl.PendingCycleTransactions = make([]*Transaction, 0, count)
	for i := 0; i < count; i++ {
		transaction, err := ReadTransaction(r, true)
		if err != nil {
			return err
		}
		bl.PendingCycleTransactions = append(bl.PendingCycleTransactions, transaction)
	}
	if count, err = readCount(r); err != nil {
		return err
	}
	bl.RecentlyApprovedCycleTransactions = make([]*ApprovedCycleTransaction, 0, count)
	for i := 0; i < count; i++ {
		approved := &ApprovedCycleTransaction{}
		if err = approved.Read(r); err != nil {
			return err
		}
		bl.RecentlyApprovedCycleTransactions = append(bl.RecentlyApprovedCycleTransactions, approved)
	}
	return nil
}

func readCount(r io.Reader) (int, error) {
	count, err := message_fields.ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if count < 0 || count > message_fields.MaximumReadLength {
		return 0, errors.Errorf("invalid list length %d", count)
	}
	return int(count), nil
}

func (bl *BalanceList) HasAccount(id []byte) bool {
	return bl.itemIndex(id) >= 0
}

func (bl *BalanceList) GetBalance(id []byte) int64 {
	if i := bl.itemIndex(id); i >= 0 {
		return bl.Items[i].Balance
	}
	return 0
}

// AdjustBalance adds amount to the account, creating it if needed, and returns the new balance. No account is
// created for a zero amount.
func (bl *BalanceList) AdjustBalance(id []byte, amount int64) int64 {
	if i := bl.itemIndex(id); i >= 0 {
		bl.Items[i].Balance += amount
		return bl.Items[i].Balance
	}
	if amount == 0 {
		return 0
	}
	item := BalanceListItem{Identifier: id, Balance: amount, BlocksUntilFee: configuration.BlocksBetweenFee}
	if bytes.Equal(id, configuration.TransferAccount) {
		item.BlocksUntilFee = 0
	}
	bl.Items = append(bl.Items, item)
	return amount
}

func (bl *BalanceList) itemIndex(id []byte) int {
	for i := range bl.Items {
		if bytes.Equal(bl.Items[i].Identifier, id) {
			return i
		}
	}
	return -1
}
