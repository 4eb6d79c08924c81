/*
An individual transaction. Only serialization and structural sanity checking belongs here.
*/
package blockchain_data

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"sort"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
)

const (
	TransactionTypeCoinGeneration = 0
	TransactionTypeSeed           = 1
	TransactionTypeStandard       = 2
	TransactionTypeCycle          = 3
	TransactionTypeCycleSignature = 4
	TransactionTypeAccountFee     = 97
	TransactionTypeCycleReward    = 98
	TransactionTypeVerifierReward = 99

	MaximumSenderDataLength = 32
)

const (
	signatureUnchecked = iota
	signatureValid
	signatureInvalid
)

type Transaction struct {
	Type        byte   `json:"type"`
	Timestamp   int64  `json:"timestamp"` // milliseconds
	Amount      int64  `json:"amount"`    // micronyzo
	RecipientId []byte `json:"recipient_id"`
	// seed, standard and cycle transactions
	PreviousHashHeight int64  `json:"previous_hash_height"`
	PreviousBlockHash  []byte `json:"-"` // only used for signing, never serialized
	SenderId           []byte `json:"sender_id"`
	SenderData         []byte `json:"sender_data"`
	Signature          []byte `json:"signature"`
	// v1 cycle transactions carry their signatures inline
	CycleSignatures []*CycleSignature `json:"cycle_signatures,omitempty"`
	// v2 cycle transactions (balance list) collect type 4 transactions
	CycleSignatureTransactions []*Transaction `json:"cycle_signature_transactions,omitempty"`
	// cycle signature transactions
	CycleTransactionVote      bool   `json:"cycle_transaction_vote,omitempty"`
	CycleTransactionSignature []byte `json:"cycle_transaction_signature,omitempty"`

	signatureState int
}

// NewStandardTransaction builds and signs a standard transaction from the given sender identity.
func NewStandardTransaction(timestamp, amount int64, recipient []byte, previousHashHeight int64, previousBlockHash, senderData []byte, sender *identity.Identity) *Transaction {
	if len(senderData) > MaximumSenderDataLength {
		senderData = senderData[:MaximumSenderDataLength]
	}
	t := &Transaction{
		Type:               TransactionTypeStandard,
		Timestamp:          timestamp,
		Amount:             amount,
		RecipientId:        recipient,
		PreviousHashHeight: previousHashHeight,
		PreviousBlockHash:  previousBlockHash,
		SenderId:           sender.PublicKey,
		SenderData:         senderData,
	}
	t.Signature = sender.Sign(t.Serialize(true))
	t.signatureState = signatureValid
	return t
}

// ReadTransaction reads a transaction. Cycle transactions stored in a balance list use the v2 signature layout.
func ReadTransaction(r io.Reader, inBalanceList bool) (*Transaction, error) {
	t := &Transaction{}
	return t, t.Read(r, inBalanceList)
}

func (t *Transaction) hasSender() bool {
	return t.Type == TransactionTypeSeed || t.Type == TransactionTypeStandard || t.Type == TransactionTypeCycle
}

func (t *Transaction) senderDataLength() int {
	if len(t.SenderData) > MaximumSenderDataLength {
		return MaximumSenderDataLength
	}
	return len(t.SenderData)
}

func (t *Transaction) GetSerializedLength() int {
	return len(t.Serialize(false))
}

func (t *Transaction) ToBytes() []byte {
	return t.Serialize(false)
}

// Serialize for transmission, or for signing (previous block hash instead of its height, sender data hashed, no
// signatures).
func (t *Transaction) Serialize(forSigning bool) []byte {
	serialized := []byte{t.Type}
	serialized = append(serialized, message_fields.SerializeInt64(t.Timestamp)...)
	if t.Type == TransactionTypeCycleSignature {
		serialized = append(serialized, t.SenderId...)
		serialized = append(serialized, message_fields.SerializeBool(t.CycleTransactionVote)...)
		serialized = append(serialized, t.CycleTransactionSignature...)
		if !forSigning {
			serialized = append(serialized, t.Signature...)
		}
		return serialized
	}
	serialized = append(serialized, message_fields.SerializeInt64(t.Amount)...)
	serialized = append(serialized, t.RecipientId...)
	if !t.hasSender() {
		return serialized
	}
	if forSigning {
		serialized = append(serialized, t.PreviousBlockHash...)
	} else {
		serialized = append(serialized, message_fields.SerializeInt64(t.PreviousHashHeight)...)
	}
	serialized = append(serialized, t.SenderId...)
	senderData := t.SenderData[:t.senderDataLength()]
	if forSigning {
		hash := utilities.DoubleSha256(senderData)
		return append(serialized, hash[:]...)
	}
	serialized = append(serialized, byte(len(senderData)))
	serialized = append(serialized, senderData...)
	serialized = append(serialized, t.Signature...)
	if t.Type == TransactionTypeCycle {
		serialized = append(serialized, t.serializeCycleSignatures()...)
	}
	return serialized
}

// Signatures are ordered by signer identifier. v1 uses CycleSignatures, v2 uses CycleSignatureTransactions.
func (t *Transaction) serializeCycleSignatures() []byte {
	var serialized []byte
	if len(t.CycleSignatures) > 0 {
		sort.SliceStable(t.CycleSignatures, func(i, j int) bool {
			return utilities.ByteArrayComparator(t.CycleSignatures[i].Id, t.CycleSignatures[j].Id)
		})
		serialized = append(serialized, message_fields.SerializeInt32(int32(len(t.CycleSignatures)))...)
		for _, signature := range t.CycleSignatures {
			serialized = append(serialized, signature.Id...)
			serialized = append(serialized, signature.Signature...)
		}
		return serialized
	}
	sort.SliceStable(t.CycleSignatureTransactions, func(i, j int) bool {
		return utilities.ByteArrayComparator(t.CycleSignatureTransactions[i].SenderId, t.CycleSignatureTransactions[j].SenderId)
	})
	serialized = append(serialized, message_fields.SerializeInt32(int32(len(t.CycleSignatureTransactions)))...)
	for _, signatureTransaction := range t.CycleSignatureTransactions {
		serialized = append(serialized, message_fields.SerializeInt64(signatureTransaction.Timestamp)...)
		serialized = append(serialized, signatureTransaction.SenderId...)
		serialized = append(serialized, message_fields.SerializeBool(signatureTransaction.CycleTransactionVote)...)
		serialized = append(serialized, signatureTransaction.Signature...)
	}
	return serialized
}

func (t *Transaction) Read(r io.Reader, inBalanceList bool) error {
	var err error
	if t.Type, err = message_fields.ReadByte(r); err != nil {
		return err
	}
	if t.Timestamp, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	t.signatureState = signatureUnchecked
	if t.Type == TransactionTypeCycleSignature {
		return t.readCycleSignature(r)
	}
	if t.Amount, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	if t.RecipientId, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if t.Type == TransactionTypeCoinGeneration {
		return nil
	}
	if !t.hasSender() {
		return errors.Errorf("invalid transaction data, unknown transaction type %d", t.Type)
	}
	if t.PreviousHashHeight, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	if t.SenderId, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	length, err := message_fields.ReadByte(r)
	if err != nil {
		return err
	}
	if int(length) > MaximumSenderDataLength {
		length = MaximumSenderDataLength
	}
	if t.SenderData, err = message_fields.ReadBytes(r, int64(length)); err != nil {
		return err
	}
	if t.Signature, err = message_fields.ReadSignature(r); err != nil {
		return err
	}
	if t.Type == TransactionTypeCycle {
		return t.readCycleSignatures(r, inBalanceList)
	}
	return nil
}

func (t *Transaction) readCycleSignature(r io.Reader) error {
	var err error
	if t.SenderId, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if t.CycleTransactionVote, err = message_fields.ReadBool(r); err != nil {
		return err
	}
	if t.CycleTransactionSignature, err = message_fields.ReadSignature(r); err != nil {
		return err
	}
	t.Signature, err = message_fields.ReadSignature(r)
	return err
}

func (t *Transaction) readCycleSignatures(r io.Reader, inBalanceList bool) error {
	count, err := message_fields.ReadInt32(r)
	if err != nil {
		return err
	}
	if count < 0 || count > 100000 {
		return errors.Errorf("invalid cycle signature count %d", count)
	}
	for i := int32(0); i < count; i++ {
		if inBalanceList {
			signatureTransaction := &Transaction{Type: TransactionTypeCycleSignature}
			if signatureTransaction.Timestamp, err = message_fields.ReadInt64(r); err != nil {
				return err
			}
			if signatureTransaction.SenderId, err = message_fields.ReadNodeId(r); err != nil {
				return err
			}
			if signatureTransaction.CycleTransactionVote, err = message_fields.ReadBool(r); err != nil {
				return err
			}
			if signatureTransaction.Signature, err = message_fields.ReadSignature(r); err != nil {
				return err
			}
			t.CycleSignatureTransactions = append(t.CycleSignatureTransactions, signatureTransaction)
			continue
		}
		id, err := message_fields.ReadNodeId(r)
		if err != nil {
			return err
		}
		signature, err := message_fields.ReadSignature(r)
		if err != nil {
			return err
		}
		// the initiator's own signature is already the transaction signature
		if !bytes.Equal(id, t.SenderId) {
			t.CycleSignatures = append(t.CycleSignatures, &CycleSignature{Id: id, Signature: signature})
		}
	}
	return nil
}

// Fee charged for this transaction.
func (t *Transaction) GetFee() int64 {
	if t.Type == TransactionTypeCycle || t.Type == TransactionTypeCoinGeneration || t.Type == TransactionTypeCycleSignature {
		return 0
	}
	return (t.Amount + 399) / 400
}

// Checks the signature once and remembers the result. PreviousBlockHash must be set for sender transactions.
func (t *Transaction) SignatureIsValid() bool {
	if t.Type == TransactionTypeCoinGeneration {
		return true
	}
	if t.signatureState == signatureUnchecked {
		t.signatureState = signatureInvalid
		if len(t.SenderId) == ed25519.PublicKeySize && ed25519.Verify(t.SenderId, t.Serialize(true), t.Signature) {
			t.signatureState = signatureValid
		}
	}
	return t.signatureState == signatureValid
}

// Dev account locking mechanism.
func (t *Transaction) IsSubjectToLock() bool {
	return t.Type != TransactionTypeCoinGeneration &&
		t.Type != TransactionTypeSeed &&
		configuration.IsLockedAccount(t.SenderId) &&
		!bytes.Equal(t.RecipientId, configuration.CycleAccount)
}
