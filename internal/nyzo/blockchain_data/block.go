/*
A Nyzo block. Only serialization and basic structural checks happen here, continuity and transaction validation
live in the block and balance authorities.
*/
package blockchain_data

import (
	"crypto/ed25519"
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
)

type Block struct {
	BlockchainVersion     int16          // stored together with the height as a shlong
	Height                int64          // the genesis block has height 0
	PreviousBlockHash     []byte         // double-SHA-256 of the previous block's signature
	StartTimestamp        int64          // milliseconds
	VerificationTimestamp int64          // milliseconds, when the verifier created the block
	Transactions          []*Transaction
	BalanceListHash       []byte // double-SHA-256 of the balance list after this block
	VerifierIdentifier    []byte
	VerifierSignature     []byte
	Hash                  []byte // derived, double-SHA-256 of VerifierSignature
}

func ReadBlock(r io.Reader) (*Block, error) {
	b := &Block{}
	return b, b.Read(r)
}

func (b *Block) GetSerializedLength() int {
	return len(b.Serialize(false))
}

func (b *Block) ToBytes() []byte {
	return b.Serialize(false)
}

// Serialize for transmission or signing. For signing, the verifier id and signature are zeroed out, not omitted.
func (b *Block) Serialize(forSigning bool) []byte {
	serialized := message_fields.SerializeInt64(ToShlong(b.BlockchainVersion, b.Height))
	serialized = append(serialized, b.PreviousBlockHash...)
	serialized = append(serialized, message_fields.SerializeInt64(b.StartTimestamp)...)
	serialized = append(serialized, message_fields.SerializeInt64(b.VerificationTimestamp)...)
	serialized = append(serialized, message_fields.SerializeInt32(int32(len(b.Transactions)))...)
	for _, transaction := range b.Transactions {
		serialized = append(serialized, transaction.ToBytes()...)
	}
	serialized = append(serialized, b.BalanceListHash...)
	if forSigning {
		return append(serialized, make([]byte, message_fields.SizeNodeIdentifier+message_fields.SizeSignature)...)
	}
	serialized = append(serialized, b.VerifierIdentifier...)
	return append(serialized, b.VerifierSignature...)
}

func (b *Block) Read(r io.Reader) error {
	combined, err := message_fields.ReadInt64(r)
	if err != nil {
		return err
	}
	b.BlockchainVersion, b.Height = FromShlong(combined)
	if b.BlockchainVersion < configuration.MinimumBlockchainVersion || b.BlockchainVersion > configuration.MaximumBlockchainVersion {
		return errors.Errorf("block has unknown blockchain version %d", b.BlockchainVersion)
	}
	if b.PreviousBlockHash, err = message_fields.ReadHash(r); err != nil {
		return err
	}
	if b.StartTimestamp, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	if b.VerificationTimestamp, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	count, err := readCount(r)
	if err != nil {
		return err
	}
	b.Transactions = make([]*Transaction, 0, count)
	for i := 0; i < count; i++ {
		transaction, err := ReadTransaction(r, false)
		if err != nil {
			return errors.Wrapf(err, "block %d, transaction %d", b.Height, i)
		}
		b.Transactions = append(b.Transactions, transaction)
	}
	if b.BalanceListHash, err = message_fields.ReadHash(r); err != nil {
		return err
	}
	if b.VerifierIdentifier, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if b.VerifierSignature, err = message_fields.ReadSignature(r); err != nil {
		return err
	}
	b.updateHash()
	return nil
}

// Sign sets the verifier fields from the given identity and derives the block hash.
func (b *Block) Sign(verifier *identity.Identity) {
	b.VerifierIdentifier = verifier.PublicKey
	b.VerifierSignature = verifier.Sign(b.Serialize(true))
	b.updateHash()
}

func (b *Block) SignatureIsValid() bool {
	return len(b.VerifierIdentifier) == ed25519.PublicKeySize && ed25519.Verify(b.VerifierIdentifier, b.Serialize(true), b.VerifierSignature)
}

func (b *Block) updateHash() {
	hash := utilities.DoubleSha256(b.VerifierSignature)
	b.Hash = hash[:]
}
