package blockchain_data

import (
	"bytes"
	"testing"

	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/stretchr/testify/require"
)

func testIdentity(t *testing.T, seed byte) *identity.Identity {
	id, err := identity.FromPrivateKey(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return id
}

func TestShlong(t *testing.T) {
	version, height := FromShlong(ToShlong(2, 534234))
	require.Equal(t, int16(2), version)
	require.Equal(t, int64(534234), height)
}

func TestSignedBlockSurvivesTransmission(t *testing.T) {
	sender := testIdentity(t, 1)
	verifier := testIdentity(t, 2)
	previousHash := bytes.Repeat([]byte{7}, 32)
	transaction := NewStandardTransaction(10500, 1, make([]byte, 32), 99, previousHash, []byte("sentinel block"), sender)
	require.True(t, transaction.SignatureIsValid())

	block := &Block{
		BlockchainVersion:     2,
		Height:                100,
		PreviousBlockHash:     previousHash,
		StartTimestamp:        10000,
		VerificationTimestamp: 18000,
		Transactions:          []*Transaction{transaction},
		BalanceListHash:       bytes.Repeat([]byte{9}, 32),
	}
	block.Sign(verifier)
	require.True(t, block.SignatureIsValid())

	read, err := ReadBlock(bytes.NewReader(block.ToBytes()))
	require.NoError(t, err)
	require.Equal(t, block.Height, read.Height)
	require.Equal(t, block.Hash, read.Hash)
	require.True(t, read.SignatureIsValid())
	require.Len(t, read.Transactions, 1)
	require.Equal(t, []byte("sentinel block"), read.Transactions[0].SenderData)

	// the previous block hash is not transmitted, so the signature can only be checked once it is restored
	read.Transactions[0].PreviousBlockHash = previousHash
	require.True(t, read.Transactions[0].SignatureIsValid())

	read.VerificationTimestamp++
	require.False(t, read.SignatureIsValid())
}

func TestTruncatedBlockFails(t *testing.T) {
	block := &Block{Height: 5, PreviousBlockHash: make([]byte, 32), BalanceListHash: make([]byte, 32)}
	block.Sign(testIdentity(t, 3))
	serialized := block.ToBytes()
	_, err := ReadBlock(bytes.NewReader(serialized[:len(serialized)-1]))
	require.Error(t, err)
}

func TestBalanceListHashAndNormalize(t *testing.T) {
	a := bytes.Repeat([]byte{1}, 32)
	b := bytes.Repeat([]byte{2}, 32)
	bl := &BalanceList{BlockchainVersion: 2, BlockHeight: 3, PreviousVerifiers: [][]byte{a, b, a}}
	bl.AdjustBalance(b, 500)
	bl.AdjustBalance(a, 100)
	bl.AdjustBalance(a, -100)
	require.Equal(t, int64(500), bl.GetBalance(b))
	bl.Normalize()
	require.Len(t, bl.Items, 1)
	require.False(t, bl.HasAccount(a))

	read, err := ReadBalanceList(bytes.NewReader(bl.ToBytes()))
	require.NoError(t, err)
	require.Equal(t, bl.GetHash(), read.GetHash())

	copied := bl.Copy()
	copied.AdjustBalance(b, 1)
	require.Equal(t, int64(500), bl.GetBalance(b))
}
