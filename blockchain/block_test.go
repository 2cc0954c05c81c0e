// File: blockchain/block_test.go
package blockchain

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotchain/models"
)

func TestSatisfiesDifficulty(t *testing.T) {
	cases := []struct {
		name   string
		digest []byte
		bits   uint8
		want   bool
	}{
		{"zero bits always passes", []byte{0xff, 0xff}, 0, true},
		{"one leading zero byte", []byte{0x00, 0xff}, 8, true},
		{"nine bits need the next bit zero too", []byte{0x00, 0xff}, 9, false},
		{"nine bits satisfied", []byte{0x00, 0x7f}, 9, true},
		{"partial byte", []byte{0x0f, 0xff}, 4, true},
		{"partial byte failing", []byte{0x1f, 0xff}, 4, false},
		{"more bits than digest", []byte{0x00}, 16, false},
		{"all zero digest", make([]byte, DigestSize), 64, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SatisfiesDifficulty(tc.digest, tc.bits))
		})
	}
}

// The serialized layout is a wire contract: any reimplementation must
// produce this exact digest for this exact block content.
func TestComputeHashGoldenVector(t *testing.T) {
	block := &Block{
		Index:     1,
		Timestamp: 1700000000,
		Transactions: []models.EncryptedTransaction{{
			ID:           "tx-0001",
			Ciphertext:   []byte{0x11, 0x22, 0x33},
			EphemeralPub: []byte{0xAA, 0xBB},
			MACTag:       []byte{0xCC},
			VoterTag:     []byte{0xDD, 0xEE},
			SubmittedAt:  1699999999,
		}},
		PrevHash: make([]byte, DigestSize),
		Nonce:    7,
	}

	const want = "57fc9e3fe6d7aab2e8627bc84a3e0ba2a1c27b3e74f435629ae04ceaf2afc76a"
	assert.Equal(t, want, hex.EncodeToString(block.ComputeHash()))
}

func TestComputeHashChangesWithEveryField(t *testing.T) {
	base := func() *Block {
		return &Block{
			Index:     3,
			Timestamp: 1700000000,
			Transactions: []models.EncryptedTransaction{{
				ID:          "tx",
				Ciphertext:  []byte{1, 2, 3},
				VoterTag:    []byte{4},
				SubmittedAt: 5,
			}},
			PrevHash: make([]byte, DigestSize),
			Nonce:    42,
		}
	}
	reference := base().ComputeHash()

	mutations := map[string]func(*Block){
		"index":      func(b *Block) { b.Index++ },
		"timestamp":  func(b *Block) { b.Timestamp++ },
		"nonce":      func(b *Block) { b.Nonce++ },
		"prev hash":  func(b *Block) { b.PrevHash[0] = 1 },
		"ciphertext": func(b *Block) { b.Transactions[0].Ciphertext[0] ^= 1 },
		"voter tag":  func(b *Block) { b.Transactions[0].VoterTag[0] ^= 1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			b := base()
			mutate(b)
			assert.NotEqual(t, reference, b.ComputeHash())
		})
	}
}

func TestGenesisBlock(t *testing.T) {
	genesis := NewGenesisBlock()
	assert.EqualValues(t, 0, genesis.Index)
	assert.Empty(t, genesis.Transactions)
	assert.Equal(t, make([]byte, DigestSize), genesis.PrevHash)
	assert.Equal(t, genesis.ComputeHash(), genesis.Hash)
}

func TestMineFindsSatisfyingNonce(t *testing.T) {
	block := &Block{
		Index:     1,
		Timestamp: time.Now().Unix(),
		PrevHash:  make([]byte, DigestSize),
	}
	block.Mine(8)

	assert.True(t, SatisfiesDifficulty(block.Hash, 8))
	assert.Equal(t, block.ComputeHash(), block.Hash)
}

func TestMineParallelProducesValidBlock(t *testing.T) {
	block := &Block{
		Index:     1,
		Timestamp: time.Now().Unix(),
		PrevHash:  make([]byte, DigestSize),
	}
	require.NoError(t, block.MineParallel(context.Background(), 4, 10))

	assert.True(t, SatisfiesDifficulty(block.Hash, 10))
	assert.Equal(t, block.ComputeHash(), block.Hash)
}

func TestMineParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := &Block{
		Index:     1,
		Timestamp: time.Now().Unix(),
		PrevHash:  make([]byte, DigestSize),
	}
	err := block.MineParallel(ctx, 4, 24)
	assert.ErrorIs(t, err, context.Canceled)
}
