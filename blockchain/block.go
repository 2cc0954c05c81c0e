// File: blockchain/block.go
package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"ballotchain/models"
)

// DigestSize is the width of a block digest in bytes.
const DigestSize = sha256.Size

// Block is an immutable record of encrypted ballots linked to its
// predecessor by digest. Mutating any field after admission invalidates the
// block's own digest and every descendant's previous-digest linkage.
type Block struct {
	Index        uint64                        `json:"index"`
	Timestamp    int64                         `json:"timestamp"`
	Transactions []models.EncryptedTransaction `json:"transactions"`
	PrevHash     []byte                        `json:"prev_hash"`
	Nonce        uint64                        `json:"nonce"`
	Hash         []byte                        `json:"hash"`
}

// NewGenesisBlock builds the fixed index-0 block: all-zero previous digest,
// no transactions, exempt from the difficulty predicate.
func NewGenesisBlock() *Block {
	b := &Block{
		Index:     0,
		Timestamp: time.Now().Unix(),
		PrevHash:  make([]byte, DigestSize),
	}
	b.Hash = b.ComputeHash()
	return b
}

// ComputeHash returns the SHA-256 digest of the block's serialized fields.
func (b *Block) ComputeHash() []byte {
	hash := sha256.Sum256(b.serialize())
	return hash[:]
}

// serialize writes every hashed field in a fixed big-endian layout:
//
//	uint64 index | int64 timestamp | uint32 tx count | transactions...
//	| previous digest | uint64 nonce
//
// with each transaction as length-prefixed id, ciphertext, ephemeral public
// point, MAC tag and voter tag followed by the int64 submission time. The
// layout is part of the chain contract: independent implementations must
// compute identical digests for identical block contents.
func (b *Block) serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, b.Index)
	binary.Write(buf, binary.BigEndian, b.Timestamp)
	binary.Write(buf, binary.BigEndian, uint32(len(b.Transactions)))
	for i := range b.Transactions {
		writeTransaction(buf, &b.Transactions[i])
	}
	buf.Write(b.PrevHash)
	binary.Write(buf, binary.BigEndian, b.Nonce)
	return buf.Bytes()
}

func writeTransaction(buf *bytes.Buffer, tx *models.EncryptedTransaction) {
	writeBytes(buf, []byte(tx.ID))
	writeBytes(buf, tx.Ciphertext)
	writeBytes(buf, tx.EphemeralPub)
	writeBytes(buf, tx.MACTag)
	writeBytes(buf, tx.VoterTag)
	binary.Write(buf, binary.BigEndian, tx.SubmittedAt)
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(b)))
	buf.Write(b)
}

// SatisfiesDifficulty reports whether the digest has at least bits leading
// zero bits. This admission rule is exactly reproducible even though the
// nonce search order is not.
func SatisfiesDifficulty(digest []byte, bits uint8) bool {
	remaining := int(bits)
	for _, b := range digest {
		if remaining <= 0 {
			return true
		}
		if remaining >= 8 {
			if b != 0 {
				return false
			}
			remaining -= 8
			continue
		}
		return b>>(8-remaining) == 0
	}
	return remaining <= 0
}
