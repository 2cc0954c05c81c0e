// File: blockchain/ledger.go
package blockchain

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"ballotchain/models"
)

// Ledger owns the ordered block sequence and the pending transaction pool.
// It grows monotonically from the genesis block and never shrinks or
// reorders. All mutations go through the state mutex; the mining mutex
// additionally serializes the snapshot -> mine -> append sequence so two
// miners can never race for the same chain height, while the nonce search
// itself runs outside the state lock.
type Ledger struct {
	mu         sync.RWMutex
	mineMu     sync.Mutex
	blocks     []*Block
	pending    []models.EncryptedTransaction
	seenTags   map[string]struct{}
	difficulty uint8
	logger     *slog.Logger
}

func NewLedger(difficulty uint8, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		blocks:     []*Block{NewGenesisBlock()},
		seenTags:   make(map[string]struct{}),
		difficulty: difficulty,
		logger:     logger,
	}
}

// ReserveTag marks a voter tag as seen without admitting a transaction.
// It lets callers reject a duplicate voter before the transaction enters a
// mix buffer. A duplicate tag is a policy violation, not a system fault.
func (l *Ledger) ReserveTag(tag []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seenTags[string(tag)]; ok {
		return ErrDuplicateVote
	}
	l.seenTags[string(tag)] = struct{}{}
	return nil
}

// Enqueue admits a transaction to the pending pool after checking its voter
// tag against every admitted block and the pool itself.
func (l *Ledger) Enqueue(tx models.EncryptedTransaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seenTags[string(tx.VoterTag)]; ok {
		return ErrDuplicateVote
	}
	l.seenTags[string(tx.VoterTag)] = struct{}{}
	l.pending = append(l.pending, tx)
	return nil
}

// EnqueueReserved admits transactions whose voter tags were already
// registered through ReserveTag, preserving the given order.
func (l *Ledger) EnqueueReserved(txs ...models.EncryptedTransaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, txs...)
}

// MineNext mints the next block from the full pending pool, order preserved,
// and appends it. An abandoned attempt (context cancellation) discards only
// the candidate block; the pending transactions stay eligible for the next
// attempt.
func (l *Ledger) MineNext(ctx context.Context, workers int) (*Block, error) {
	l.mineMu.Lock()
	defer l.mineMu.Unlock()

	l.mu.RLock()
	last := l.blocks[len(l.blocks)-1]
	pending := make([]models.EncryptedTransaction, len(l.pending))
	copy(pending, l.pending)
	l.mu.RUnlock()

	if len(pending) == 0 {
		return nil, ErrNoPending
	}

	candidate := &Block{
		Index:        last.Index + 1,
		Timestamp:    time.Now().Unix(),
		Transactions: pending,
		PrevHash:     last.Hash,
	}

	start := time.Now()
	if err := candidate.MineParallel(ctx, workers, l.difficulty); err != nil {
		return nil, err
	}
	l.logger.Info("mined block",
		"index", candidate.Index,
		"transactions", len(candidate.Transactions),
		"nonce", candidate.Nonce,
		"elapsed", time.Since(start))

	if err := l.Append(candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// Append admits a mined block after checking linkage and the difficulty
// predicate. Both failures are fatal to this attempt and are never retried
// with weaker checks. The transactions just admitted are cleared from the
// pending pool atomically with the append.
func (l *Ledger) Append(b *Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := l.blocks[len(l.blocks)-1]
	if b.Index != last.Index+1 || !bytes.Equal(b.PrevHash, last.Hash) {
		return ErrChainLinkage
	}
	// The predicate is only meaningful over the block's true digest.
	if !bytes.Equal(b.Hash, b.ComputeHash()) || !SatisfiesDifficulty(b.Hash, l.difficulty) {
		return ErrDifficulty
	}

	admitted := make(map[string]struct{}, len(b.Transactions))
	for i := range b.Transactions {
		admitted[b.Transactions[i].ID] = struct{}{}
		l.seenTags[string(b.Transactions[i].VoterTag)] = struct{}{}
	}
	remaining := l.pending[:0]
	for _, tx := range l.pending {
		if _, ok := admitted[tx.ID]; !ok {
			remaining = append(remaining, tx)
		}
	}
	l.pending = remaining
	l.blocks = append(l.blocks, b)
	return nil
}

// Validate walks the chain from genesis, recomputing every digest and
// checking linkage and the difficulty predicate (genesis exempt). The first
// violation found is returned with the offending block index; every
// descendant of a tampered block fails its own linkage check in turn.
func (l *Ledger) Validate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return validateChain(l.blocks, l.difficulty)
}

func validateChain(blocks []*Block, difficulty uint8) error {
	if len(blocks) == 0 {
		return &ValidationError{Index: 0, Reason: "missing genesis block"}
	}
	genesis := blocks[0]
	if !bytes.Equal(genesis.PrevHash, make([]byte, DigestSize)) {
		return &ValidationError{Index: 0, Reason: "genesis previous digest must be all zero"}
	}
	if !bytes.Equal(genesis.Hash, genesis.ComputeHash()) {
		return &ValidationError{Index: 0, Reason: "stored digest does not match recomputed digest"}
	}
	for i := 1; i < len(blocks); i++ {
		b := blocks[i]
		if b.Index != blocks[i-1].Index+1 {
			return &ValidationError{Index: b.Index, Reason: "index does not follow prior block"}
		}
		if !bytes.Equal(b.Hash, b.ComputeHash()) {
			return &ValidationError{Index: b.Index, Reason: "stored digest does not match recomputed digest"}
		}
		if !bytes.Equal(b.PrevHash, blocks[i-1].Hash) {
			return &ValidationError{Index: b.Index, Reason: "previous digest does not link to prior block"}
		}
		if !SatisfiesDifficulty(b.Hash, difficulty) {
			return &ValidationError{Index: b.Index, Reason: "digest does not satisfy difficulty predicate"}
		}
	}
	return nil
}

// Block returns the block at the given index.
func (l *Ledger) Block(index uint64) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index >= uint64(len(l.blocks)) {
		return nil, ErrNotFound
	}
	return l.blocks[index], nil
}

// Blocks returns a snapshot of the chain. Blocks are immutable after
// admission, so sharing the pointers is safe for readers.
func (l *Ledger) Blocks() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Block(nil), l.blocks...)
}

func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

func (l *Ledger) PendingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending)
}

func (l *Ledger) Difficulty() uint8 {
	return l.difficulty
}

// Summary reports the chain state for admin-facing health checks.
func (l *Ledger) Summary() models.ChainSummary {
	l.mu.RLock()
	blocks := append([]*Block(nil), l.blocks...)
	l.mu.RUnlock()
	return models.ChainSummary{
		Length:     len(blocks),
		IsValid:    validateChain(blocks, l.difficulty) == nil,
		Difficulty: l.difficulty,
	}
}
