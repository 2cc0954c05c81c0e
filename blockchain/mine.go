// File: blockchain/mine.go
package blockchain

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Mine searches nonce values sequentially until the block digest satisfies
// the difficulty predicate. Terminates with probability 1 for any difficulty
// small relative to the digest width; there is no hard upper bound, so
// difficulty must be chosen conservatively.
func (b *Block) Mine(difficulty uint8) {
	var nonce uint64
	for {
		b.Nonce = nonce
		b.Hash = b.ComputeHash()
		if SatisfiesDifficulty(b.Hash, difficulty) {
			return
		}
		nonce++
	}
}

// MineParallel partitions the nonce space across workers, each walking its
// own stride. The first worker to find a satisfying nonce publishes it
// through a shared flag and the rest stop; no worker touches another's nonce
// state. Cancelling the context abandons the attempt without mutating b.
func (b *Block) MineParallel(ctx context.Context, workers int, difficulty uint8) error {
	if workers <= 1 {
		b.Mine(difficulty)
		return nil
	}

	var found atomic.Bool
	var winner atomic.Uint64
	stride := uint64(workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		candidate := *b
		start := uint64(w)
		g.Go(func() error {
			for nonce := start; ; nonce += stride {
				if found.Load() {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				candidate.Nonce = nonce
				if SatisfiesDifficulty(candidate.ComputeHash(), difficulty) {
					if found.CompareAndSwap(false, true) {
						winner.Store(nonce)
					}
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !found.Load() {
		return err
	}

	b.Nonce = winner.Load()
	b.Hash = b.ComputeHash()
	return nil
}
