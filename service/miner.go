// File: service/miner.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ballotchain/blockchain"
)

// BlockMiner mines pending transactions on a cadence in the background. The
// ledger still serializes the final append, so the worker can run alongside
// callers that mine on demand. Stopping cancels an in-flight nonce search;
// the abandoned candidate's transactions stay in the pending pool.
type BlockMiner struct {
	election *ElectionService
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBlockMiner(election *ElectionService, interval time.Duration, logger *slog.Logger) *BlockMiner {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BlockMiner{
		election: election,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (bm *BlockMiner) Start() {
	bm.wg.Add(1)
	go bm.loop()
}

// Stop cancels any in-flight mining attempt and waits for the worker.
func (bm *BlockMiner) Stop() {
	bm.cancel()
	bm.wg.Wait()
}

func (bm *BlockMiner) loop() {
	defer bm.wg.Done()

	ticker := time.NewTicker(bm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-bm.ctx.Done():
			return
		case <-ticker.C:
			_, err := bm.election.MineNextBlock(bm.ctx)
			switch {
			case err == nil:
			case errors.Is(err, blockchain.ErrNoPending):
			case errors.Is(err, context.Canceled):
				return
			default:
				bm.logger.Error("background mining failed", "error", err)
			}
		}
	}
}
