// File: service/election_test.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotchain/blockchain"
	"ballotchain/config"
	"ballotchain/models"
)

func newTestService(t *testing.T, mixBatchSize int) *ElectionService {
	t.Helper()
	cfg := &config.Config{
		Difficulty:   4,
		MineWorkers:  2,
		MixBatchSize: mixBatchSize,
		MineInterval: time.Second,
	}
	require.NoError(t, cfg.Validate())

	svc, err := NewElectionService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc
}

func TestSubmitMineTally(t *testing.T) {
	svc := newTestService(t, 1)
	ctx := context.Background()

	for i, candidate := range []string{"A", "A", "A", "B"} {
		require.NoError(t, svc.SubmitBallot(fmt.Sprintf("voter-%d", i), candidate))
	}

	block, err := svc.MineNextBlock(ctx)
	require.NoError(t, err)
	assert.Len(t, block.Transactions, 4)

	tally, err := svc.GetTally()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, tally.Counts)
	assert.Equal(t, 4, tally.TotalValid)
	assert.Equal(t, 0, tally.TotalCorrupted)
	assert.InDelta(t, 75.0, tally.Percentages["A"], 1e-9)
	assert.InDelta(t, 25.0, tally.Percentages["B"], 1e-9)
}

func TestDuplicateVoterRejected(t *testing.T) {
	svc := newTestService(t, 1)

	require.NoError(t, svc.SubmitBallot("voter-1", "A"))

	// Rejected regardless of candidate choice on the second attempt.
	err := svc.SubmitBallot("voter-1", "B")
	assert.ErrorIs(t, err, blockchain.ErrDuplicateVote)
	err = svc.SubmitBallot("voter-1", "A")
	assert.ErrorIs(t, err, blockchain.ErrDuplicateVote)

	assert.InDelta(t, 2.0, testutil.ToFloat64(svc.Metrics().DuplicatesRejected), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(svc.Metrics().BallotsAccepted), 1e-9)
}

func TestSubmitRejectsMalformedBallot(t *testing.T) {
	svc := newTestService(t, 1)
	err := svc.SubmitBallot("voter-1", "")
	assert.Error(t, err)
	assert.InDelta(t, 1.0, testutil.ToFloat64(svc.Metrics().EncodingFailures), 1e-9)

	// The failed attempt must not burn the voter's tag.
	assert.NoError(t, svc.SubmitBallot("voter-1", "A"))
}

func TestTallyRefusesTamperedChain(t *testing.T) {
	svc := newTestService(t, 1)
	require.NoError(t, svc.SubmitBallot("voter-1", "A"))
	_, err := svc.MineNextBlock(context.Background())
	require.NoError(t, err)

	block, err := svc.GetBlock(1)
	require.NoError(t, err)
	block.Transactions[0].Ciphertext[0] ^= 0x01

	_, err = svc.GetTally()
	assert.ErrorIs(t, err, blockchain.ErrInvalidChain)
	assert.False(t, svc.GetChainSummary().IsValid)
}

func TestTallyCountsCorruptedBallots(t *testing.T) {
	svc := newTestService(t, 1)
	require.NoError(t, svc.SubmitBallot("voter-1", "A"))

	// A transaction that was never produced by the cipher decrypts to
	// garbage but leaves the chain digests intact.
	garbage := models.EncryptedTransaction{
		ID:           uuid.New().String(),
		Ciphertext:   []byte{1, 2, 3, 4},
		EphemeralPub: make([]byte, 65),
		MACTag:       make([]byte, 32),
		VoterTag:     []byte("tag:intruder"),
		SubmittedAt:  time.Now().Unix(),
	}
	require.NoError(t, svc.Ledger().Enqueue(garbage))

	_, err := svc.MineNextBlock(context.Background())
	require.NoError(t, err)

	tally, err := svc.GetTally()
	require.NoError(t, err)
	assert.Equal(t, 1, tally.TotalValid)
	assert.Equal(t, 1, tally.TotalCorrupted)
	assert.InDelta(t, 100.0, tally.Percentages["A"], 1e-9)
}

func TestMixBufferReleasedByMining(t *testing.T) {
	svc := newTestService(t, 3)

	require.NoError(t, svc.SubmitBallot("voter-1", "A"))
	require.NoError(t, svc.SubmitBallot("voter-2", "B"))
	// Below the batch size nothing reaches the pending pool yet.
	assert.Equal(t, 0, svc.Ledger().PendingCount())

	block, err := svc.MineNextBlock(context.Background())
	require.NoError(t, err)
	assert.Len(t, block.Transactions, 2)

	tally, err := svc.GetTally()
	require.NoError(t, err)
	assert.Equal(t, 2, tally.TotalValid)
}

func TestChainSummary(t *testing.T) {
	svc := newTestService(t, 1)

	summary := svc.GetChainSummary()
	assert.Equal(t, 1, summary.Length)
	assert.True(t, summary.IsValid)
	assert.EqualValues(t, 4, summary.Difficulty)

	_, err := svc.GetBlock(3)
	assert.ErrorIs(t, err, blockchain.ErrNotFound)
}

func TestBackgroundMinerMinesSubmissions(t *testing.T) {
	svc := newTestService(t, 1)

	miner := NewBlockMiner(svc, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	miner.Start()
	defer miner.Stop()

	require.NoError(t, svc.SubmitBallot("voter-1", "A"))

	assert.Eventually(t, func() bool {
		return svc.GetChainSummary().Length == 2
	}, 3*time.Second, 20*time.Millisecond)
}
