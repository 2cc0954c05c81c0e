// File: service/election.go
package service

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"time"

	"ballotchain/blockchain"
	"ballotchain/config"
	"ballotchain/encryption"
	"ballotchain/models"
)

// ElectionService is the surface the web layer talks to. It composes the
// vote cipher, the voter anonymizer, the mix buffer and the ledger; the
// plaintext candidate choice never leaves SubmitBallot.
type ElectionService struct {
	cipher  *encryption.VoteCipher
	ledger  *blockchain.Ledger
	tally   *TallyService
	mixer   *Mixer
	key     *ecdsa.PrivateKey
	salt    []byte
	workers int
	metrics *Metrics
	logger  *slog.Logger
}

func NewElectionService(cfg *config.Config, logger *slog.Logger) (*ElectionService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var key *ecdsa.PrivateKey
	var err error
	if cfg.KeyFile != "" {
		key, err = encryption.LoadOrGenerateKey(cfg.KeyFile)
	} else {
		key, err = encryption.GenerateKey()
	}
	if err != nil {
		return nil, err
	}

	salt := cfg.SaltBytes()
	if salt == nil {
		salt, err = encryption.NewElectionSalt()
		if err != nil {
			return nil, err
		}
	}

	cipher := encryption.NewVoteCipher()
	ledger := blockchain.NewLedger(cfg.Difficulty, logger)

	logger.Info("election service initialized",
		"difficulty", cfg.Difficulty,
		"mine_workers", cfg.MineWorkers,
		"mix_batch_size", cfg.MixBatchSize)

	return &ElectionService{
		cipher:  cipher,
		ledger:  ledger,
		tally:   NewTallyService(cipher, ledger, logger),
		mixer:   NewMixer(cfg.MixBatchSize),
		key:     key,
		salt:    salt,
		workers: cfg.MineWorkers,
		metrics: NewMetrics(),
		logger:  logger,
	}, nil
}

// SubmitBallot anonymizes the voter identity, encrypts the ballot to the
// election public key and admits the transaction for mining. The second and
// later submissions by the same voter fail with
// blockchain.ErrDuplicateVote regardless of candidate choice.
func (es *ElectionService) SubmitBallot(voterIdentity, candidateID string) error {
	ballot := models.Ballot{
		CandidateID: candidateID,
		CastAt:      time.Now().Unix(),
	}

	tx, err := es.cipher.Encrypt(ballot, &es.key.PublicKey)
	if err != nil {
		es.metrics.EncodingFailures.Inc()
		return err
	}
	tx.VoterTag = encryption.Anonymize(voterIdentity, es.salt)

	if err := es.ledger.ReserveTag(tx.VoterTag); err != nil {
		es.metrics.DuplicatesRejected.Inc()
		return err
	}

	if batch := es.mixer.Add(*tx); batch != nil {
		es.ledger.EnqueueReserved(batch...)
	}
	es.metrics.BallotsAccepted.Inc()
	es.logger.Debug("ballot accepted",
		"transaction", tx.ID,
		"pending", es.ledger.PendingCount(),
		"buffered", es.mixer.Buffered())
	return nil
}

// MineNextBlock releases any partially filled mix batch and mints the next
// block from the pending pool.
func (es *ElectionService) MineNextBlock(ctx context.Context) (*blockchain.Block, error) {
	if batch := es.mixer.Flush(); batch != nil {
		es.ledger.EnqueueReserved(batch...)
	}

	start := time.Now()
	block, err := es.ledger.MineNext(ctx, es.workers)
	if err != nil {
		return nil, err
	}
	es.metrics.BlocksMined.Inc()
	es.metrics.MiningSeconds.Observe(time.Since(start).Seconds())
	return block, nil
}

// GetTally replays the chain with the election private key. Fails when the
// chain does not validate.
func (es *ElectionService) GetTally() (*models.TallyResult, error) {
	return es.tally.Compute(es.key)
}

func (es *ElectionService) GetChainSummary() models.ChainSummary {
	return es.ledger.Summary()
}

func (es *ElectionService) GetBlock(index uint64) (*blockchain.Block, error) {
	return es.ledger.Block(index)
}

// PublicKey is the election encryption key shared with ballot submitters.
func (es *ElectionService) PublicKey() *ecdsa.PublicKey {
	return &es.key.PublicKey
}

func (es *ElectionService) CipherInfo() encryption.CipherInfo {
	return es.cipher.Info()
}

func (es *ElectionService) Ledger() *blockchain.Ledger {
	return es.ledger
}

func (es *ElectionService) Metrics() *Metrics {
	return es.metrics
}
