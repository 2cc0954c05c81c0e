// File: service/tally.go
package service

import (
	"crypto/ecdsa"
	"log/slog"

	"github.com/pkg/errors"

	"ballotchain/blockchain"
	"ballotchain/encryption"
	"ballotchain/models"
)

// TallyService replays the validated chain and aggregates per-candidate
// counts. Tallying an invalid chain is disallowed; a transaction that fails
// decryption is surfaced through the corrupted count rather than aborting
// the whole election's results.
type TallyService struct {
	cipher *encryption.VoteCipher
	ledger *blockchain.Ledger
	logger *slog.Logger
}

func NewTallyService(cipher *encryption.VoteCipher, ledger *blockchain.Ledger, logger *slog.Logger) *TallyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TallyService{
		cipher: cipher,
		ledger: ledger,
		logger: logger,
	}
}

// Compute decrypts every transaction in block order, transaction order, and
// returns the aggregate. Percentages are computed against valid ballots only.
func (ts *TallyService) Compute(privateKey *ecdsa.PrivateKey) (*models.TallyResult, error) {
	if err := ts.ledger.Validate(); err != nil {
		return nil, errors.Wrap(err, "refusing to tally")
	}

	result := &models.TallyResult{
		Counts:      make(map[string]int),
		Percentages: make(map[string]float64),
	}

	for _, block := range ts.ledger.Blocks() {
		for i := range block.Transactions {
			ballot, err := ts.cipher.Decrypt(&block.Transactions[i], privateKey)
			if err != nil {
				ts.logger.Warn("corrupted ballot",
					"block", block.Index,
					"transaction", block.Transactions[i].ID,
					"error", err)
				result.TotalCorrupted++
				continue
			}
			result.Counts[ballot.CandidateID]++
			result.TotalValid++
		}
	}

	if result.TotalValid > 0 {
		for candidate, count := range result.Counts {
			result.Percentages[candidate] = float64(count) / float64(result.TotalValid) * 100
		}
	}
	return result, nil
}
