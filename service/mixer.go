// File: service/mixer.go
package service

import (
	"crypto/rand"
	"math/big"
	"sync"

	"ballotchain/models"
)

// Mixer buffers accepted transactions and releases them to the pending pool
// in shuffled batches, so a transaction's position in the pool reveals
// nothing about submission order. Duplicate-vote checks happen before
// buffering (Ledger.ReserveTag), so the buffer never holds two transactions
// for the same voter. A batch size of 1 passes transactions straight through.
type Mixer struct {
	mu        sync.Mutex
	batchSize int
	buffer    []models.EncryptedTransaction
}

func NewMixer(batchSize int) *Mixer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Mixer{batchSize: batchSize}
}

// Add buffers the transaction and returns the shuffled batch once the
// buffer is full, or nil while it is still filling.
func (m *Mixer) Add(tx models.EncryptedTransaction) []models.EncryptedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = append(m.buffer, tx)
	if len(m.buffer) < m.batchSize {
		return nil
	}
	return m.releaseLocked()
}

// Flush releases whatever is buffered, shuffled, so no ballot waits forever
// on a partially filled batch.
func (m *Mixer) Flush() []models.EncryptedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buffer) == 0 {
		return nil
	}
	return m.releaseLocked()
}

func (m *Mixer) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

func (m *Mixer) releaseLocked() []models.EncryptedTransaction {
	batch := m.buffer
	m.buffer = nil

	// Fisher-Yates with crypto randomness.
	for i := len(batch) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			continue
		}
		batch[i], batch[j.Int64()] = batch[j.Int64()], batch[i]
	}
	return batch
}
