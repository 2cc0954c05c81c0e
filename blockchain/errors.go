// File: blockchain/errors.go
package blockchain

import (
	"errors"
	"fmt"
)

var (
	// ErrChainLinkage rejects a block whose previous digest does not match
	// the chain head.
	ErrChainLinkage = errors.New("block does not link to chain head")
	// ErrDifficulty rejects a block whose digest fails the difficulty predicate.
	ErrDifficulty = errors.New("block digest does not satisfy difficulty")
	// ErrDuplicateVote rejects a transaction whose voter tag is already
	// present in the chain or the pending pool. Policy violation, not a fault.
	ErrDuplicateVote = errors.New("voter tag already present")
	// ErrNoPending means there is nothing to mine.
	ErrNoPending = errors.New("no pending transactions to mine")
	// ErrNotFound means no block exists at the requested index.
	ErrNotFound = errors.New("block not found")
	// ErrInvalidChain is the kind wrapped by every ValidationError.
	ErrInvalidChain = errors.New("chain validation failed")
)

// ValidationError reports the first chain violation found, tagged with the
// offending block index. errors.Is(err, ErrInvalidChain) holds for any value.
type ValidationError struct {
	Index  uint64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidChain
}
