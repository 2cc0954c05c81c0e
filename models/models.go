// File: models/models.go
package models

// Ballot is the plaintext candidate selection before encryption. It exists
// only inside the encrypting process between submission and ciphertext
// production and must never be persisted or logged in the clear.
type Ballot struct {
	CandidateID string `json:"candidate_id"`
	CastAt      int64  `json:"cast_at"`
}

// EncryptedTransaction is an encrypted ballot plus its anonymous voter tag
// and metadata, as stored in a block. Immutable once created.
//
// VoterTag is a one-way keyed digest of the voter's account identity. It is
// used only to reject duplicate submissions and carries no statistical
// relation to the encrypted candidate choice.
type EncryptedTransaction struct {
	ID           string `json:"id"`
	Ciphertext   []byte `json:"ciphertext"`
	EphemeralPub []byte `json:"ephemeral_pub"`
	MACTag       []byte `json:"mac_tag"`
	VoterTag     []byte `json:"voter_tag"`
	SubmittedAt  int64  `json:"submitted_at"`
}

// TallyResult is the aggregate produced by replaying the chain. Percentages
// are computed against TotalValid only; corrupted transactions are counted,
// never silently dropped.
type TallyResult struct {
	Counts         map[string]int     `json:"counts"`
	TotalValid     int                `json:"total_valid"`
	TotalCorrupted int                `json:"total_corrupted"`
	Percentages    map[string]float64 `json:"percentages"`
}

// ChainSummary describes the ledger for admin-facing health checks.
type ChainSummary struct {
	Length     int   `json:"length"`
	IsValid    bool  `json:"is_valid"`
	Difficulty uint8 `json:"difficulty"`
}
