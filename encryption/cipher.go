// File: encryption/cipher.go
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"ballotchain/models"
)

var (
	// ErrEncoding signals a ballot that cannot be serialized.
	ErrEncoding = errors.New("ballot failed to encode")
	// ErrDecoding signals a decrypted payload that does not parse as a ballot.
	ErrDecoding = errors.New("decrypted payload is not a valid ballot")
	// ErrIntegrity signals an authentication tag mismatch: tampering or corruption.
	ErrIntegrity = errors.New("authentication tag mismatch")
)

// Candidate identifiers longer than this are rejected at encoding time.
const maxCandidateLen = 128

const kdfInfo = "ballotchain-vote-cipher-v1"

// VoteCipher provides confidentiality and authenticity for ballot content.
// Each encryption uses a fresh ephemeral secp256k1 key: the shared secret is
// derived via ECDH against the election public key and stretched through
// HKDF-SHA256 into an AES-256-CTR key, an HMAC-SHA256 key and the CTR IV.
type VoteCipher struct{}

func NewVoteCipher() *VoteCipher {
	return &VoteCipher{}
}

// Encrypt serializes the ballot in the fixed byte layout, encrypts it to the
// election public key and tags the ciphertext. The returned transaction has
// no voter tag; the caller attaches one before admission.
func (vc *VoteCipher) Encrypt(ballot models.Ballot, publicKey *ecdsa.PublicKey) (*models.EncryptedTransaction, error) {
	plaintext, err := encodeBallot(ballot)
	if err != nil {
		return nil, err
	}

	ephemKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	encKey, macKey, iv, err := deriveKeys(sharedSecret(publicKey, ephemKey.D))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(ciphertext)

	return &models.EncryptedTransaction{
		ID:           uuid.New().String(),
		Ciphertext:   ciphertext,
		EphemeralPub: crypto.FromECDSAPub(&ephemKey.PublicKey),
		MACTag:       mac.Sum(nil),
		SubmittedAt:  time.Now().Unix(),
	}, nil
}

// Decrypt recomputes the shared secret from the transaction's ephemeral
// public point, verifies the authentication tag and decodes the ballot.
func (vc *VoteCipher) Decrypt(tx *models.EncryptedTransaction, privateKey *ecdsa.PrivateKey) (*models.Ballot, error) {
	ephemPub, err := crypto.UnmarshalPubkey(tx.EphemeralPub)
	if err != nil {
		return nil, ErrIntegrity
	}

	encKey, macKey, iv, err := deriveKeys(sharedSecret(ephemPub, privateKey.D))
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(tx.Ciphertext)
	if !hmac.Equal(mac.Sum(nil), tx.MACTag) {
		return nil, ErrIntegrity
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(tx.Ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, tx.Ciphertext)

	return decodeBallot(plaintext)
}

// CipherInfo describes the active cipher parameters.
type CipherInfo struct {
	Curve   string `json:"curve"`
	KDF     string `json:"kdf"`
	Cipher  string `json:"cipher"`
	MAC     string `json:"mac"`
	TagSize int    `json:"tag_size"`
}

func (vc *VoteCipher) Info() CipherInfo {
	return CipherInfo{
		Curve:   "secp256k1",
		KDF:     "HKDF-SHA256",
		Cipher:  "AES-256-CTR",
		MAC:     "HMAC-SHA256",
		TagSize: sha256.Size,
	}
}

// sharedSecret returns the 32-byte big-endian X coordinate of the ECDH point.
func sharedSecret(publicKey *ecdsa.PublicKey, scalar *big.Int) []byte {
	x, _ := crypto.S256().ScalarMult(publicKey.X, publicKey.Y, scalar.Bytes())
	return x.FillBytes(make([]byte, 32))
}

// deriveKeys stretches the shared secret into the encryption key, the MAC
// key and the CTR IV. The IV may be deterministic per secret because every
// encryption uses a fresh ephemeral key.
func deriveKeys(secret []byte) (encKey, macKey, iv []byte, err error) {
	kdf := hkdf.New(sha256.New, secret, nil, []byte(kdfInfo))
	material := make([]byte, 32+32+aes.BlockSize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, nil, nil, err
	}
	return material[:32], material[32:64], material[64:], nil
}

// encodeBallot writes the ballot in the stable wire layout: big-endian
// uint16 candidate length, candidate bytes, big-endian int64 cast time.
func encodeBallot(b models.Ballot) ([]byte, error) {
	if b.CandidateID == "" || len(b.CandidateID) > maxCandidateLen {
		return nil, ErrEncoding
	}
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, uint16(len(b.CandidateID)))
	buf.WriteString(b.CandidateID)
	binary.Write(buf, binary.BigEndian, b.CastAt)
	return buf.Bytes(), nil
}

func decodeBallot(data []byte) (*models.Ballot, error) {
	if len(data) < 2 {
		return nil, ErrDecoding
	}
	n := int(binary.BigEndian.Uint16(data[:2]))
	if n == 0 || n > maxCandidateLen || len(data) != 2+n+8 {
		return nil, ErrDecoding
	}
	return &models.Ballot{
		CandidateID: string(data[2 : 2+n]),
		CastAt:      int64(binary.BigEndian.Uint64(data[2+n:])),
	}, nil
}
