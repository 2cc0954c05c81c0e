// File: encryption/keys.go
package encryption

import (
	"crypto/ecdsa"
	"encoding/json"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ElectionCredentials is the on-disk shape of the election key pair. The
// private key stays with the tallying authority; only the public key may be
// shared with ballot submitters.
type ElectionCredentials struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// GenerateKey creates a fresh secp256k1 election key pair. Exactly one pair
// exists per election instance; there is no rotation during a run.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// LoadOrGenerateKey restores the election key pair from path, generating and
// saving a new one when no credentials file exists yet.
func LoadOrGenerateKey(path string) (*ecdsa.PrivateKey, error) {
	if data, err := os.ReadFile(path); err == nil {
		var creds ElectionCredentials
		if err := json.Unmarshal(data, &creds); err != nil {
			return nil, errors.Wrap(err, "failed to parse election credentials")
		}

		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(creds.PrivateKey, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to restore election private key")
		}
		return privateKey, nil
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate election key")
	}

	creds := ElectionCredentials{
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(&privateKey.PublicKey)),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(privateKey)),
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal election credentials")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, errors.Wrap(err, "failed to save election credentials")
	}

	return privateKey, nil
}
