// File: config/config.go
package config

import (
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// A difficulty above this makes nonce-search latency effectively unbounded
// on a single host.
const MaxDifficulty = 24

// Config holds the election runtime parameters. Values come from flags, the
// BALLOTCHAIN_* environment and an optional config file, in viper's usual
// precedence order.
type Config struct {
	// Difficulty is the number of leading zero bits a block digest must have.
	Difficulty uint8 `mapstructure:"difficulty"`
	// MineWorkers is the number of parallel nonce-search workers per block.
	MineWorkers int `mapstructure:"mine-workers"`
	// MixBatchSize is the mix buffer size; 1 disables mixing.
	MixBatchSize int `mapstructure:"mix-batch-size"`
	// KeyFile is the election credentials path; empty keeps the key pair
	// in memory only.
	KeyFile string `mapstructure:"key-file"`
	// Salt is the hex-encoded election salt; empty generates a fresh one.
	Salt string `mapstructure:"salt"`
	// MineInterval is the background miner cadence.
	MineInterval time.Duration `mapstructure:"mine-interval"`
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Difficulty > MaxDifficulty {
		return errors.Errorf("difficulty %d exceeds maximum %d", c.Difficulty, MaxDifficulty)
	}
	if c.MineWorkers < 1 {
		return errors.New("mine-workers must be at least 1")
	}
	if c.MixBatchSize < 1 {
		return errors.New("mix-batch-size must be at least 1")
	}
	if c.Salt != "" {
		if _, err := hex.DecodeString(c.Salt); err != nil {
			return errors.Wrap(err, "salt must be hex encoded")
		}
	}
	if c.MineInterval <= 0 {
		return errors.New("mine-interval must be positive")
	}
	return nil
}

// SaltBytes decodes the configured salt, or returns nil when unset.
func (c *Config) SaltBytes() []byte {
	if c.Salt == "" {
		return nil
	}
	salt, err := hex.DecodeString(c.Salt)
	if err != nil {
		return nil
	}
	return salt
}
