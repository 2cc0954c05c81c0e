// File: cmd/root.go
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ballotchain",
	Short: "Anonymous, tamper-evident ballot ledger",
	Long: `ballotchain encrypts ballots to a single election key, anonymizes
voter identities into one-way tags and records the resulting transactions in
a proof-of-vote hash chain. Tallies are recomputed from the chain by anyone
holding the decryption key.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log-level"))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Uint8("difficulty", 12, "leading zero bits required of a block digest")
	flags.Int("mine-workers", 4, "parallel nonce-search workers per block")
	flags.Int("mix-batch-size", 1, "transactions shuffled together before entering the pending pool")
	flags.String("key-file", "", "election credentials file, generated when missing (default: in-memory key)")
	flags.String("salt", "", "hex-encoded election salt (default: generated at startup)")
	flags.Duration("mine-interval", 5*time.Second, "background miner cadence")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	viper.SetEnvPrefix("ballotchain")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
