// File: cmd/demo.go
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ballotchain/blockchain"
	"ballotchain/config"
	"ballotchain/service"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a simulated election end to end",
	Long: `Submits ballots for a set of simulated voters, mines them into
blocks, demonstrates duplicate-vote rejection and prints the decrypted
tally.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("voters", 100, "number of simulated voters")
	demoCmd.Flags().StringSlice("candidates", []string{"alice", "bob", "carol"}, "candidate identifiers")
	demoCmd.Flags().Int("ballots-per-block", 25, "ballots mined into each block")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	voters, _ := cmd.Flags().GetInt("voters")
	candidates, _ := cmd.Flags().GetStringSlice("candidates")
	perBlock, _ := cmd.Flags().GetInt("ballots-per-block")
	if voters < 1 || len(candidates) == 0 || perBlock < 1 {
		return errors.New("voters, candidates and ballots-per-block must all be positive")
	}

	svc, err := service.NewElectionService(cfg, slog.Default())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	info := svc.CipherInfo()
	color.Info.Println("ballotchain demo election")
	color.Printf("Cipher  : %s over %s, %s\n", info.Cipher, info.Curve, info.MAC)

	bar := progressbar.Default(int64(voters))
	for i := 0; i < voters; i++ {
		candidate := candidates[rand.Intn(len(candidates))]
		if err := svc.SubmitBallot(fmt.Sprintf("voter-%05d", i), candidate); err != nil {
			return err
		}
		bar.Add(1)
		if (i+1)%perBlock == 0 {
			if _, err := svc.MineNextBlock(ctx); err != nil {
				return err
			}
		}
	}

	// A repeat submission must bounce no matter the candidate.
	if err := svc.SubmitBallot("voter-00000", candidates[0]); errors.Is(err, blockchain.ErrDuplicateVote) {
		color.Printf("Duplicate submission rejected: <suc>OK</>\n")
	} else {
		return errors.New("duplicate submission was not rejected")
	}

	for {
		if _, err := svc.MineNextBlock(ctx); err != nil {
			if errors.Is(err, blockchain.ErrNoPending) {
				break
			}
			return err
		}
	}

	summary := svc.GetChainSummary()
	color.Printf("Blocks  : <suc>%d</>  valid: <suc>%v</>  difficulty: <suc>%d bits</>\n",
		summary.Length, summary.IsValid, summary.Difficulty)

	tally, err := svc.GetTally()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tally.Counts))
	for name := range tally.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		color.Printf("%-16s <suc>%d</>  (%.1f%%)\n", name, tally.Counts[name], tally.Percentages[name])
	}
	color.Printf("Ballots : <suc>%d</> valid, %d corrupted\n", tally.TotalValid, tally.TotalCorrupted)
	return nil
}
