package cmd

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one buyback cycle",
	Long: `Read the buyback contract configuration, and if a buy is due build the swap
transaction and the buyGHST call data for it.

Examples:
  buyback-keeper check
  buyback-keeper check --json`,
	Args: cobra.NoArgs,
	Run:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, log, err := setup(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	k, closeRPC, err := newKeeper(cmd.Context(), cfg, log)
	if err != nil {
		printError(err)
		exit(log, 1)
	}
	defer closeRPC()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking buyback contract..."
		s.Start()
	}

	result := k.Check(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	displayResult(result, nil)
}
