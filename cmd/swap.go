package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"buyback-keeper/pkg/parser"
	"buyback-keeper/pkg/types"
)

var (
	slippageFlag string
	traderAddr   string
	receiverAddr string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Quote and build a swap transaction",
	Long: `Fetch a Paraswap quote for the given amount and build the swap transaction,
with the minimum output derived from the quote and the slippage tolerance.

The transaction is printed, not sent.

Examples:
  buyback-keeper swap 100 USDC to GHST
  buyback-keeper swap 2500 USDC to GHST --slippage 0.5 --trader 0x123...
  buyback-keeper swap 100 USDC to GHST --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&slippageFlag, "slippage", "1", "Slippage tolerance in percent, below 100")
	swapCmd.Flags().StringVar(&traderAddr, "trader", "", "Address executing the swap (defaults to the buyback contract)")
	swapCmd.Flags().StringVar(&receiverAddr, "receiver", "", "Address receiving the output (optional)")
}

func runSwap(cmd *cobra.Command, args []string) {
	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	slippage, err := decimal.NewFromString(slippageFlag)
	if err != nil {
		printError(fmt.Errorf("invalid slippage %q: %w", slippageFlag, err))
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, log, err := setup(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	swapReq.Network = cfg.Network
	swapReq.Slippage = slippage
	swapReq.Trader = cfg.BuybackAddress
	swapReq.Receiver = cfg.Receiver
	swapReq.Partner = cfg.Partner
	if traderAddr != "" {
		swapReq.Trader = traderAddr
	}
	if receiverAddr != "" {
		swapReq.Receiver = receiverAddr
	}
	if err := validateAddresses(swapReq); err != nil {
		printError(err)
		exit(log, 1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote and building transaction..."
		s.Start()
	}

	result := newOrchestrator(cfg, log).Evaluate(cmd.Context(), *swapReq)
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printJSON(result)
	} else {
		displayResult(result, swapReq)
	}

	if !result.Executable {
		exit(log, 1)
	}
}

// validateAddresses checks the addresses given on the command line
func validateAddresses(req *types.SwapRequest) error {
	if !common.IsHexAddress(req.Trader) {
		return fmt.Errorf("trader %q is not a valid address", req.Trader)
	}
	if req.Receiver != "" && !common.IsHexAddress(req.Receiver) {
		return fmt.Errorf("receiver %q is not a valid address", req.Receiver)
	}
	return nil
}

func printJSON(v interface{}) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}

func displayResult(result types.Result, swapReq *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	if !result.Executable {
		color.Red("                   NOT EXECUTABLE")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("\n  Reason:            %s\n", color.YellowString(result.Reason))
		fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
		return
	}

	color.Green("                  SWAP TRANSACTION")
	fmt.Println(strings.Repeat("=", 60))

	if swapReq != nil {
		fmt.Printf("\n  Sell:              %s %s\n", swapReq.SourceAmount, color.YellowString(swapReq.SourceToken))
		fmt.Printf("  Buy:               %s\n", color.YellowString(swapReq.DestToken))
		fmt.Printf("  Slippage:          %s%%\n", swapReq.Slippage.String())
	}

	p := result.Payload
	fmt.Printf("\n  To:                %s\n", color.CyanString(p.To))
	fmt.Printf("  From:              %s\n", p.From)
	fmt.Printf("  Value:             %s\n", p.Value)
	fmt.Printf("  Gas Price:         %s\n", p.GasPrice)
	if p.Gas != "" {
		fmt.Printf("  Gas Limit:         %s\n", p.Gas)
	}
	fmt.Printf("  Chain ID:          %d\n", p.ChainID)
	fmt.Printf("  Data:              %s\n", truncateString(p.Data, 66))
	if result.CallData != "" {
		fmt.Printf("  Buyback Call:      %s\n", truncateString(result.CallData, 66))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
