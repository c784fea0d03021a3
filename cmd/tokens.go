package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"buyback-keeper/pkg/tokens"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List all supported tokens",
	Long: `List the tokens in the built-in registry, grouped by network.

You can filter tokens by network or symbol.

Examples:
  buyback-keeper list-tokens
  buyback-keeper list-tokens --network 137
  buyback-keeper list-tokens --symbol USDC`,
	Args: cobra.NoArgs,
	Run:  runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

type networkTokens struct {
	Network int64          `json:"network"`
	Tokens  []tokens.Token `json:"tokens"`
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	network, _ := cmd.Flags().GetInt64("network")

	registry := tokens.DefaultRegistry()

	var groups []networkTokens
	for _, n := range registry.Networks() {
		if network > 0 && n != network {
			continue
		}

		var filtered []tokens.Token
		for _, token := range registry.Tokens(n) {
			if filterSymbol != "" && !strings.Contains(strings.ToUpper(token.Symbol), strings.ToUpper(filterSymbol)) {
				continue
			}
			filtered = append(filtered, token)
		}
		if len(filtered) > 0 {
			groups = append(groups, networkTokens{Network: n, Tokens: filtered})
		}
	}

	if jsonOutput {
		printJSON(groups)
		return
	}
	displayTokens(groups)
}

func displayTokens(groups []networkTokens) {
	if len(groups) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	total := 0
	for _, g := range groups {
		color.Cyan("\nNETWORK %d", g.Network)
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range g.Tokens {
			fmt.Printf("  %-10s  %2d decimals  %s\n",
				color.YellowString(token.Symbol),
				token.Decimals,
				color.HiBlackString(token.Address.Hex()))
		}
		total += len(g.Tokens)
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d networks\n\n", total, len(groups))
}
