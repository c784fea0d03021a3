package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"buyback-keeper/config"
	"buyback-keeper/pkg/buyback"
	"buyback-keeper/pkg/client"
	"buyback-keeper/pkg/keeper"
	"buyback-keeper/pkg/logger"
	"buyback-keeper/pkg/swap"
	"buyback-keeper/pkg/tokens"
)

var rootCmd = &cobra.Command{
	Use:   "buyback-keeper",
	Short: "Prepares buyback swaps through the Paraswap aggregator",
	Long: `buyback-keeper decides whether the on-chain buyback contract should swap this
cycle and, if so, builds the exact swap transaction from a fresh Paraswap quote.
It never signs or broadcasts; the automation framework submits the result.

Examples:
  buyback-keeper check
  buyback-keeper swap 100 USDC to GHST --slippage 1
  buyback-keeper watch --interval 10m
  buyback-keeper list-tokens`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().Int64("network", 0, "Chain ID (overrides config)")
}

// setup loads configuration and builds the logger shared by all commands
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if network, _ := cmd.Flags().GetInt64("network"); network > 0 {
		cfg.Network = network
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Config{Level: level, Stage: cfg.Stage, EnableColor: true})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newHTTPClient has no timeout of its own; the orchestrator bounds each
// call with cfg.Timeout through the request context.
func newHTTPClient() *http.Client {
	return &http.Client{}
}

func newOrchestrator(cfg *config.Config, log *zap.Logger) *swap.Orchestrator {
	apiClient := client.NewClient(cfg.APIURL,
		client.WithHTTPClient(newHTTPClient()),
		client.WithPartner(cfg.Partner),
		client.WithLogger(log.Named("paraswap")),
	)
	return swap.New(tokens.DefaultRegistry(), apiClient, apiClient,
		swap.WithLogger(log.Named("swap")),
		swap.WithTimeout(cfg.Timeout),
	)
}

// newKeeper connects to the RPC endpoint and wires the keeper. The returned
// func closes the RPC connection.
func newKeeper(ctx context.Context, cfg *config.Config, log *zap.Logger) (*keeper.Keeper, func(), error) {
	if err := cfg.ValidateKeeper(); err != nil {
		return nil, nil, err
	}

	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	reader, err := buyback.NewReader(rpc, common.HexToAddress(cfg.BuybackAddress))
	if err != nil {
		rpc.Close()
		return nil, nil, err
	}

	k := keeper.New(reader, newOrchestrator(cfg, log), tokens.DefaultRegistry(), keeper.Settings{
		SourceToken: cfg.SourceToken,
		DestToken:   cfg.DestToken,
		Network:     cfg.Network,
		Trader:      cfg.BuybackAddress,
		Receiver:    cfg.Receiver,
		Partner:     cfg.Partner,
	}, log.Named("keeper"))

	return k, rpc.Close, nil
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

var osExit = os.Exit

// exit flushes the logger before terminating with code
func exit(log *zap.Logger, code int) {
	if log != nil {
		_ = log.Sync()
	}
	osExit(code)
}
