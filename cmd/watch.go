package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"buyback-keeper/pkg/keeper"
	"buyback-keeper/pkg/types"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run buyback cycles on an interval",
	Long: `Run a buyback cycle immediately and then once per interval until interrupted.
Each cycle prints its result; nothing is signed or sent.

Examples:
  buyback-keeper watch
  buyback-keeper watch --interval 10m
  buyback-keeper watch --json`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between cycles (overrides config)")
}

func runWatch(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, log, err := setup(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if watchInterval > 0 {
		cfg.Interval = watchInterval
	}

	k, closeRPC, err := newKeeper(cmd.Context(), cfg, log)
	if err != nil {
		printError(err)
		exit(log, 1)
	}
	defer closeRPC()

	if !jsonOutput {
		color.Cyan("Watching buyback contract %s every %s (Ctrl+C to stop)", cfg.BuybackAddress, cfg.Interval)
	}

	watch(cmd.Context(), k, cfg.Interval, log, func(result types.Result) {
		if jsonOutput {
			printJSON(result)
			return
		}
		fmt.Printf("\n[%s]", time.Now().Format(time.RFC3339))
		displayResult(result, nil)
	})
}

type checker interface {
	Check(ctx context.Context) types.Result
}

var _ checker = (*keeper.Keeper)(nil)

// watch runs a cycle right away and then on every tick until ctx is done
func watch(ctx context.Context, k checker, interval time.Duration, log *zap.Logger, emit func(types.Result)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("started watching", zap.Duration("interval", interval))

	for {
		emit(k.Check(ctx))
		if ctx.Err() != nil {
			log.Info("stopped watching")
			return
		}
		select {
		case <-ctx.Done():
			log.Info("stopped watching")
			return
		case <-ticker.C:
		}
	}
}
