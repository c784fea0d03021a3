package keeper

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"buyback-keeper/pkg/amount"
	"buyback-keeper/pkg/buyback"
	"buyback-keeper/pkg/client"
	"buyback-keeper/pkg/swap"
	"buyback-keeper/pkg/types"
)

// Reasons reported when a cycle is skipped
const (
	ReasonRPCFailed   = "RPC call failed"
	ReasonNotElapsed  = "Buyback period has not elapsed"
	ReasonZeroAmount  = "Buy amount is zero"
	reasonAPIFailed   = "Paraswap API calls failed"
	reasonSwapInvalid = "Swap request rejected"
)

// ConfigReader supplies the buyback contract's current configuration
type ConfigReader interface {
	Read(ctx context.Context) (*buyback.State, error)
}

// Swapper builds the swap transaction for a request
type Swapper interface {
	GetSwapTransaction(ctx context.Context, req types.SwapRequest) (*types.TransactionPayload, error)
}

// Settings are the static parts of every buyback swap
type Settings struct {
	SourceToken string
	DestToken   string
	Network     int64
	Trader      string // Buyback contract address; it executes the swap
	Receiver    string
	Partner     string
}

// Keeper decides once per cycle whether the buyback should run and prepares the call
type Keeper struct {
	reader   ConfigReader
	swapper  Swapper
	resolver swap.TokenResolver
	settings Settings
	logger   *zap.Logger
}

// New creates a keeper
func New(reader ConfigReader, swapper Swapper, resolver swap.TokenResolver, settings Settings, logger *zap.Logger) *Keeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Keeper{
		reader:   reader,
		swapper:  swapper,
		resolver: resolver,
		settings: settings,
		logger:   logger,
	}
}

// Check runs one cycle. It never returns a payload unless the whole pipeline succeeded.
func (k *Keeper) Check(ctx context.Context) types.Result {
	state, err := k.reader.Read(ctx)
	if err != nil {
		k.logger.Warn("failed to read buyback contract", zap.Error(err))
		return types.NotExecutable(ReasonRPCFailed)
	}

	k.logger.Debug("buyback contract state",
		zap.Bool("can_buy", state.CanBuy),
		zap.Stringer("slippage", state.Slippage),
		zap.Stringer("buy_amount", state.BuyAmount),
	)

	if !state.CanBuy {
		return types.NotExecutable(ReasonNotElapsed)
	}
	if state.BuyAmount == nil || state.BuyAmount.Sign() <= 0 {
		return types.NotExecutable(ReasonZeroAmount)
	}
	if state.Slippage == nil {
		return types.NotExecutable(ReasonRPCFailed)
	}

	src, err := k.resolver.Resolve(k.settings.Network, k.settings.SourceToken)
	if err != nil {
		return types.NotExecutable(fmt.Sprintf("%s: %s", reasonSwapInvalid, swap.Reason(err)))
	}

	human, err := amount.FromBaseUnits(state.BuyAmount.String(), src.Decimals)
	if err != nil {
		return types.NotExecutable(fmt.Sprintf("%s: %s", reasonSwapInvalid, swap.Reason(err)))
	}

	req := types.SwapRequest{
		SourceToken:  k.settings.SourceToken,
		DestToken:    k.settings.DestToken,
		SourceAmount: human,
		Network:      k.settings.Network,
		Slippage:     decimal.NewFromBigInt(state.Slippage, 0),
		Trader:       k.settings.Trader,
		Receiver:     k.settings.Receiver,
		Partner:      k.settings.Partner,
	}

	payload, err := k.swapper.GetSwapTransaction(ctx, req)
	if err != nil {
		return types.NotExecutable(fmt.Sprintf("%s: %s", failureLabel(err), swap.Reason(err)))
	}

	txData, err := hexutil.Decode(payload.Data)
	if err != nil {
		k.logger.Warn("aggregator returned non-hex calldata", zap.Error(err))
		return types.NotExecutable(reasonAPIFailed + ": malformed transaction data")
	}

	callData, err := buyback.EncodeBuyCall(txData)
	if err != nil {
		return types.NotExecutable(reasonAPIFailed + ": " + err.Error())
	}

	k.logger.Info("buyback executable",
		zap.String("amount", human),
		zap.String("src_token", k.settings.SourceToken),
		zap.String("dest_token", k.settings.DestToken),
	)

	return types.Result{
		Executable: true,
		Payload:    payload,
		CallData:   hexutil.Encode(callData),
	}
}

func failureLabel(err error) string {
	var (
		quote    *client.QuoteFetchError
		build    *client.TransactionBuildError
		mismatch *client.RouteMismatchError
		timeout  *swap.TimeoutError
	)
	if errors.As(err, &quote) || errors.As(err, &build) || errors.As(err, &mismatch) || errors.As(err, &timeout) {
		return reasonAPIFailed
	}
	return reasonSwapInvalid
}
