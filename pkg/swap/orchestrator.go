package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"buyback-keeper/pkg/amount"
	"buyback-keeper/pkg/client"
	"buyback-keeper/pkg/tokens"
	"buyback-keeper/pkg/types"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/mock_swap.go -package=mocks

// Stage is one step of the quote-and-build pipeline
type Stage string

const (
	StageResolveTokens    Stage = "resolve_tokens"
	StageConvertAmount    Stage = "convert_amount"
	StageFetchQuote       Stage = "fetch_quote"
	StageComputeMinimum   Stage = "compute_minimum"
	StageBuildTransaction Stage = "build_transaction"
	StageDone             Stage = "done"
)

// TokenResolver looks up token metadata
type TokenResolver interface {
	Resolve(network int64, symbol string) (tokens.Token, error)
}

// Quoter fetches a priced route from the aggregator
type Quoter interface {
	GetRate(ctx context.Context, params client.RateParams) (*client.PricedRoute, error)
}

// Builder turns a priced route into a transaction payload
type Builder interface {
	BuildSwap(ctx context.Context, params client.BuildParams) (*types.TransactionPayload, error)
}

// Orchestrator runs resolve -> convert -> quote -> minimum -> build for one request.
// It holds no per-request state and never retries.
type Orchestrator struct {
	resolver TokenResolver
	quoter   Quoter
	builder  Builder
	logger   *zap.Logger
	timeout  time.Duration
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger that receives stage transition events
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout bounds a whole GetSwapTransaction call. Zero means no bound
// beyond the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

// New creates an orchestrator over the given collaborators
func New(resolver TokenResolver, quoter Quoter, builder Builder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		quoter:   quoter,
		builder:  builder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetSwapTransaction prices the request and builds its transaction. On failure
// the error is a *StageError wrapping one of the typed pipeline errors and no
// payload is returned.
func (o *Orchestrator) GetSwapTransaction(ctx context.Context, req types.SwapRequest) (*types.TransactionPayload, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	log := o.logger.With(
		zap.String("src_token", req.SourceToken),
		zap.String("dest_token", req.DestToken),
		zap.String("src_amount", req.SourceAmount),
		zap.Int64("network", req.Network),
		zap.String("slippage", req.Slippage.String()),
	)
	start := time.Now()

	fail := func(stage Stage, err error) error {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Stage: stage, Err: ctx.Err()}
		}
		log.Warn("swap pipeline failed", zap.String("stage", string(stage)), zap.Error(err))
		return &StageError{Stage: stage, Err: err}
	}
	enter := func(stage Stage) error {
		if err := ctx.Err(); err != nil {
			return fail(stage, err)
		}
		log.Debug("entering stage", zap.String("stage", string(stage)))
		return nil
	}

	if err := enter(StageResolveTokens); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, fail(StageResolveTokens, err)
	}
	srcToken, err := o.resolver.Resolve(req.Network, req.SourceToken)
	if err != nil {
		return nil, fail(StageResolveTokens, err)
	}
	destToken, err := o.resolver.Resolve(req.Network, req.DestToken)
	if err != nil {
		return nil, fail(StageResolveTokens, err)
	}

	if err := enter(StageConvertAmount); err != nil {
		return nil, err
	}
	if err := amount.ValidateSlippage(req.Slippage); err != nil {
		return nil, fail(StageConvertAmount, err)
	}
	srcAmount, err := amount.ToBaseUnits(req.SourceAmount, srcToken.Decimals)
	if err != nil {
		return nil, fail(StageConvertAmount, err)
	}
	if srcAmount == "0" {
		return nil, fail(StageConvertAmount, &amount.InvalidAmountError{Value: req.SourceAmount, Reason: "rounds to zero base units"})
	}

	if err := enter(StageFetchQuote); err != nil {
		return nil, err
	}
	route, err := o.quoter.GetRate(ctx, client.RateParams{
		SrcToken:  srcToken,
		DestToken: destToken,
		SrcAmount: srcAmount,
		Network:   req.Network,
		Partner:   req.Partner,
	})
	if err != nil {
		return nil, fail(StageFetchQuote, err)
	}

	if err := enter(StageComputeMinimum); err != nil {
		return nil, err
	}
	minAmount, err := amount.MinOutput(route.DestAmount, req.Slippage)
	if err != nil {
		return nil, fail(StageComputeMinimum, err)
	}

	if err := enter(StageBuildTransaction); err != nil {
		return nil, err
	}
	payload, err := o.builder.BuildSwap(ctx, client.BuildParams{
		SrcToken:  srcToken,
		DestToken: destToken,
		SrcAmount: srcAmount,
		MinAmount: minAmount,
		Route:     route,
		Network:   req.Network,
		Trader:    req.Trader,
		Receiver:  req.Receiver,
		Partner:   req.Partner,
	})
	if err != nil {
		return nil, fail(StageBuildTransaction, err)
	}

	log.Info("swap transaction built",
		zap.String("stage", string(StageDone)),
		zap.String("src_amount_base", srcAmount),
		zap.String("quoted_amount", route.DestAmount),
		zap.String("min_amount", minAmount),
		zap.String("to", payload.To),
		zap.Duration("elapsed", time.Since(start)),
	)

	return payload, nil
}

// Evaluate runs the pipeline and reports the outcome in the caller-facing result shape
func (o *Orchestrator) Evaluate(ctx context.Context, req types.SwapRequest) types.Result {
	payload, err := o.GetSwapTransaction(ctx, req)
	if err != nil {
		return types.NotExecutable(Reason(err))
	}
	return types.Result{Executable: true, Payload: payload}
}

func validateRequest(req types.SwapRequest) error {
	if strings.TrimSpace(req.SourceToken) == "" {
		return fmt.Errorf("%w: source token is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.DestToken) == "" {
		return fmt.Errorf("%w: destination token is required", ErrInvalidRequest)
	}
	if strings.EqualFold(strings.TrimSpace(req.SourceToken), strings.TrimSpace(req.DestToken)) {
		return fmt.Errorf("%w: source and destination token are the same", ErrInvalidRequest)
	}
	// Trader and receiver go to the aggregator as given; callers check address syntax
	if strings.TrimSpace(req.Trader) == "" {
		return fmt.Errorf("%w: trader is required", ErrInvalidRequest)
	}
	return nil
}
