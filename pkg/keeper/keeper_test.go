package keeper

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"buyback-keeper/pkg/amount"
	"buyback-keeper/pkg/buyback"
	"buyback-keeper/pkg/client"
	"buyback-keeper/pkg/swap"
	"buyback-keeper/pkg/tokens"
	"buyback-keeper/pkg/types"
)

const buybackAddress = "0xc9759f3E3ac8AF38BF75e052F8F6c060000281C7"

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Read(ctx context.Context) (*buyback.State, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*buyback.State)
	return state, args.Error(1)
}

type mockSwapper struct {
	mock.Mock
}

func (m *mockSwapper) GetSwapTransaction(ctx context.Context, req types.SwapRequest) (*types.TransactionPayload, error) {
	args := m.Called(ctx, req)
	payload, _ := args.Get(0).(*types.TransactionPayload)
	return payload, args.Error(1)
}

func settings() Settings {
	return Settings{
		SourceToken: "USDC",
		DestToken:   "GHST",
		Network:     tokens.Polygon,
		Trader:      buybackAddress,
	}
}

func eligible() *buyback.State {
	return &buyback.State{
		Slippage:  big.NewInt(1),
		BuyAmount: big.NewInt(100_000_000),
		CanBuy:    true,
		NextBuy:   big.NewInt(0),
	}
}

func TestKeeper_CheckExecutable(t *testing.T) {
	reader := new(mockReader)
	swapper := new(mockSwapper)

	payload := &types.TransactionPayload{
		To:      "0xDEF171Fe48CF0115B1d80b88dc8eAB59176FEe57",
		From:    buybackAddress,
		Data:    "0xa94e78ef0000000000000000000000000000000000000000000000000000000000000001",
		ChainID: 137,
	}

	reader.On("Read", mock.Anything).Return(eligible(), nil)
	swapper.On("GetSwapTransaction", mock.Anything, mock.MatchedBy(func(req types.SwapRequest) bool {
		return req.SourceToken == "USDC" &&
			req.DestToken == "GHST" &&
			req.SourceAmount == "100" &&
			req.Slippage.Equal(decimal.NewFromInt(1)) &&
			req.Trader == buybackAddress &&
			req.Network == tokens.Polygon
	})).Return(payload, nil)

	k := New(reader, swapper, tokens.DefaultRegistry(), settings(), zaptest.NewLogger(t))
	result := k.Check(context.Background())

	require.True(t, result.Executable, result.Reason)
	assert.Same(t, payload, result.Payload)

	callData, err := hexutil.Decode(result.CallData)
	require.NoError(t, err)
	txData, err := buyback.DecodeBuyCall(callData)
	require.NoError(t, err)
	assert.Equal(t, payload.Data, hexutil.Encode(txData))

	reader.AssertExpectations(t)
	swapper.AssertExpectations(t)
}

func TestKeeper_CheckSkips(t *testing.T) {
	tests := []struct {
		name       string
		state      *buyback.State
		readErr    error
		wantReason string
	}{
		{name: "rpc failure", readErr: errors.New("dial tcp: connection refused"), wantReason: ReasonRPCFailed},
		{name: "not eligible", state: &buyback.State{Slippage: big.NewInt(1), BuyAmount: big.NewInt(1), CanBuy: false}, wantReason: ReasonNotElapsed},
		{name: "zero amount", state: &buyback.State{Slippage: big.NewInt(1), BuyAmount: big.NewInt(0), CanBuy: true}, wantReason: ReasonZeroAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(mockReader)
			swapper := new(mockSwapper)
			reader.On("Read", mock.Anything).Return(tt.state, tt.readErr)

			result := New(reader, swapper, tokens.DefaultRegistry(), settings(), nil).Check(context.Background())

			assert.False(t, result.Executable)
			assert.Nil(t, result.Payload)
			assert.Empty(t, result.CallData)
			assert.Equal(t, tt.wantReason, result.Reason)
			swapper.AssertNotCalled(t, "GetSwapTransaction", mock.Anything, mock.Anything)
		})
	}
}

func TestKeeper_CheckPipelineFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{
			name:       "quote failure",
			err:        &swap.StageError{Stage: swap.StageFetchQuote, Err: &client.QuoteFetchError{StatusCode: 500, Detail: "internal"}},
			wantPrefix: "Paraswap API calls failed: quote unavailable",
		},
		{
			name:       "timeout",
			err:        &swap.StageError{Stage: swap.StageBuildTransaction, Err: &swap.TimeoutError{Stage: swap.StageBuildTransaction}},
			wantPrefix: "Paraswap API calls failed: timed out during build_transaction",
		},
		{
			name:       "slippage misconfigured",
			err:        &swap.StageError{Stage: swap.StageConvertAmount, Err: &amount.InvalidSlippageError{Value: decimal.NewFromInt(100)}},
			wantPrefix: "Swap request rejected: invalid slippage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(mockReader)
			swapper := new(mockSwapper)
			reader.On("Read", mock.Anything).Return(eligible(), nil)
			swapper.On("GetSwapTransaction", mock.Anything, mock.Anything).Return(nil, tt.err)

			result := New(reader, swapper, tokens.DefaultRegistry(), settings(), nil).Check(context.Background())

			assert.False(t, result.Executable)
			assert.Nil(t, result.Payload)
			assert.True(t, strings.HasPrefix(result.Reason, tt.wantPrefix), result.Reason)
		})
	}
}

func TestKeeper_CheckMalformedCalldata(t *testing.T) {
	reader := new(mockReader)
	swapper := new(mockSwapper)
	reader.On("Read", mock.Anything).Return(eligible(), nil)
	swapper.On("GetSwapTransaction", mock.Anything, mock.Anything).
		Return(&types.TransactionPayload{To: "0x1", Data: "not-hex"}, nil)

	result := New(reader, swapper, tokens.DefaultRegistry(), settings(), nil).Check(context.Background())

	assert.False(t, result.Executable)
	assert.Nil(t, result.Payload)
	assert.Equal(t, "Paraswap API calls failed: malformed transaction data", result.Reason)
}

func TestKeeper_CheckUnknownSourceToken(t *testing.T) {
	reader := new(mockReader)
	swapper := new(mockSwapper)
	reader.On("Read", mock.Anything).Return(eligible(), nil)

	s := settings()
	s.SourceToken = "DAI"

	result := New(reader, swapper, tokens.DefaultRegistry(), s, nil).Check(context.Background())

	assert.False(t, result.Executable)
	assert.Contains(t, result.Reason, "token DAI not available on network 137")
	swapper.AssertNotCalled(t, "GetSwapTransaction", mock.Anything, mock.Anything)
}
