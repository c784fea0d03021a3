package tokens

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name     string
		symbol   string
		decimals uint8
		address  string
	}{
		{name: "usdc", symbol: "USDC", decimals: 6, address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"},
		{name: "ghst", symbol: "GHST", decimals: 18, address: "0x385Eeac5cB85A38A9a07A70c73e0a3271CfB54A7"},
		{name: "lower case symbol", symbol: "usdc", decimals: 6, address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := r.Resolve(Polygon, tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.decimals, tok.Decimals)
			assert.Equal(t, common.HexToAddress(tt.address), tok.Address)
		})
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve(Polygon, "WETH")
	var unknown *UnknownTokenError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "WETH", unknown.Symbol)
	assert.Equal(t, Polygon, unknown.Network)

	_, err = r.Resolve(1, "USDC")
	assert.True(t, errors.As(err, &unknown))
}

func TestRegistry_DecimalsInRange(t *testing.T) {
	r := DefaultRegistry()

	for _, network := range r.Networks() {
		for _, listed := range r.Tokens(network) {
			tok, err := r.Resolve(network, listed.Symbol)
			require.NoError(t, err)
			assert.LessOrEqual(t, tok.Decimals, uint8(MaxDecimals), "token %s", tok.Symbol)
		}
	}
}

func TestRegistry_TokensSorted(t *testing.T) {
	list := DefaultRegistry().Tokens(Polygon)
	require.Len(t, list, 2)
	assert.Equal(t, "GHST", list[0].Symbol)
	assert.Equal(t, "USDC", list[1].Symbol)

	assert.Empty(t, DefaultRegistry().Tokens(1))
}

func TestNewRegistry_Validation(t *testing.T) {
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")

	tests := []struct {
		name string
		data map[int64][]Token
	}{
		{name: "empty symbol", data: map[int64][]Token{1: {{Address: addr, Decimals: 18}}}},
		{name: "zero address", data: map[int64][]Token{1: {{Symbol: "AAA", Decimals: 18}}}},
		{name: "too many decimals", data: map[int64][]Token{1: {{Symbol: "AAA", Address: addr, Decimals: 31}}}},
		{name: "duplicate symbol", data: map[int64][]Token{1: {
			{Symbol: "AAA", Address: addr, Decimals: 18},
			{Symbol: "aaa", Address: addr, Decimals: 6},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.data)
			assert.Error(t, err)
		})
	}
}
