package tokens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Supported networks
const (
	Polygon int64 = 137
)

// MaxDecimals is the largest precision the registry accepts for a token
const MaxDecimals = 30

// Token holds the metadata needed to price and build a swap
type Token struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// UnknownTokenError is returned when a (network, symbol) pair has no registry entry
type UnknownTokenError struct {
	Network int64
	Symbol  string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("token %s not available on network %d", e.Symbol, e.Network)
}

// Registry maps a network to the tokens known on it. It is read-only after construction.
type Registry struct {
	tokens map[int64]map[string]Token
}

var defaultTokens = map[int64][]Token{
	Polygon: {
		{
			Symbol:   "GHST",
			Address:  common.HexToAddress("0x385Eeac5cB85A38A9a07A70c73e0a3271CfB54A7"),
			Decimals: 18,
		},
		{
			Symbol:   "USDC",
			Address:  common.HexToAddress("0x2791bca1f2de4661ed88a30c99a7a9449aa84174"),
			Decimals: 6,
		},
	},
}

// DefaultRegistry returns the registry with the built-in token list
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultTokens)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in token list: %v", err))
	}
	return r
}

// NewRegistry builds a registry from per-network token lists
func NewRegistry(data map[int64][]Token) (*Registry, error) {
	r := &Registry{tokens: make(map[int64]map[string]Token, len(data))}

	for network, list := range data {
		bySymbol := make(map[string]Token, len(list))
		for _, t := range list {
			if t.Symbol == "" {
				return nil, fmt.Errorf("token with empty symbol on network %d", network)
			}
			if t.Address == (common.Address{}) {
				return nil, fmt.Errorf("token %s on network %d has no address", t.Symbol, network)
			}
			if t.Decimals > MaxDecimals {
				return nil, fmt.Errorf("token %s on network %d has %d decimals, max is %d", t.Symbol, network, t.Decimals, MaxDecimals)
			}

			key := strings.ToUpper(t.Symbol)
			if _, exists := bySymbol[key]; exists {
				return nil, fmt.Errorf("duplicate token %s on network %d", t.Symbol, network)
			}
			bySymbol[key] = t
		}
		r.tokens[network] = bySymbol
	}

	return r, nil
}

// Resolve looks up a token by symbol on a network. Symbols are matched case-insensitively.
func (r *Registry) Resolve(network int64, symbol string) (Token, error) {
	t, ok := r.tokens[network][strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, &UnknownTokenError{Network: network, Symbol: symbol}
	}
	return t, nil
}

// Tokens returns every token registered on a network, sorted by symbol
func (r *Registry) Tokens(network int64) []Token {
	list := make([]Token, 0, len(r.tokens[network]))
	for _, t := range r.tokens[network] {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Symbol < list[j].Symbol
	})
	return list
}

// Networks returns the chain IDs the registry has tokens for
func (r *Registry) Networks() []int64 {
	networks := make([]int64, 0, len(r.tokens))
	for n := range r.tokens {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })
	return networks
}
