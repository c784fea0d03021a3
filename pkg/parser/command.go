package parser

import (
	"fmt"
	"regexp"
	"strings"

	"buyback-keeper/pkg/types"
)

var swapPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)\s+([A-Z0-9.]+)\s+(?:TO|FOR)\s+([A-Z0-9.]+)$`)

// ParseSwapCommand parses a swap command
// Examples:
//   - "swap 100 USDC to GHST"
//   - "2500.5 USDC for GHST"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 100 USDC to GHST')")
	}

	return &types.SwapRequest{
		SourceAmount: matches[1],
		SourceToken:  NormalizeTokenSymbol(matches[2]),
		DestToken:    NormalizeTokenSymbol(matches[3]),
	}, nil
}

// NormalizeTokenSymbol maps common aliases onto registry symbols
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"USDC.E": "USDC",
		"USDCE":  "USDC",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
