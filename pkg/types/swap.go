package types

import (
	"github.com/shopspring/decimal"
)

// SwapRequest describes one swap the orchestrator should price and build
type SwapRequest struct {
	SourceToken  string          // Symbol of the token to sell (e.g., "USDC")
	DestToken    string          // Symbol of the token to buy (e.g., "GHST")
	SourceAmount string          // Amount in source token human units (e.g., "100.5")
	Network      int64           // Chain ID the swap runs on
	Slippage     decimal.Decimal // Tolerance in percent, [0, 100)
	Trader       string          // Address executing the swap
	Receiver     string          // Optional address receiving the output
	Partner      string          // Optional aggregator partner tag
}

// TransactionPayload is the ready-to-submit transaction returned by the aggregator
type TransactionPayload struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	GasPrice string `json:"gasPrice"`
	Gas      string `json:"gas,omitempty"`
	ChainID  int64  `json:"chainId"`
}

// Result is what one keeper cycle hands back to the automation framework
type Result struct {
	Executable bool                `json:"executable"`
	Payload    *TransactionPayload `json:"payload,omitempty"`
	// CallData is buyGHST(Payload.Data) ABI-encoded. The automation task targets the
	// buyback contract, which forwards the inner swap data to the aggregator router.
	CallData string `json:"callData,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// NotExecutable builds a Result that tells the caller to skip this cycle
func NotExecutable(reason string) Result {
	return Result{Executable: false, Reason: reason}
}
