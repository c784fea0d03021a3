package buyback

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Subset of the buyback contract ABI the keeper needs
const contractABI = `[
	{"inputs":[],"name":"slippage","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"buyAmount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"canBuy","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getNextBuy","outputs":[{"internalType":"uint256","name":"_nextBuy","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes","name":"txData","type":"bytes"}],"name":"buyGHST","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		panic(fmt.Sprintf("failed to parse buyback ABI: %v", err))
	}
	return parsed
}

// State is the on-chain configuration read at the start of a keeper cycle
type State struct {
	Slippage  *big.Int // Percent
	BuyAmount *big.Int // Source token base units
	CanBuy    bool
	NextBuy   *big.Int // Unix time of the next eligible buy
}

// Reader performs read-only calls against the buyback contract
type Reader struct {
	caller  ethereum.ContractCaller
	address common.Address
}

// NewReader creates a reader for the contract at address
func NewReader(caller ethereum.ContractCaller, address common.Address) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is required")
	}
	if address == (common.Address{}) {
		return nil, fmt.Errorf("buyback contract address is required")
	}
	return &Reader{caller: caller, address: address}, nil
}

// Read fetches slippage, buy amount, eligibility and next-buy time at the latest block.
// Each value is a single eth_call; failures are returned as-is without retry.
func (r *Reader) Read(ctx context.Context) (*State, error) {
	slippage, err := r.callUint(ctx, "slippage")
	if err != nil {
		return nil, err
	}

	buyAmount, err := r.callUint(ctx, "buyAmount")
	if err != nil {
		return nil, err
	}

	out, err := r.call(ctx, "canBuy")
	if err != nil {
		return nil, err
	}
	canBuy, ok := out[0].(bool)
	if !ok {
		return nil, fmt.Errorf("canBuy returned %T, expected bool", out[0])
	}

	nextBuy, err := r.callUint(ctx, "getNextBuy")
	if err != nil {
		return nil, err
	}

	return &State{
		Slippage:  slippage,
		BuyAmount: buyAmount,
		CanBuy:    canBuy,
		NextBuy:   nextBuy,
	}, nil
}

func (r *Reader) callUint(ctx context.Context, method string) (*big.Int, error) {
	out, err := r.call(ctx, method)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, expected uint256", method, out[0])
	}
	return v, nil
}

func (r *Reader) call(ctx context.Context, method string) ([]interface{}, error) {
	data, err := parsedABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &r.address,
		Data: data,
	}

	result, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := parsedABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out, nil
}

// EncodeBuyCall packs buyGHST(txData), the call the automation framework sends
// to the buyback contract with the aggregator's swap calldata
func EncodeBuyCall(txData []byte) ([]byte, error) {
	data, err := parsedABI.Pack("buyGHST", txData)
	if err != nil {
		return nil, fmt.Errorf("failed to pack buyGHST: %w", err)
	}
	return data, nil
}

// DecodeBuyCall extracts txData from buyGHST calldata
func DecodeBuyCall(callData []byte) ([]byte, error) {
	method, ok := parsedABI.Methods["buyGHST"]
	if !ok || len(callData) < 4 || !bytes.Equal(callData[:4], method.ID) {
		return nil, fmt.Errorf("calldata is not a buyGHST call")
	}

	args, err := method.Inputs.Unpack(callData[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to unpack buyGHST: %w", err)
	}
	txData, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("buyGHST argument is %T, expected bytes", args[0])
	}
	return txData, nil
}
