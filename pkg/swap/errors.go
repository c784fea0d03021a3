package swap

import (
	"errors"
	"fmt"

	"buyback-keeper/pkg/amount"
	"buyback-keeper/pkg/client"
	"buyback-keeper/pkg/tokens"
)

// ErrInvalidRequest is wrapped by errors for malformed swap requests
var ErrInvalidRequest = errors.New("invalid swap request")

// StageError records which pipeline stage failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// TimeoutError is returned when the invocation deadline passes mid-pipeline
type TimeoutError struct {
	Stage Stage
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out during %s", e.Stage)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Reason turns a pipeline error into the short message reported to the caller
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var (
		timeout  *TimeoutError
		unknown  *tokens.UnknownTokenError
		slippage *amount.InvalidSlippageError
		invalid  *amount.InvalidAmountError
		quote    *client.QuoteFetchError
		build    *client.TransactionBuildError
		mismatch *client.RouteMismatchError
	)

	switch {
	case errors.As(err, &timeout):
		return timeout.Error()
	case errors.As(err, &unknown):
		return unknown.Error()
	case errors.As(err, &slippage):
		return slippage.Error()
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &mismatch):
		return mismatch.Error()
	case errors.As(err, &quote):
		if quote.Detail != "" {
			return "quote unavailable: " + quote.Detail
		}
		return "quote unavailable"
	case errors.As(err, &build):
		if build.Detail != "" {
			return "transaction build failed: " + build.Detail
		}
		return "transaction build failed"
	default:
		return err.Error()
	}
}
