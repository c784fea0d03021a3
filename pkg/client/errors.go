package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxDetailLength = 512

// QuoteFetchError is returned when the price endpoint cannot produce a route
type QuoteFetchError struct {
	StatusCode int    // HTTP status, 0 when the request never got a response
	Detail     string // Upstream error message or body
	Err        error
}

func (e *QuoteFetchError) Error() string {
	return formatAPIError("quote fetch failed", e.StatusCode, e.Detail, e.Err)
}

func (e *QuoteFetchError) Unwrap() error { return e.Err }

// TransactionBuildError is returned when the transaction endpoint rejects a build
type TransactionBuildError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransactionBuildError) Error() string {
	return formatAPIError("transaction build failed", e.StatusCode, e.Detail, e.Err)
}

func (e *TransactionBuildError) Unwrap() error { return e.Err }

// RouteMismatchError is returned when a price route is replayed for a different
// pair, amount or network than it was quoted for
type RouteMismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *RouteMismatchError) Error() string {
	return fmt.Sprintf("price route mismatch on %s: requested %s, route has %s", e.Field, e.Want, e.Got)
}

func formatAPIError(prefix string, status int, detail string, err error) string {
	var b strings.Builder
	b.WriteString(prefix)
	if status != 0 {
		fmt.Fprintf(&b, " (status %d)", status)
	}
	if detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// extractDetail pulls the aggregator's error message out of a response body,
// falling back to the raw body
func extractDetail(body []byte) string {
	var errorResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if errorResp.Error != "" {
			return errorResp.Error
		}
		if errorResp.Message != "" {
			return errorResp.Message
		}
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > maxDetailLength {
		cut := maxDetailLength
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		detail = detail[:cut] + "..."
	}
	return detail
}
