package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"buyback-keeper/pkg/tokens"
	"buyback-keeper/pkg/types"
)

const (
	DefaultBaseURL = "https://apiv5.paraswap.io"
	defaultTimeout = 30 * time.Second
	maxBodySize    = 1 << 20
)

// Client talks to a Paraswap-compatible price and transaction API
type Client struct {
	baseURL    string
	httpClient *http.Client
	partner    string
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPartner sets the default partner tag sent with every request
func WithPartner(partner string) Option {
	return func(c *Client) {
		c.partner = partner
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the aggregator at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateParams identifies the swap to price
type RateParams struct {
	SrcToken  tokens.Token
	DestToken tokens.Token
	SrcAmount string // Base units of SrcToken
	Network   int64
	Partner   string
}

// GetRate fetches the best sell-side route for the given pair and amount.
// It makes exactly one request; failures are never retried.
func (c *Client) GetRate(ctx context.Context, params RateParams) (*PricedRoute, error) {
	query := url.Values{}
	query.Set("srcToken", params.SrcToken.Address.Hex())
	query.Set("destToken", params.DestToken.Address.Hex())
	query.Set("srcDecimals", strconv.Itoa(int(params.SrcToken.Decimals)))
	query.Set("destDecimals", strconv.Itoa(int(params.DestToken.Decimals)))
	query.Set("amount", params.SrcAmount)
	query.Set("side", SideSell)
	query.Set("network", strconv.FormatInt(params.Network, 10))
	query.Set("partner", c.partnerTag(params.Partner))

	pricesURL := c.baseURL + "/prices/?" + query.Encode()
	c.logger.Debug("requesting price route", zap.String("url", pricesURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pricesURL, nil)
	if err != nil {
		return nil, &QuoteFetchError{Detail: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, &QuoteFetchError{StatusCode: status, Detail: "request failed", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &QuoteFetchError{StatusCode: status, Detail: extractDetail(body)}
	}

	var resp struct {
		PriceRoute *PricedRoute `json:"priceRoute"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &QuoteFetchError{StatusCode: status, Detail: "malformed price response", Err: err}
	}
	if resp.PriceRoute == nil {
		return nil, &QuoteFetchError{StatusCode: status, Detail: "response has no priceRoute"}
	}
	if err := resp.PriceRoute.validate(); err != nil {
		return nil, &QuoteFetchError{StatusCode: status, Detail: "malformed price response", Err: err}
	}

	c.logger.Debug("price route received",
		zap.String("src_amount", resp.PriceRoute.SrcAmount),
		zap.String("dest_amount", resp.PriceRoute.DestAmount),
	)

	return resp.PriceRoute, nil
}

// BuildParams describes the transaction to build from a previously fetched route
type BuildParams struct {
	SrcToken  tokens.Token
	DestToken tokens.Token
	SrcAmount string // Base units of SrcToken
	MinAmount string // Minimum acceptable output, base units of DestToken
	Route     *PricedRoute
	Network   int64
	Trader    string
	Receiver  string
	Partner   string
}

type buildTxBody struct {
	PriceRoute   *PricedRoute `json:"priceRoute"`
	SrcToken     string       `json:"srcToken"`
	SrcDecimals  uint8        `json:"srcDecimals"`
	DestToken    string       `json:"destToken"`
	DestDecimals uint8        `json:"destDecimals"`
	SrcAmount    string       `json:"srcAmount"`
	DestAmount   string       `json:"destAmount"`
	UserAddress  string       `json:"userAddress"`
	Partner      string       `json:"partner,omitempty"`
	Receiver     string       `json:"receiver,omitempty"`
}

// BuildSwap asks the aggregator to encode the swap described by a price route,
// with MinAmount as the output floor. The route must match the requested pair,
// amount and network.
func (c *Client) BuildSwap(ctx context.Context, params BuildParams) (*types.TransactionPayload, error) {
	if params.Route == nil {
		return nil, &TransactionBuildError{Detail: "missing price route"}
	}
	if err := checkRoute(params); err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildTxBody{
		PriceRoute:   params.Route,
		SrcToken:     params.SrcToken.Address.Hex(),
		SrcDecimals:  params.SrcToken.Decimals,
		DestToken:    params.DestToken.Address.Hex(),
		DestDecimals: params.DestToken.Decimals,
		SrcAmount:    params.SrcAmount,
		DestAmount:   params.MinAmount,
		UserAddress:  params.Trader,
		Partner:      c.partnerTag(params.Partner),
		Receiver:     params.Receiver,
	})
	if err != nil {
		return nil, &TransactionBuildError{Detail: "failed to encode request", Err: err}
	}

	txURL := fmt.Sprintf("%s/transactions/%d", c.baseURL, params.Network)
	c.logger.Debug("building transaction", zap.String("url", txURL), zap.String("min_amount", params.MinAmount))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, txURL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransactionBuildError{Detail: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, &TransactionBuildError{StatusCode: status, Detail: "request failed", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &TransactionBuildError{StatusCode: status, Detail: extractDetail(respBody)}
	}

	var payload types.TransactionPayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, &TransactionBuildError{StatusCode: status, Detail: "malformed transaction response", Err: err}
	}
	if payload.To == "" || payload.Data == "" {
		return nil, &TransactionBuildError{StatusCode: status, Detail: "transaction response is missing to or data"}
	}

	return &payload, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) partnerTag(partner string) string {
	if partner != "" {
		return partner
	}
	return c.partner
}

func checkRoute(params BuildParams) error {
	route := params.Route

	if route.Network != params.Network {
		return &RouteMismatchError{
			Field: "network",
			Want:  strconv.FormatInt(params.Network, 10),
			Got:   strconv.FormatInt(route.Network, 10),
		}
	}
	if !sameAddress(route.SrcToken, params.SrcToken.Address) {
		return &RouteMismatchError{Field: "srcToken", Want: params.SrcToken.Address.Hex(), Got: route.SrcToken}
	}
	if !sameAddress(route.DestToken, params.DestToken.Address) {
		return &RouteMismatchError{Field: "destToken", Want: params.DestToken.Address.Hex(), Got: route.DestToken}
	}
	if route.SrcAmount != params.SrcAmount {
		return &RouteMismatchError{Field: "srcAmount", Want: params.SrcAmount, Got: route.SrcAmount}
	}
	return nil
}

func sameAddress(hex string, addr common.Address) bool {
	return common.IsHexAddress(hex) && common.HexToAddress(hex) == addr
}
