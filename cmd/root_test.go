package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"buyback-keeper/config"
	"buyback-keeper/pkg/types"
)

func TestNewHTTPClient_NoTransportTimeout(t *testing.T) {
	assert.Zero(t, newHTTPClient().Timeout)
}

func TestNewOrchestrator_ConfigTimeoutBoundsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		APIURL:         srv.URL,
		Network:        config.DefaultNetwork,
		BuybackAddress: config.DefaultBuybackAddress,
		Timeout:        50 * time.Millisecond,
	}
	req := types.SwapRequest{
		SourceToken:  "USDC",
		DestToken:    "GHST",
		SourceAmount: "100",
		Network:      cfg.Network,
		Slippage:     decimal.NewFromInt(1),
		Trader:       cfg.BuybackAddress,
	}

	result := newOrchestrator(cfg, zaptest.NewLogger(t)).Evaluate(context.Background(), req)

	assert.False(t, result.Executable)
	assert.Equal(t, "timed out during fetch_quote", result.Reason)
}

type syncRecorder struct {
	bytes.Buffer
	synced bool
}

func (s *syncRecorder) Sync() error {
	s.synced = true
	return nil
}

func TestExit_SyncsLoggerFirst(t *testing.T) {
	var code int
	orig := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = orig })

	rec := &syncRecorder{}
	log := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rec, zapcore.DebugLevel))
	log.Warn("swap pipeline failed")

	exit(log, 1)

	assert.Equal(t, 1, code)
	assert.True(t, rec.synced)
	assert.Contains(t, rec.String(), "swap pipeline failed")
}

func TestValidateAddresses(t *testing.T) {
	tests := []struct {
		name     string
		trader   string
		receiver string
		wantErr  string
	}{
		{name: "buyback contract", trader: config.DefaultBuybackAddress},
		{name: "with receiver", trader: config.DefaultBuybackAddress, receiver: "0x385Eeac5cB85A38A9a07A70c73e0a3271CfB54A7"},
		{name: "bad trader", trader: "0xBUYBACK", wantErr: "trader"},
		{name: "bad receiver", trader: config.DefaultBuybackAddress, receiver: "nope", wantErr: "receiver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddresses(&types.SwapRequest{Trader: tt.trader, Receiver: tt.receiver})
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
