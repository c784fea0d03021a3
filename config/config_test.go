package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".buyback-keeper.yaml"), []byte(yaml), 0600))
	}

	v := viper.New()
	v.SetConfigName(".buyback-keeper")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, int64(DefaultNetwork), cfg.Network)
	assert.Equal(t, DefaultBuybackAddress, cfg.BuybackAddress)
	assert.Equal(t, "USDC", cfg.SourceToken)
	assert.Equal(t, "GHST", cfg.DestToken)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Error(t, cfg.ValidateKeeper())
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("BUYBACK_RPC_URL", "https://polygon-rpc.example")
	t.Setenv("BUYBACK_TIMEOUT", "10s")

	cfg, err := load(newViper(t, "partner: aavegotchi\nsource_token: usdc\ninterval: 1h\n"))
	require.NoError(t, err)

	assert.Equal(t, "aavegotchi", cfg.Partner)
	assert.Equal(t, "USDC", cfg.SourceToken)
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "https://polygon-rpc.example", cfg.RPCURL)
	assert.NoError(t, cfg.ValidateKeeper())
}

func TestLoad_InvalidAddress(t *testing.T) {
	_, err := load(newViper(t, "buyback_address: 0xBUYBACK\n"))
	assert.ErrorContains(t, err, "buyback_address")
}
