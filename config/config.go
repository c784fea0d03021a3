package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Defaults for the reference Polygon deployment
const (
	DefaultAPIURL         = "https://apiv5.paraswap.io"
	DefaultNetwork        = 137
	DefaultBuybackAddress = "0xc9759f3E3ac8AF38BF75e052F8F6c060000281C7"
	DefaultTimeout        = 30 * time.Second
	DefaultInterval       = 5 * time.Minute
)

// Config holds the application configuration
type Config struct {
	APIURL         string
	Network        int64
	RPCURL         string
	BuybackAddress string
	Partner        string
	SourceToken    string
	DestToken      string
	Receiver       string
	Timeout        time.Duration
	Interval       time.Duration
	LogLevel       string
	Stage          string
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".buyback-keeper")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Set default values
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("buyback_address", DefaultBuybackAddress)
	v.SetDefault("source_token", "USDC")
	v.SetDefault("dest_token", "GHST")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_level", "info")
	v.SetDefault("stage", "dev")

	// Read from environment variables
	v.SetEnvPrefix("BUYBACK")
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		APIURL:         v.GetString("api_url"),
		Network:        v.GetInt64("network"),
		RPCURL:         v.GetString("rpc_url"),
		BuybackAddress: v.GetString("buyback_address"),
		Partner:        v.GetString("partner"),
		SourceToken:    strings.ToUpper(v.GetString("source_token")),
		DestToken:      strings.ToUpper(v.GetString("dest_token")),
		Receiver:       v.GetString("receiver"),
		Timeout:        v.GetDuration("timeout"),
		Interval:       v.GetDuration("interval"),
		LogLevel:       v.GetString("log_level"),
		Stage:          v.GetString("stage"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.Network <= 0 {
		return fmt.Errorf("network must be a positive chain ID, got %d", c.Network)
	}
	if !common.IsHexAddress(c.BuybackAddress) {
		return fmt.Errorf("buyback_address %q is not a valid address", c.BuybackAddress)
	}
	if c.Receiver != "" && !common.IsHexAddress(c.Receiver) {
		return fmt.Errorf("receiver %q is not a valid address", c.Receiver)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// ValidateKeeper checks the extra settings the keeper commands need
func (c *Config) ValidateKeeper() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC URL not found. Please set BUYBACK_RPC_URL environment variable or rpc_url in .buyback-keeper.yaml")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
