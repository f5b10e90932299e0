// Package config loads the daemon configuration from a file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full daemon configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the feed and metrics.
	ListenAddr string `mapstructure:"listen_addr"`

	// PostgresURL enables the durable trade store when set.
	PostgresURL string `mapstructure:"postgres_url"`
	// ClickhouseURL enables the price timeseries sink when set.
	ClickhouseURL string `mapstructure:"clickhouse_url"`

	// Operator may pause and unpause the engine.
	Operator string `mapstructure:"operator"`
	// PlatformRecipient may sweep platform fees.
	PlatformRecipient string `mapstructure:"platform_recipient"`

	// EthUsdRate is the fixed 1e18-scaled USD-per-ETH valuation rate.
	EthUsdRate string `mapstructure:"eth_usd_rate"`

	// EventBufferSize is the async event bus queue length.
	EventBufferSize int `mapstructure:"event_buffer_size"`

	// DebugLogging switches the logger to development mode.
	DebugLogging bool `mapstructure:"debug_logging"`
}

const (
	DefaultListenAddr      = ":8080"
	DefaultEventBufferSize = 1024
	// 3000 USD/ETH at 1e18 scale.
	DefaultEthUsdRate = "3000000000000000000000"
)

// Load reads configuration from the given file, with LAUNCH_CURVE_*
// environment variables taking precedence. An empty path loads from
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"listen_addr":       DefaultListenAddr,
		"event_buffer_size": DefaultEventBufferSize,
		"eth_usd_rate":      DefaultEthUsdRate,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("LAUNCH_CURVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so keys without a
	// default must be bound explicitly for env-only loading to work.
	for _, key := range []string{
		"listen_addr",
		"postgres_url",
		"clickhouse_url",
		"operator",
		"platform_recipient",
		"eth_usd_rate",
		"event_buffer_size",
		"debug_logging",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	if cfg.Operator == "" {
		return errors.New("missing operator in configuration")
	}
	if cfg.PlatformRecipient == "" {
		return errors.New("missing platform_recipient in configuration")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("event_buffer_size must be positive")
	}
	if _, err := cfg.Rate(); err != nil {
		return err
	}
	return nil
}

// Rate parses the configured ETH/USD rate.
func (c *Config) Rate() (*big.Int, error) {
	rate, ok := new(big.Int).SetString(c.EthUsdRate, 10)
	if !ok || rate.Sign() <= 0 {
		return nil, fmt.Errorf("eth_usd_rate must be a positive decimal integer, got %q", c.EthUsdRate)
	}
	return rate, nil
}
