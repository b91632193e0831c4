package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL     string
	PrivateKey string
	ChainID    uint64

	PrimaryToken     string
	SecondaryToken   string
	StakingContract  string
	ExchangeContract string
	SwapPair         string

	ExchangeFee       string
	MaxExchangeAmount int64

	ReceiptInterval time.Duration
	ReceiptTimeout  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration

	JournalPath   string
	PostgresDSN   string
	WatchInterval time.Duration
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("exchange-fee", "0.0006")
	v.SetDefault("max-exchange-amount", int64(1_000_000))
	v.SetDefault("receipt-interval", 2*time.Second)
	v.SetDefault("receipt-timeout", 90*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("watch-interval", 2*time.Minute)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		PrivateKey:        v.GetString("private-key"),
		ChainID:           v.GetUint64("chain-id"),
		PrimaryToken:      v.GetString("primary-token"),
		SecondaryToken:    v.GetString("secondary-token"),
		StakingContract:   v.GetString("staking-contract"),
		ExchangeContract:  v.GetString("exchange-contract"),
		SwapPair:          v.GetString("swap-pair"),
		ExchangeFee:       v.GetString("exchange-fee"),
		MaxExchangeAmount: v.GetInt64("max-exchange-amount"),
		ReceiptInterval:   v.GetDuration("receipt-interval"),
		ReceiptTimeout:    v.GetDuration("receipt-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		JournalPath:       v.GetString("journal"),
		PostgresDSN:       v.GetString("pg-dsn"),
		WatchInterval:     v.GetDuration("watch-interval"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
