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
	SourceRPC        string
	SourceChainName  string
	BridgeContract   string
	DestChainName    string
	DestMintContract string
	OracleURL        string
	OracleAPIKey     string
	PollInterval     time.Duration
	BlockRange       uint64
	InitialHeight    uint64
	MaxRetries       int
	RetryBackoff     time.Duration
	CallTimeout      time.Duration
	TokenDecimals    int
	Store            string
	CheckpointFile   string
	ProcessedFile    string
	PostgresDSN      string
	RedisURL         string
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RELAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("source-chain-name", "Ethereum")
	v.SetDefault("dest-chain-name", "Polygon")
	v.SetDefault("poll-interval", 15*time.Second)
	v.SetDefault("block-range", uint64(100))
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("call-timeout", 10*time.Second)
	v.SetDefault("token-decimals", 18)
	v.SetDefault("store", "memory")
	v.SetDefault("checkpoint-file", "./data/checkpoint.json")
	v.SetDefault("processed-file", "./data/processed.jsonl")
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
		SourceRPC:        v.GetString("source-rpc"),
		SourceChainName:  v.GetString("source-chain-name"),
		BridgeContract:   v.GetString("bridge-contract"),
		DestChainName:    v.GetString("dest-chain-name"),
		DestMintContract: v.GetString("dest-mint-contract"),
		OracleURL:        v.GetString("oracle-url"),
		OracleAPIKey:     v.GetString("oracle-api-key"),
		PollInterval:     v.GetDuration("poll-interval"),
		BlockRange:       v.GetUint64("block-range"),
		InitialHeight:    v.GetUint64("initial-height"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		CallTimeout:      v.GetDuration("call-timeout"),
		TokenDecimals:    v.GetInt("token-decimals"),
		Store:            v.GetString("store"),
		CheckpointFile:   v.GetString("checkpoint-file"),
		ProcessedFile:    v.GetString("processed-file"),
		PostgresDSN:      v.GetString("pg-dsn"),
		RedisURL:         v.GetString("redis-url"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks that required fields are set and cross-field
// constraints hold. Missing required values are an error, never
// substituted with placeholders.
func (c Config) Validate() error {
	if c.SourceRPC == "" {
		return fmt.Errorf("source-rpc is required")
	}
	if c.BridgeContract == "" {
		return fmt.Errorf("bridge-contract is required")
	}
	if c.OracleURL == "" {
		return fmt.Errorf("oracle-url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if c.BlockRange == 0 {
		return fmt.Errorf("block-range must be greater than zero")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call-timeout must be positive")
	}
	if c.TokenDecimals < 0 {
		return fmt.Errorf("token-decimals must not be negative")
	}
	switch c.Store {
	case "memory":
	case "file":
		if c.CheckpointFile == "" || c.ProcessedFile == "" {
			return fmt.Errorf("checkpoint-file and processed-file are required for the file store")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("pg-dsn is required for the postgres store")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis-url is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store)
	}
	return nil
}
