package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		SourceRPC:      "https://rpc.example.org",
		BridgeContract: "0x1234567890123456789012345678901234567890",
		OracleURL:      "https://oracle.example.org/validate-tx",
		PollInterval:   15 * time.Second,
		BlockRange:     100,
		CallTimeout:    10 * time.Second,
		TokenDecimals:  18,
		Store:          "memory",
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing source rpc", func(c *Config) { c.SourceRPC = "" }},
		{"missing bridge contract", func(c *Config) { c.BridgeContract = "" }},
		{"missing oracle url", func(c *Config) { c.OracleURL = "" }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"zero block range", func(c *Config) { c.BlockRange = 0 }},
		{"zero call timeout", func(c *Config) { c.CallTimeout = 0 }},
		{"negative decimals", func(c *Config) { c.TokenDecimals = -1 }},
		{"unknown store", func(c *Config) { c.Store = "dynamodb" }},
		{"file store without paths", func(c *Config) { c.Store = "file"; c.CheckpointFile = ""; c.ProcessedFile = "" }},
		{"postgres store without dsn", func(c *Config) { c.Store = "postgres" }},
		{"redis store without url", func(c *Config) { c.Store = "redis" }},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("poll interval = %v, want 15s", cfg.PollInterval)
	}
	if cfg.BlockRange != 100 {
		t.Fatalf("block range = %d, want 100", cfg.BlockRange)
	}
	if cfg.SourceChainName != "Ethereum" || cfg.DestChainName != "Polygon" {
		t.Fatalf("chain name defaults: %q / %q", cfg.SourceChainName, cfg.DestChainName)
	}
	if cfg.Store != "memory" {
		t.Fatalf("store = %q, want memory", cfg.Store)
	}
	if cfg.TokenDecimals != 18 {
		t.Fatalf("token decimals = %d, want 18", cfg.TokenDecimals)
	}

	// Required values have no defaults; a bare load must not validate.
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error without required fields")
	}
}
