package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lockRelay/internal/bridge"
	"lockRelay/internal/chain"
	"lockRelay/internal/config"
	"lockRelay/internal/executor"
	"lockRelay/internal/oracle"
	"lockRelay/internal/relay"
	"lockRelay/internal/store"
	"lockRelay/internal/store/postgres"
)

// storeName scopes checkpoint and processed keys in shared backends.
const storeName = "tokens-locked"

func main() {
	root := &cobra.Command{
		Use:          "relayer",
		Short:        "Bridge lock-event relayer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the relayer loop",
		RunE:  runRelayer,
	}

	runCmd.Flags().String("source-rpc", "", "source chain RPC URL")
	runCmd.Flags().String("source-chain-name", "Ethereum", "source chain name (oracle payload, logs)")
	runCmd.Flags().String("bridge-contract", "", "source bridge contract address")
	runCmd.Flags().String("dest-chain-name", "Polygon", "destination chain name")
	runCmd.Flags().String("dest-mint-contract", "", "destination mint contract address")
	runCmd.Flags().String("oracle-url", "", "oracle validation endpoint")
	runCmd.Flags().String("oracle-api-key", "", "oracle API key")
	runCmd.Flags().Duration("poll-interval", 15*time.Second, "wait between scan cycles")
	runCmd.Flags().Uint64("block-range", 100, "blocks per scan window")
	runCmd.Flags().Uint64("initial-height", 0, "first block to scan (0 means chain head)")
	runCmd.Flags().Int("max-retries", 3, "validation retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial validation retry backoff")
	runCmd.Flags().Duration("call-timeout", 10*time.Second, "per-call validator/executor timeout")
	runCmd.Flags().Int("token-decimals", 18, "token decimals for display amounts")
	runCmd.Flags().String("store", "memory", "store backend (memory, file, postgres, redis)")
	runCmd.Flags().String("checkpoint-file", "./data/checkpoint.json", "checkpoint file path (file store)")
	runCmd.Flags().String("processed-file", "./data/processed.jsonl", "processed log path (file store)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (postgres store)")
	runCmd.Flags().String("redis-url", "", "Redis URL (redis store)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the persisted scan checkpoint",
		RunE:  runStatus,
	}

	statusCmd.Flags().String("store", "memory", "store backend (memory, file, postgres, redis)")
	statusCmd.Flags().String("checkpoint-file", "./data/checkpoint.json", "checkpoint file path (file store)")
	statusCmd.Flags().String("processed-file", "./data/processed.jsonl", "processed log path (file store)")
	statusCmd.Flags().String("pg-dsn", "", "Postgres DSN (postgres store)")
	statusCmd.Flags().String("redis-url", "", "Redis URL (redis store)")

	root.AddCommand(statusCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRelayer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.SourceRPC)
	if err != nil {
		return fmt.Errorf("connect source rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id: %w", err)
	}

	source, err := bridge.NewSource(chainClient, cfg.BridgeContract, logger)
	if err != nil {
		return err
	}

	validator, err := oracle.NewClient(cfg.OracleURL, cfg.OracleAPIKey, cfg.SourceChainName, cfg.CallTimeout, logger)
	if err != nil {
		return err
	}

	minter := executor.NewMintExecutor(executor.MintConfig{
		ChainName:     cfg.DestChainName,
		MintContract:  cfg.DestMintContract,
		TokenDecimals: cfg.TokenDecimals,
	}, logger)

	processed, checkpoints, closeStores, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	relayer, err := relay.New(relay.Config{
		PollInterval:  cfg.PollInterval,
		BlockRange:    cfg.BlockRange,
		InitialHeight: cfg.InitialHeight,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		CallTimeout:   cfg.CallTimeout,
	}, source, validator, minter, processed, checkpoints, logger)
	if err != nil {
		return err
	}

	logger.Info("relayer start",
		zap.String("source_chain", cfg.SourceChainName),
		zap.String("chain_id", chainID.String()),
		zap.String("bridge_contract", cfg.BridgeContract),
		zap.String("dest_chain", cfg.DestChainName),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Uint64("block_range", cfg.BlockRange),
		zap.String("store", cfg.Store),
	)

	if err := relayer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("relayer stopped")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, checkpoints, closeStores, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	height, ok, err := checkpoints.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no checkpoint stored")
		return nil
	}
	fmt.Printf("last scanned block: %d\n", height)
	return nil
}

func buildStores(ctx context.Context, cfg config.Config) (store.ProcessedStore, store.CheckpointStore, func(), error) {
	switch cfg.Store {
	case "memory":
		return store.NewMemoryProcessedStore(), store.NewMemoryCheckpointStore(), func() {}, nil
	case "file":
		processed, err := store.NewFileProcessedStore(cfg.ProcessedFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return processed, store.NewFileCheckpointStore(cfg.CheckpointFile), func() {}, nil
	case "postgres":
		pg, err := postgres.NewStore(ctx, cfg.PostgresDSN, storeName)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, pg, pg.Close, nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL, storeName)
		if err != nil {
			return nil, nil, nil, err
		}
		return rs, rs, func() { _ = rs.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
