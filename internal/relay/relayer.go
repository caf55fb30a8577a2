package relay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lockRelay/internal/store"
)

// Config holds runtime settings for the relayer.
type Config struct {
	// PollInterval is the wait between scan cycles. A failed height
	// query doubles the wait for that cycle.
	PollInterval time.Duration
	// BlockRange bounds the size of a single log fetch.
	BlockRange uint64
	// InitialHeight, when non-zero, is the first block to scan if no
	// checkpoint is stored. Zero means start at the chain head.
	InitialHeight uint64
	// MaxRetries bounds retries of a transiently failing validation.
	MaxRetries int
	// RetryBackoff is the initial backoff between validation retries.
	RetryBackoff time.Duration
	// CallTimeout bounds each validator and executor call.
	CallTimeout time.Duration
}

// Relayer drives the scan loop. It owns the checkpoint and the
// processed set; nothing else mutates them.
type Relayer struct {
	cfg         Config
	source      BlockSource
	validator   Validator
	executor    ActionExecutor
	processed   store.ProcessedStore
	checkpoints store.CheckpointStore
	logger      *zap.Logger

	checkpoint uint64
}

// New builds a Relayer with its dependencies.
func New(
	cfg Config,
	source BlockSource,
	validator Validator,
	executor ActionExecutor,
	processed store.ProcessedStore,
	checkpoints store.CheckpointStore,
	logger *zap.Logger,
) (*Relayer, error) {
	if source == nil {
		return nil, fmt.Errorf("block source is nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is nil")
	}
	if processed == nil {
		return nil, fmt.Errorf("processed store is nil")
	}
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if cfg.BlockRange == 0 {
		return nil, fmt.Errorf("block range must be greater than zero")
	}
	if cfg.CallTimeout <= 0 {
		return nil, fmt.Errorf("call timeout must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Relayer{
		cfg:         cfg,
		source:      source,
		validator:   validator,
		executor:    executor,
		processed:   processed,
		checkpoints: checkpoints,
		logger:      logger,
	}, nil
}

// Run executes the scan loop until ctx is cancelled. The only error
// returned before cancellation is a failed initialization; every later
// failure is absorbed by the loop and retried on its cadence.
func (r *Relayer) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.initialize(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait := r.scanOnce(ctx)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// initialize queries the chain head and sets the starting checkpoint.
// Unreachable source or unreadable checkpoint storage is fatal; the
// process cannot safely pick a starting point without them.
func (r *Relayer) initialize(ctx context.Context) error {
	head, err := r.source.CurrentHeight(ctx)
	if err != nil {
		return fmt.Errorf("initial height query: %w", err)
	}

	stored, ok, err := r.checkpoints.Load(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	switch {
	case ok:
		r.checkpoint = stored
		r.logger.Info("resume from checkpoint",
			zap.Uint64("checkpoint", stored),
			zap.Uint64("head", head),
		)
	case r.cfg.InitialHeight > 0:
		r.checkpoint = r.cfg.InitialHeight - 1
		r.logger.Info("start from configured height",
			zap.Uint64("initial_height", r.cfg.InitialHeight),
			zap.Uint64("head", head),
		)
	default:
		if head > 0 {
			r.checkpoint = head - 1
		}
		r.logger.Info("start from chain head",
			zap.Uint64("checkpoint", r.checkpoint),
			zap.Uint64("head", head),
		)
	}

	return nil
}

// scanOnce runs one scan cycle and returns how long to wait before the
// next one.
func (r *Relayer) scanOnce(ctx context.Context) time.Duration {
	head, err := r.source.CurrentHeight(ctx)
	if err != nil {
		r.logger.Warn("height query failed", zap.Error(err))
		return 2 * r.cfg.PollInterval
	}

	if head < r.checkpoint {
		// Possible reorg or stale node. The checkpoint never moves
		// backwards; surface the anomaly and wait it out.
		r.logger.Warn("source height below checkpoint",
			zap.Uint64("head", head),
			zap.Uint64("checkpoint", r.checkpoint),
		)
		return r.cfg.PollInterval
	}
	if head == r.checkpoint {
		r.logger.Debug("no new blocks",
			zap.Uint64("head", head),
			zap.Uint64("checkpoint", r.checkpoint),
		)
		return r.cfg.PollInterval
	}

	from, to, err := NextRange(r.checkpoint, head, r.cfg.BlockRange)
	if err != nil {
		r.logger.Error("range computation failed", zap.Error(err))
		return r.cfg.PollInterval
	}

	r.logger.Info("scan range",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Uint64("head", head),
	)

	events, err := r.source.FetchLogs(ctx, from, to)
	if err != nil {
		// Checkpoint untouched; the same range is retried next cycle.
		r.logger.Warn("log fetch failed",
			zap.Error(err),
			zap.Uint64("from", from),
			zap.Uint64("to", to),
		)
		return r.cfg.PollInterval
	}

	for _, event := range events {
		if ctx.Err() != nil {
			// Shutdown requested: leave the range unfinished so the
			// next run replays it.
			return r.cfg.PollInterval
		}
		r.processEvent(ctx, event)
	}

	r.checkpoint = to
	if err := r.checkpoints.Save(ctx, to); err != nil {
		// The in-memory checkpoint still advances; after a restart the
		// range replays and the processed set absorbs duplicates.
		r.logger.Error("persist checkpoint failed",
			zap.Error(err),
			zap.Uint64("checkpoint", to),
		)
	}

	r.logger.Info("scan complete",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("events", len(events)),
	)
	return r.cfg.PollInterval
}

// Checkpoint returns the highest block height fully scanned.
func (r *Relayer) Checkpoint() uint64 {
	return r.checkpoint
}
