package relay

import (
	"context"

	"go.uber.org/zap"

	"lockRelay/internal/model"
)

// processEvent runs the dedup, validation, and action steps for one
// lock event. Every failure is resolved locally; nothing here may
// abort the scan cycle. An event is marked processed only after the
// destination action succeeds.
func (r *Relayer) processEvent(ctx context.Context, event model.LockEvent) {
	seen, err := r.processed.Contains(ctx, event.TxHash)
	if err != nil {
		// Unknown dedup state: do not act. The range replays after a
		// restart if the checkpoint was lost with it.
		r.logger.Warn("processed lookup failed",
			zap.Error(err),
			zap.String("tx_hash", event.TxHash),
		)
		return
	}
	if seen {
		r.logger.Debug("skip processed tx", zap.String("tx_hash", event.TxHash))
		return
	}

	r.logger.Info("lock event found",
		zap.String("tx_hash", event.TxHash),
		zap.Uint64("block_number", event.BlockNumber),
		zap.String("token", event.Token),
		zap.String("sender", event.Sender),
		zap.String("recipient", event.Recipient),
		zap.String("amount", event.AmountString()),
		zap.Uint64("dest_chain_id", event.DestinationChainID),
	)

	accepted, err := r.validate(ctx, event)
	if err != nil {
		// Could not be confirmed within the retry budget: fail closed.
		// The tx is not marked processed, so an operator replay of the
		// range can retry it.
		r.logger.Warn("validation unconfirmed, event dropped",
			zap.Error(err),
			zap.String("tx_hash", event.TxHash),
		)
		return
	}
	if !accepted {
		r.logger.Warn("validation rejected", zap.String("tx_hash", event.TxHash))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	err = r.executor.Execute(callCtx, event)
	cancel()
	if err != nil {
		r.logger.Error("action failed",
			zap.Error(err),
			zap.String("tx_hash", event.TxHash),
		)
		return
	}

	if err := r.processed.Mark(ctx, event.TxHash); err != nil {
		// The action already happened. Surface loudly: a replay of
		// this range would dispatch it again.
		r.logger.Error("mark processed failed after action",
			zap.Error(err),
			zap.String("tx_hash", event.TxHash),
		)
		return
	}

	r.logger.Info("action complete", zap.String("tx_hash", event.TxHash))
}

// validate calls the validator with a per-call timeout, retrying
// transient failures with exponential backoff. A definitive rejection
// returns immediately.
func (r *Relayer) validate(ctx context.Context, event model.LockEvent) (bool, error) {
	var accepted bool
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()

		var err error
		accepted, err = r.validator.Validate(callCtx, event)
		if err != nil {
			r.logger.Warn("validation attempt failed",
				zap.Error(err),
				zap.String("tx_hash", event.TxHash),
			)
		}
		return err
	})
	return accepted, err
}
