// Package relay owns the scan loop: it computes block ranges, fetches
// lock events, validates them, dispatches the destination action, and
// advances the scan checkpoint.
package relay

import (
	"context"

	"lockRelay/internal/model"
)

// BlockSource reports the source chain height and fetches lock events
// for a block range. Both calls may fail transiently.
type BlockSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	// FetchLogs returns events for [fromBlock, toBlock] ordered
	// ascending by block and log index.
	FetchLogs(ctx context.Context, fromBlock, toBlock uint64) ([]model.LockEvent, error)
}

// Validator decides whether a lock event may be acted upon. A nil
// error with accepted=false is a definitive rejection; a non-nil error
// means the outcome could not be confirmed (transient).
type Validator interface {
	Validate(ctx context.Context, event model.LockEvent) (accepted bool, err error)
}

// ActionExecutor performs the destination-side effect for a validated
// lock event.
type ActionExecutor interface {
	Execute(ctx context.Context, event model.LockEvent) error
}
