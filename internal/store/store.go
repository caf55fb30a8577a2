package store

import "context"

// ProcessedStore records transaction hashes that have already been
// acted upon. The set grows monotonically; entries are never removed.
type ProcessedStore interface {
	// Contains reports whether txHash was already processed.
	Contains(ctx context.Context, txHash string) (bool, error)
	// Mark records txHash as processed. Marking an existing entry is a
	// no-op.
	Mark(ctx context.Context, txHash string) error
}

// CheckpointStore persists the highest block height fully scanned.
type CheckpointStore interface {
	// Load returns the stored checkpoint and whether one exists.
	Load(ctx context.Context) (uint64, bool, error)
	// Save persists the checkpoint.
	Save(ctx context.Context, height uint64) error
}
