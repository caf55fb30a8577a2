package store

import "context"

// MemoryProcessedStore is an in-memory processed set. It does not
// survive a restart; production deployments should prefer a durable
// backend.
type MemoryProcessedStore struct {
	seen map[string]struct{}
}

func NewMemoryProcessedStore() *MemoryProcessedStore {
	return &MemoryProcessedStore{seen: make(map[string]struct{})}
}

func (s *MemoryProcessedStore) Contains(_ context.Context, txHash string) (bool, error) {
	_, ok := s.seen[txHash]
	return ok, nil
}

func (s *MemoryProcessedStore) Mark(_ context.Context, txHash string) error {
	s.seen[txHash] = struct{}{}
	return nil
}

// Len returns the number of processed entries.
func (s *MemoryProcessedStore) Len() int {
	return len(s.seen)
}

// MemoryCheckpointStore is an in-memory checkpoint holder.
type MemoryCheckpointStore struct {
	height uint64
	set    bool
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{}
}

func (s *MemoryCheckpointStore) Load(_ context.Context) (uint64, bool, error) {
	return s.height, s.set, nil
}

func (s *MemoryCheckpointStore) Save(_ context.Context, height uint64) error {
	s.height = height
	s.set = true
	return nil
}
