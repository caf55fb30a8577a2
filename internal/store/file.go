package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// checkpointDoc is the on-disk shape of the checkpoint.
type checkpointDoc struct {
	LastScannedBlock uint64 `json:"last_scanned_block"`
	UpdatedAt        string `json:"updated_at"`
}

// FileCheckpointStore persists the checkpoint to a JSON file, written
// atomically via a temp file and rename.
type FileCheckpointStore struct {
	path string
}

func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

func (s *FileCheckpointStore) Load(_ context.Context) (uint64, bool, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return 0, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var doc checkpointDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return doc.LastScannedBlock, true, nil
}

func (s *FileCheckpointStore) Save(_ context.Context, height uint64) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	doc := checkpointDoc{
		LastScannedBlock: height,
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// processedEntry is one line of the processed log.
type processedEntry struct {
	TxHash   string `json:"tx_hash"`
	MarkedAt string `json:"marked_at"`
}

// FileProcessedStore keeps the processed set in memory and appends each
// new entry to a JSONL file so the set survives restarts.
type FileProcessedStore struct {
	path string
	seen map[string]struct{}
}

// NewFileProcessedStore opens the store, loading any existing entries.
func NewFileProcessedStore(path string) (*FileProcessedStore, error) {
	s := &FileProcessedStore{
		path: path,
		seen: make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileProcessedStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open processed log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry processedEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return fmt.Errorf("parse processed log: %w", err)
		}
		if entry.TxHash != "" {
			s.seen[entry.TxHash] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan processed log: %w", err)
	}
	return nil
}

func (s *FileProcessedStore) Contains(_ context.Context, txHash string) (bool, error) {
	_, ok := s.seen[txHash]
	return ok, nil
}

func (s *FileProcessedStore) Mark(_ context.Context, txHash string) error {
	if _, ok := s.seen[txHash]; ok {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create processed dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open processed log: %w", err)
	}
	defer file.Close()

	entry := processedEntry{
		TxHash:   txHash,
		MarkedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal processed entry: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write processed entry: %w", err)
	}

	s.seen[txHash] = struct{}{}
	return nil
}

// Len returns the number of processed entries.
func (s *FileProcessedStore) Len() int {
	return len(s.seen)
}
