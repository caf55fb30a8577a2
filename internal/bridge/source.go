package bridge

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lockRelay/internal/chain"
	"lockRelay/internal/model"
)

// Source adapts the chain client into the relayer's block source:
// current height plus decoded TokensLocked events for a block range.
type Source struct {
	client   *chain.Client
	decoder  *Decoder
	contract common.Address
	logger   *zap.Logger
}

// NewSource builds a Source watching the given bridge contract.
func NewSource(client *chain.Client, contract string, logger *zap.Logger) (*Source, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid bridge contract address: %s", contract)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	decoder, err := NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Source{
		client:   client,
		decoder:  decoder,
		contract: common.HexToAddress(contract),
		logger:   logger,
	}, nil
}

// CurrentHeight returns the latest block number on the source chain.
func (s *Source) CurrentHeight(ctx context.Context) (uint64, error) {
	return s.client.LatestBlockNumber(ctx)
}

// FetchLogs returns decoded lock events for [fromBlock, toBlock] in the
// order the node returned them (ascending by block and log index).
// Logs that fail to decode are skipped with a warning; a malformed log
// must not stall the scan.
func (s *Source) FetchLogs(ctx context.Context, fromBlock, toBlock uint64) ([]model.LockEvent, error) {
	logs, err := s.client.FilterLogs(ctx, fromBlock, toBlock,
		[]common.Address{s.contract},
		[]common.Hash{s.decoder.Topic0()},
	)
	if err != nil {
		return nil, fmt.Errorf("filter logs: %w", err)
	}

	events := make([]model.LockEvent, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			s.logger.Warn("skip removed log",
				zap.String("tx_hash", log.TxHash.Hex()),
				zap.Uint64("block_number", log.BlockNumber),
			)
			continue
		}
		event, err := s.decoder.Decode(log)
		if err != nil {
			s.logger.Warn("skip undecodable log",
				zap.Error(err),
				zap.String("tx_hash", log.TxHash.Hex()),
				zap.Uint64("block_number", log.BlockNumber),
			)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
