package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"lockRelay/internal/model"
)

// Decoder converts raw TokensLocked logs into LockEvents.
type Decoder struct {
	event abi.Event
}

// NewDecoder builds a decoder for the TokensLocked event.
func NewDecoder() (*Decoder, error) {
	contractABI, err := BridgeABI()
	if err != nil {
		return nil, err
	}
	event, ok := contractABI.Events[LockEventName]
	if !ok {
		return nil, fmt.Errorf("event %s missing from bridge abi", LockEventName)
	}
	return &Decoder{event: event}, nil
}

// Topic0 returns the event signature hash used for log filtering.
func (d *Decoder) Topic0() common.Hash {
	return d.event.ID
}

// Decode converts a raw log into a LockEvent.
func (d *Decoder) Decode(log types.Log) (model.LockEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != d.event.ID {
		return model.LockEvent{}, fmt.Errorf("unexpected topic0")
	}

	indexedArgs := indexedArguments(d.event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.LockEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	var indexed struct {
		Token              common.Address
		Sender             common.Address
		DestinationChainId *big.Int
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.LockEvent{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := d.event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.LockEvent{}, fmt.Errorf("unpack %s: %w", d.event.Name, err)
	}
	if len(values) != 2 {
		return model.LockEvent{}, fmt.Errorf("unexpected lock values: %d", len(values))
	}

	recipient, ok := values[0].([]byte)
	if !ok {
		return model.LockEvent{}, fmt.Errorf("recipient is not bytes")
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return model.LockEvent{}, fmt.Errorf("amount is not uint256")
	}
	if amount.Sign() < 0 {
		return model.LockEvent{}, fmt.Errorf("negative amount: %s", amount)
	}
	if !indexed.DestinationChainId.IsUint64() {
		return model.LockEvent{}, fmt.Errorf("destination chain id does not fit in uint64: %s", indexed.DestinationChainId)
	}

	return model.LockEvent{
		TxHash:             log.TxHash.Hex(),
		LogIndex:           uint64(log.Index),
		BlockNumber:        log.BlockNumber,
		Token:              indexed.Token.Hex(),
		Sender:             indexed.Sender.Hex(),
		Recipient:          hexutil.Encode(recipient),
		Amount:             new(big.Int).Set(amount),
		DestinationChainID: indexed.DestinationChainId.Uint64(),
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
