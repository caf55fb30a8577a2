package bridge

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func buildLockLog(t *testing.T, recipient []byte, amount *big.Int) types.Log {
	t.Helper()

	contractABI, err := BridgeABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := contractABI.Events[LockEventName]

	data, err := event.Inputs.NonIndexed().Pack(recipient, amount)
	if err != nil {
		t.Fatalf("pack lock event: %v", err)
	}

	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")

	return types.Log{
		Address: common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Topics: []common.Hash{
			event.ID,
			topicFromAddress(token),
			topicFromAddress(sender),
			common.BigToHash(big.NewInt(137)),
		},
		Data:        data,
		BlockNumber: 1234,
		TxHash:      common.HexToHash("0xdeadbeef"),
		Index:       7,
	}
}

func TestDecodeLockEvent(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	recipient := common.HexToAddress("0x4444444444444444444444444444444444444444").Bytes()
	log := buildLockLog(t, recipient, big.NewInt(1500000))

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if event.TxHash != log.TxHash.Hex() {
		t.Fatalf("tx hash = %s", event.TxHash)
	}
	if event.BlockNumber != 1234 || event.LogIndex != 7 {
		t.Fatalf("block/log position mismatch: %+v", event)
	}
	if event.Token != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("token = %s", event.Token)
	}
	if event.Sender != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("sender = %s", event.Sender)
	}
	if event.Recipient != "0x4444444444444444444444444444444444444444" {
		t.Fatalf("recipient = %s", event.Recipient)
	}
	if event.Amount.String() != "1500000" {
		t.Fatalf("amount = %s, want 1500000", event.Amount)
	}
	if event.DestinationChainID != 137 {
		t.Fatalf("destination chain id = %d, want 137", event.DestinationChainID)
	}
}

func TestDecodeRejectsWrongTopic0(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := buildLockLog(t, []byte{0x01}, big.NewInt(1))
	log.Topics[0] = common.HexToHash("0xabcdef")

	if _, err := decoder.Decode(log); err == nil {
		t.Fatalf("expected error for wrong topic0")
	}
}

func TestDecodeRejectsMissingTopics(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := buildLockLog(t, []byte{0x01}, big.NewInt(1))
	log.Topics = log.Topics[:2]

	if _, err := decoder.Decode(log); err == nil {
		t.Fatalf("expected error for missing topics")
	}
}
