package model

import "math/big"

// LockEvent is the normalized representation of one TokensLocked log.
// It is built by the bridge source and consumed within a single scan
// cycle; only the TxHash ever reaches persistent storage.
type LockEvent struct {
	TxHash             string   `json:"tx_hash"`
	LogIndex           uint64   `json:"log_index"`
	BlockNumber        uint64   `json:"block_number"`
	Token              string   `json:"token"`
	Sender             string   `json:"sender"`
	Recipient          string   `json:"recipient"`
	Amount             *big.Int `json:"amount"`
	DestinationChainID uint64   `json:"destination_chain_id"`
}

// AmountString returns the amount in smallest units as a decimal string.
func (e LockEvent) AmountString() string {
	if e.Amount == nil {
		return "0"
	}
	return e.Amount.String()
}
