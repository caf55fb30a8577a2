package executor

import (
	"context"
	"math/big"
	"testing"

	"lockRelay/internal/model"
)

func TestDisplayAmount(t *testing.T) {
	cases := []struct {
		amount   *big.Int
		decimals int
		want     string
	}{
		{big.NewInt(1500000000000000000), 18, "1.500000"},
		{big.NewInt(1), 18, "0.000000"},
		{big.NewInt(2500000), 6, "2.500000"},
		{big.NewInt(42), 0, "42"},
	}

	for _, tc := range cases {
		if got := displayAmount(tc.amount, tc.decimals); got != tc.want {
			t.Fatalf("displayAmount(%s, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}
}

func TestExecute(t *testing.T) {
	exec := NewMintExecutor(MintConfig{
		ChainName:     "Polygon",
		MintContract:  "0x0987654321098765432109876543210987654321",
		TokenDecimals: 18,
	}, nil)

	event := model.LockEvent{
		TxHash:    "0xabc",
		Recipient: "0xdef",
		Amount:    big.NewInt(1000),
	}
	if err := exec.Execute(context.Background(), event); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestExecuteRejectsMissingAmount(t *testing.T) {
	exec := NewMintExecutor(MintConfig{ChainName: "Polygon"}, nil)

	if err := exec.Execute(context.Background(), model.LockEvent{TxHash: "0xabc"}); err == nil {
		t.Fatalf("expected error for missing amount")
	}
}

func TestExecuteHonorsCancelledContext(t *testing.T) {
	exec := NewMintExecutor(MintConfig{ChainName: "Polygon"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := model.LockEvent{TxHash: "0xabc", Amount: big.NewInt(1)}
	if err := exec.Execute(ctx, event); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
