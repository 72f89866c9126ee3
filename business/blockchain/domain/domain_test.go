package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
)

func TestGasEstimate_Cost(t *testing.T) {
	price := NewGasPrice(big.NewInt(2_000_000_000)) // 2 gwei
	est := NewGasEstimate(50_000, price)

	if got := est.TotalWei().String(); got != "100000000000000" {
		t.Errorf("TotalWei = %s", got)
	}
	if got := est.Cost(); got != "0.000100 ETH" {
		t.Errorf("Cost = %q", got)
	}
	if got := price.String(); got != "2.00 gwei" {
		t.Errorf("String = %q", got)
	}
	if got := price.Gwei(); got != 2 {
		t.Errorf("Gwei = %v", got)
	}
}

func TestBlockFromHeader(t *testing.T) {
	h := &types.Header{
		Number:   big.NewInt(42),
		Time:     1_700_000_000,
		GasLimit: 30_000_000,
		BaseFee:  big.NewInt(7),
	}

	b := BlockFromHeader(h)
	if b.Number != 42 || b.Timestamp.Unix() != 1_700_000_000 || b.BaseFee.Int64() != 7 {
		t.Errorf("unexpected block %+v", b)
	}
	if b.Hash != h.Hash() {
		t.Error("hash mismatch")
	}
}

func TestNetwork(t *testing.T) {
	n := Network{ChainID: 11155111, Name: "sepolia"}
	if !n.Matches(11155111) || n.Matches(1) {
		t.Error("Matches is wrong")
	}
	if n.String() != "sepolia (11155111)" {
		t.Errorf("String = %q", n.String())
	}
	if (Network{ChainID: 5}).String() != "chain 5" {
		t.Error("unnamed network string is wrong")
	}
}
