package domain

import (
	"math/big"
	"time"

	"github.com/fd1az/whitelist-dapp/internal/units"
)

// GasPrice is a gas price observation in wei.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       wei,
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei as a float, for metrics.
func (g *GasPrice) Gwei() float64 {
	f, _ := units.ToGwei(g.Wei).Float64()
	return f
}

func (g *GasPrice) String() string {
	return units.FormatGwei(g.Wei, 2)
}

// GasEstimate is a gas limit priced at a given gas price.
type GasEstimate struct {
	GasLimit uint64
	GasPrice *GasPrice
}

// NewGasEstimate creates a GasEstimate.
func NewGasEstimate(gasLimit uint64, gasPrice *GasPrice) *GasEstimate {
	return &GasEstimate{
		GasLimit: gasLimit,
		GasPrice: gasPrice,
	}
}

// TotalWei is the maximum fee for the estimate.
func (e *GasEstimate) TotalWei() *big.Int {
	return new(big.Int).Mul(e.GasPrice.Wei, new(big.Int).SetUint64(e.GasLimit))
}

// Cost renders TotalWei in ether.
func (e *GasEstimate) Cost() string {
	return units.FormatEther(e.TotalWei(), 6)
}
