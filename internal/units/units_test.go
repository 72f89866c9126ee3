package units_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/whitelist-dapp/internal/units"
)

func TestToEther(t *testing.T) {
	oneETH := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	if got := units.ToEther(oneETH); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", got)
	}
	if got := units.ToEther(nil); !got.IsZero() {
		t.Errorf("expected zero for nil, got %s", got)
	}
}

func TestFormat(t *testing.T) {
	wei := big.NewInt(1_500_000_000) // 1.5 gwei

	if got := units.FormatGwei(wei, 2); got != "1.50 gwei" {
		t.Errorf("FormatGwei = %q", got)
	}
	if got := units.FormatEther(big.NewInt(21_000*1_000_000_000), 6); got != "0.000021 ETH" {
		t.Errorf("FormatEther = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (*big.Int, error)
		in      string
		want    string
		wantErr error
	}{
		{name: "whole_gwei", parse: units.ParseGwei, in: "500", want: "500000000000"},
		{name: "fractional_gwei", parse: units.ParseGwei, in: "1.5", want: "1500000000"},
		{name: "ether", parse: units.ParseEther, in: "0.01", want: "10000000000000000"},
		{name: "negative", parse: units.ParseGwei, in: "-1", wantErr: units.ErrNegative},
		{name: "sub_wei", parse: units.ParseGwei, in: "0.0000000001", wantErr: units.ErrFractionWei},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := units.ParseGwei("abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}
