package bridge

import (
	"math"
	"testing"
)

func TestFeeAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount uint64
		rate   uint16
		want   uint64
	}{
		{"zero rate", 1_000_000, 0, 0},
		{"one percent", 10_000, 100, 100},
		{"rounds down", 12_345, 250, 308},
		{"max rate", 10_000, 9_999, 9_999},
		{"below one unit", 99, 100, 0},
		{"half of max uint64", math.MaxUint64, 5_000, math.MaxUint64 / 2},
		{"max amount max rate", math.MaxUint64, 9_999, 18_444_899_399_302_180_659},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := feeAmount(tc.amount, tc.rate); got != tc.want {
				t.Fatalf("feeAmount(%d, %d) = %d, want %d", tc.amount, tc.rate, got, tc.want)
			}
		})
	}
}

// The fee can never reach the full amount: the rate is always below the
// denominator, so the taxed remainder stays positive for amounts >= MaxFee.
func TestFeeAmountBound(t *testing.T) {
	for _, amount := range []uint64{MaxFee, MaxFee + 1, 1 << 32, math.MaxUint64} {
		for _, rate := range []uint16{1, 100, 5_000, 9_999} {
			fee := feeAmount(amount, rate)
			if fee >= amount {
				t.Fatalf("feeAmount(%d, %d) = %d consumed the whole amount", amount, rate, fee)
			}
		}
	}
}
